package services

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// AppError is a failure the caller can act on. Status is the HTTP status it maps to.
type AppError struct {
	Status int
	Msg    string
}

func (e *AppError) Error() string { return e.Msg }

func BadRequest(msg string) *AppError   { return &AppError{Status: http.StatusBadRequest, Msg: msg} }
func Unauthorized(msg string) *AppError { return &AppError{Status: http.StatusUnauthorized, Msg: msg} }
func Forbidden(msg string) *AppError    { return &AppError{Status: http.StatusForbidden, Msg: msg} }
func NotFound(msg string) *AppError     { return &AppError{Status: http.StatusNotFound, Msg: msg} }
func Conflict(msg string) *AppError     { return &AppError{Status: http.StatusConflict, Msg: msg} }

// AsAppError unwraps err into an *AppError when it is one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// isUniqueViolation reports whether err came from a unique index, either
// translated by gorm or raw from postgres.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
