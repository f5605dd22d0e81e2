package controllers

import (
	"errors"
	"io"
	"net/http"

	"vetclinic-backend/services"
	"vetclinic-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// respondErr maps service errors to responses. Unexpected errors are logged
// and their text is only exposed in debug mode.
func respondErr(c *gin.Context, log zerolog.Logger, err error) {
	if appErr, ok := services.AsAppError(err); ok {
		utils.RespondWithError(c, appErr.Status, appErr.Msg)
		return
	}
	log.Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("request failed")

	msg := "Internal server error"
	if gin.IsDebugging() {
		msg = err.Error()
	}
	utils.RespondWithError(c, http.StatusInternalServerError, msg)
}

func currentActor(c *gin.Context) (services.Actor, bool) {
	user, ok := utils.CurrentUser(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Not authenticated")
		return services.Actor{}, false
	}
	return services.ActorFromUser(user), true
}

func idParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}

// firstQuery returns the first non-empty query value among keys.
func firstQuery(c *gin.Context, keys ...string) string {
	for _, k := range keys {
		if v := c.Query(k); v != "" {
			return v
		}
	}
	return ""
}

// optionalUUIDQuery parses an optional id from the query string.
func optionalUUIDQuery(c *gin.Context, keys ...string) (*uuid.UUID, bool) {
	raw := firstQuery(c, keys...)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid doctor ID format")
		return nil, false
	}
	return &id, true
}

// bindOptionalJSON binds the body when there is one.
func bindOptionalJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return false
	}
	return true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return false
	}
	return true
}
