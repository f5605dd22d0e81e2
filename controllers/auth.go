// controllers/auth.go
package controllers

import (
	"net/http"

	"vetclinic-backend/services"
	"vetclinic-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type AuthController struct {
	svc          *services.AuthService
	log          zerolog.Logger
	cookieMaxAge int
	secureCookie bool
}

func NewAuthController(svc *services.AuthService, log zerolog.Logger, cookieMaxAge int, secureCookie bool) *AuthController {
	return &AuthController{svc: svc, log: log, cookieMaxAge: cookieMaxAge, secureCookie: secureCookie}
}

type emailInput struct {
	Email string `json:"email" binding:"required"`
}

type passwordInput struct {
	Password string `json:"password" binding:"required"`
}

func (ac *AuthController) Register(c *gin.Context) {
	var input services.RegisterInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := ac.svc.Register(c.Request.Context(), input)
	if err != nil {
		respondErr(c, ac.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusCreated, "Account created, check your email to confirm it", gin.H{
		"id":     user.ID,
		"email":  user.Email,
		"nombre": user.Name,
		"rol":    user.Role,
	})
}

func (ac *AuthController) Confirm(c *gin.Context) {
	already, err := ac.svc.ConfirmAccount(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondErr(c, ac.log, err)
		return
	}
	msg := "Account confirmed"
	if already {
		msg = "Account already confirmed"
	}
	utils.RespondWithData(c, http.StatusOK, msg, nil)
}

func (ac *AuthController) Login(c *gin.Context) {
	var input services.LoginInput
	if !bindJSON(c, &input) {
		return
	}

	res, err := ac.svc.Login(c.Request.Context(), input)
	if err != nil {
		respondErr(c, ac.log, err)
		return
	}

	c.SetCookie(
		"token",
		res.Token,
		ac.cookieMaxAge,
		"/",
		"",
		ac.secureCookie,
		true,
	)
	utils.RespondWithData(c, http.StatusOK, "", res)
}

func (ac *AuthController) ResendVerification(c *gin.Context) {
	var input emailInput
	if !bindJSON(c, &input) {
		return
	}
	if err := ac.svc.ResendVerification(c.Request.Context(), input.Email); err != nil {
		respondErr(c, ac.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "Verification email sent", nil)
}

func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var input emailInput
	if !bindJSON(c, &input) {
		return
	}
	if err := ac.svc.ForgotPassword(c.Request.Context(), input.Email); err != nil {
		respondErr(c, ac.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "We sent you an email with instructions", nil)
}

func (ac *AuthController) CheckResetToken(c *gin.Context) {
	if err := ac.svc.CheckResetToken(c.Request.Context(), c.Param("token")); err != nil {
		respondErr(c, ac.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "Valid token", nil)
}

func (ac *AuthController) ResetPassword(c *gin.Context) {
	var input passwordInput
	if !bindJSON(c, &input) {
		return
	}
	if err := ac.svc.ResetPassword(c.Request.Context(), c.Param("token"), input.Password); err != nil {
		respondErr(c, ac.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "Password updated", nil)
}

func (ac *AuthController) Profile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	profile, err := ac.svc.Profile(c.Request.Context(), actor.UserID)
	if err != nil {
		respondErr(c, ac.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "", profile)
}
