// controllers/reminder.go
package controllers

import (
	"net/http"

	"vetclinic-backend/services"
	"vetclinic-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ReminderController struct {
	svc *services.ReminderService
	log zerolog.Logger
}

func NewReminderController(svc *services.ReminderService, log zerolog.Logger) *ReminderController {
	return &ReminderController{svc: svc, log: log}
}

// GetReminderTemplates returns the clinic's templates, defaults included
func (rc *ReminderController) GetReminderTemplates(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	templates, err := rc.svc.ListTemplates(c.Request.Context(), actor)
	if err != nil {
		respondErr(c, rc.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "", templates)
}

// SaveReminderTemplate creates or replaces the template of one kind
func (rc *ReminderController) SaveReminderTemplate(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var input services.TemplateInput
	if !bindJSON(c, &input) {
		return
	}

	t, err := rc.svc.SaveTemplate(c.Request.Context(), actor, input)
	if err != nil {
		respondErr(c, rc.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "Template saved", t)
}
