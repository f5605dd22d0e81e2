package controllers

import (
	"net/http"

	"vetclinic-backend/services"
	"vetclinic-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type GroomingController struct {
	svc *services.GroomingService
	log zerolog.Logger
}

func NewGroomingController(svc *services.GroomingService, log zerolog.Logger) *GroomingController {
	return &GroomingController{svc: svc, log: log}
}

func (gc *GroomingController) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var input services.CreateGroomingInput
	if !bindJSON(c, &input) {
		return
	}

	g, err := gc.svc.Create(c.Request.Context(), actor, input)
	if err != nil {
		respondErr(c, gc.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusCreated, "Grooming appointment created", g)
}

func (gc *GroomingController) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var filter services.GroomingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}

	list, err := gc.svc.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondErr(c, gc.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "", list)
}

func (gc *GroomingController) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	g, err := gc.svc.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondErr(c, gc.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "", g)
}

func (gc *GroomingController) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.UpdateGroomingInput
	if !bindJSON(c, &input) {
		return
	}

	g, err := gc.svc.Update(c.Request.Context(), actor, id, input)
	if err != nil {
		respondErr(c, gc.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "Grooming appointment updated", g)
}

func (gc *GroomingController) ChangeStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.GroomingStatusInput
	if !bindJSON(c, &input) {
		return
	}

	g, err := gc.svc.ChangeStatus(c.Request.Context(), actor, id, input)
	if err != nil {
		respondErr(c, gc.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "Status updated", g)
}

func (gc *GroomingController) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := gc.svc.Delete(c.Request.Context(), actor, id); err != nil {
		respondErr(c, gc.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "Grooming appointment deleted", nil)
}
