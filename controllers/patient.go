package controllers

import (
	"net/http"

	"vetclinic-backend/services"
	"vetclinic-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type PatientController struct {
	svc *services.PatientService
	log zerolog.Logger
}

func NewPatientController(svc *services.PatientService, log zerolog.Logger) *PatientController {
	return &PatientController{svc: svc, log: log}
}

// Register creates the patient and, if the phone is new to the clinic, its owner.
func (pc *PatientController) Register(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var input services.RegisterPatientInput
	if !bindJSON(c, &input) {
		return
	}

	p, err := pc.svc.Register(c.Request.Context(), actor, input)
	if err != nil {
		respondErr(c, pc.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusCreated, "Patient registered", p)
}

func (pc *PatientController) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var filter services.PatientFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}

	patients, err := pc.svc.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondErr(c, pc.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "", patients)
}

func (pc *PatientController) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	p, err := pc.svc.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondErr(c, pc.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "", p)
}

func (pc *PatientController) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	soft, err := pc.svc.Delete(c.Request.Context(), actor, id)
	if err != nil {
		respondErr(c, pc.log, err)
		return
	}
	msg := "Patient deleted"
	if soft {
		msg = "Patient has clinical history and was deactivated"
	}
	utils.RespondWithData(c, http.StatusOK, msg, nil)
}

func (pc *PatientController) AddClinicalRecord(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.ClinicalRecordInput
	if !bindJSON(c, &input) {
		return
	}

	rec, err := pc.svc.AddClinicalRecord(c.Request.Context(), actor, id, input)
	if err != nil {
		respondErr(c, pc.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusCreated, "Clinical record added", rec)
}

func (pc *PatientController) ClinicalRecords(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	records, err := pc.svc.ListClinicalRecords(c.Request.Context(), actor, id)
	if err != nil {
		respondErr(c, pc.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "", records)
}
