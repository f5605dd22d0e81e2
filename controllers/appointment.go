package controllers

import (
	"net/http"
	"strconv"

	"vetclinic-backend/services"
	"vetclinic-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type AppointmentController struct {
	svc *services.AppointmentService
	log zerolog.Logger
}

func NewAppointmentController(svc *services.AppointmentService, log zerolog.Logger) *AppointmentController {
	return &AppointmentController{svc: svc, log: log}
}

type statusInput struct {
	Status string `json:"estado" binding:"required"`
}

type cancelInput struct {
	Reason string `json:"motivo"`
}

type completeInput struct {
	Observations string `json:"observaciones"`
}

// Create books a new appointment for the authenticated doctor or, for other
// staff, the requested doctor.
func (ac *AppointmentController) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var input services.CreateAppointmentInput
	if !bindJSON(c, &input) {
		return
	}

	appt, err := ac.svc.Create(c.Request.Context(), actor, input)
	if err != nil {
		respondErr(c, ac.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusCreated, "Appointment created", appt)
}

func (ac *AppointmentController) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var filter services.AppointmentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}

	appts, err := ac.svc.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondErr(c, ac.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "", appts)
}

func (ac *AppointmentController) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	appt, err := ac.svc.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondErr(c, ac.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "", appt)
}

func (ac *AppointmentController) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.UpdateAppointmentInput
	if !bindJSON(c, &input) {
		return
	}

	appt, err := ac.svc.Update(c.Request.Context(), actor, id, input)
	if err != nil {
		respondErr(c, ac.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "Appointment updated", appt)
}

func (ac *AppointmentController) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	soft, err := ac.svc.Delete(c.Request.Context(), actor, id)
	if err != nil {
		respondErr(c, ac.log, err)
		return
	}
	msg := "Appointment deleted"
	if soft {
		msg = "Appointment has clinical history and was cancelled instead of deleted"
	}
	utils.RespondWithData(c, http.StatusOK, msg, nil)
}

func (ac *AppointmentController) ChangeStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input statusInput
	if !bindJSON(c, &input) {
		return
	}

	appt, err := ac.svc.ChangeStatus(c.Request.Context(), actor, id, input.Status)
	if err != nil {
		respondErr(c, ac.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "Status updated", appt)
}

func (ac *AppointmentController) Confirm(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	appt, err := ac.svc.Confirm(c.Request.Context(), actor, id)
	if err != nil {
		respondErr(c, ac.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "Appointment confirmed", appt)
}

func (ac *AppointmentController) Start(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	appt, err := ac.svc.Start(c.Request.Context(), actor, id)
	if err != nil {
		respondErr(c, ac.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "Appointment started", appt)
}

func (ac *AppointmentController) Cancel(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input cancelInput
	if !bindOptionalJSON(c, &input) {
		return
	}

	appt, err := ac.svc.Cancel(c.Request.Context(), actor, id, input.Reason)
	if err != nil {
		respondErr(c, ac.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "Appointment cancelled", appt)
}

func (ac *AppointmentController) Complete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input completeInput
	if !bindOptionalJSON(c, &input) {
		return
	}

	appt, err := ac.svc.Complete(c.Request.Context(), actor, id, input.Observations)
	if err != nil {
		respondErr(c, ac.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "Appointment completed", appt)
}

// Availability answers whether a doctor is free at ?fecha&hora.
func (ac *AppointmentController) Availability(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	doctorID, ok := optionalUUIDQuery(c, "doctorId", "id_doctor")
	if !ok {
		return
	}
	date := firstQuery(c, "fecha", "date")
	hhmm := firstQuery(c, "hora", "time")
	if date == "" || hhmm == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "fecha and hora are required")
		return
	}

	free, err := ac.svc.CheckAvailability(c.Request.Context(), actor, doctorID, date, hhmm)
	if err != nil {
		respondErr(c, ac.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "", gin.H{"disponible": free, "fecha": date, "hora": hhmm})
}

// Slots lists a doctor's free half-hour slots for ?fecha.
func (ac *AppointmentController) Slots(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	doctorID, ok := optionalUUIDQuery(c, "doctorId", "id_doctor")
	if !ok {
		return
	}
	date := firstQuery(c, "fecha", "date")
	if date == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "fecha is required")
		return
	}

	slots, err := ac.svc.AvailableSlots(c.Request.Context(), actor, doctorID, date)
	if err != nil {
		respondErr(c, ac.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "", gin.H{"fecha": date, "horarios": slots})
}

func (ac *AppointmentController) Range(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	appts, err := ac.svc.ListRange(c.Request.Context(), actor, c.Query("start"), c.Query("end"))
	if err != nil {
		respondErr(c, ac.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "", appts)
}

func (ac *AppointmentController) Upcoming(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "limit must be a number")
			return
		}
		limit = n
	}

	appts, err := ac.svc.Upcoming(c.Request.Context(), actor, limit)
	if err != nil {
		respondErr(c, ac.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "", appts)
}

func (ac *AppointmentController) ByPatient(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	appts, err := ac.svc.ByPatient(c.Request.Context(), actor, id)
	if err != nil {
		respondErr(c, ac.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "", appts)
}

func (ac *AppointmentController) Search(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	appts, err := ac.svc.Search(c.Request.Context(), actor, c.Query("q"))
	if err != nil {
		respondErr(c, ac.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "", appts)
}

func (ac *AppointmentController) Stats(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	stats, err := ac.svc.Stats(c.Request.Context(), actor, firstQuery(c, "periodo", "period"))
	if err != nil {
		respondErr(c, ac.log, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, "", stats)
}
