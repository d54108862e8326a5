package handlers

import (
	"strconv"
	"time"

	"brokerage-app-server/internal/config"
	"brokerage-app-server/internal/engine"
	"brokerage-app-server/internal/models"
	"brokerage-app-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Engine *engine.Engine
	Cfg    *config.Config
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(eng *engine.Engine, cfg *config.Config) *AppointmentHandler {
	return &AppointmentHandler{Engine: eng, Cfg: cfg}
}

// CreateAppointmentRequest represents the request body for creating an appointment.
type CreateAppointmentRequest struct {
	ClientID    *string   `json:"clientId" binding:"omitempty,uuid"`
	BrokerID    string    `json:"brokerId" binding:"omitempty,uuid"`
	ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
}

// CreateAppointment handles scheduling a new client visit or task.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Engine.CreateAppointment(engine.AppointmentInput{
		ClientID:    req.ClientID,
		BrokerID:    req.BrokerID,
		ScheduledAt: req.ScheduledAt,
		Title:       req.Title,
		Description: req.Description,
	}, actor)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	utils.Created(c, "Appointment created successfully", appointment)
}

// GetAppointments handles listing appointments for the acting staff
// member, each carrying its temporal class at response time.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	appointments, err := h.Engine.ListAppointments(actor)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	utils.Success(c, "Appointments fetched successfully", engine.WithClass(appointments, h.Engine.Now()))
}

// GetAppointmentByID handles fetching a single appointment.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	appointment, err := h.Engine.GetAppointment(c.Param("id"), actor)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	now := h.Engine.Now()
	utils.Success(c, "Appointment fetched successfully", engine.ClassifiedAppointment{
		Appointment:   *appointment,
		TemporalClass: engine.Classify(appointment.Status, appointment.ScheduledAt, now),
	})
}

// GetOverdueAppointments handles listing scheduled appointments whose
// instant has passed. Optional broker filter for back-office users.
func (h *AppointmentHandler) GetOverdueAppointments(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	now := h.Engine.Now()
	appointments, err := h.Engine.ListOverdue(c.Query("brokerId"), now, actor)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	utils.Success(c, "Overdue appointments fetched successfully", engine.WithClass(appointments, now))
}

// GetUpcomingAppointments handles listing scheduled appointments within
// the horizon (days query parameter, defaulting from config).
func (h *AppointmentHandler) GetUpcomingAppointments(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	horizonDays := h.Cfg.UpcomingHorizonDays
	if days := c.Query("days"); days != "" {
		parsed, err := strconv.Atoi(days)
		if err != nil {
			utils.BadRequest(c, "Invalid days parameter: "+err.Error())
			return
		}
		horizonDays = parsed
	}

	now := h.Engine.Now()
	appointments, err := h.Engine.ListUpcoming(c.Query("brokerId"), now, horizonDays, actor)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	utils.Success(c, "Upcoming appointments fetched successfully", engine.WithClass(appointments, now))
}

// UpdateAppointmentStatusRequest represents the request body for updating
// an appointment's status.
type UpdateAppointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required,oneof=completed not_completed"`
}

// UpdateAppointmentStatus handles marking an appointment completed or not
// completed. Returning to scheduled goes through reschedule instead.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req UpdateAppointmentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Engine.UpdateAppointmentStatus(c.Param("id"), req.Status, actor)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	utils.Success(c, "Appointment status updated successfully", appointment)
}

// RescheduleAppointmentRequest represents the request body for rescheduling an appointment.
type RescheduleAppointmentRequest struct {
	NewScheduledAt time.Time `json:"newScheduledAt" binding:"required"`
}

// RescheduleAppointment handles moving an appointment to a new time,
// returning it to the scheduled state.
func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req RescheduleAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Engine.RescheduleAppointment(c.Param("id"), req.NewScheduledAt, actor)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	utils.Success(c, "Appointment rescheduled successfully", appointment)
}
