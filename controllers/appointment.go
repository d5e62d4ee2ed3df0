package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"glowdesk-backend/config"
	"glowdesk-backend/models"
	"glowdesk-backend/services"
	"glowdesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentController handles booking endpoints. It holds the reminder
// service so confirmed bookings can get an immediate confirmation message.
type AppointmentController struct {
	Reminders *services.ReminderService
}

type CreateAppointmentInput struct {
	ClientID  string    `json:"clientId" binding:"required"`
	StaffID   string    `json:"staffId" binding:"required"`
	ServiceID string    `json:"serviceId" binding:"required"`
	StartTime time.Time `json:"startTime" binding:"required"`
	Status    string    `json:"status" binding:"omitempty,oneof=confirmed pending"`
	Notes     string    `json:"notes"`
}

type UpdateAppointmentStatusInput struct {
	Status string `json:"status" binding:"required,oneof=confirmed pending completed cancelled no-show"`
}

// CreateAppointment books an appointment. Confirmed bookings trigger an
// immediate confirmation reminder through the dispatcher.
func (ac *AppointmentController) CreateAppointment(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var input CreateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	clientUUID, err := uuid.Parse(input.ClientID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return
	}
	staffUUID, err := uuid.Parse(input.StaffID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid staff ID format")
		return
	}
	serviceUUID, err := uuid.Parse(input.ServiceID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	// The client must belong to this salon
	var client models.Client
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, clientUUID).
		First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	status := input.Status
	if status == "" {
		status = models.StatusConfirmed
	}

	appointment := models.Appointment{
		SalonID:   salonUUID,
		ClientID:  clientUUID,
		StaffID:   staffUUID,
		ServiceID: serviceUUID,
		StartTime: input.StartTime,
		Status:    status,
		Notes:     input.Notes,
	}
	if err := config.DB.Create(&appointment).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create appointment")
		return
	}

	if status == models.StatusConfirmed && ac.Reminders != nil {
		ac.sendConfirmation(appointment.ID)
	}

	c.JSON(http.StatusCreated, appointment)
}

// sendConfirmation dispatches the zero-lead confirmation reminder using the
// salon's channel settings. Failures are the dispatcher's business; booking
// creation already succeeded.
func (ac *AppointmentController) sendConfirmation(appointmentID uuid.UUID) {
	var appointment models.Appointment
	if err := config.DB.
		Preload("Client").
		Preload("Staff").
		Preload("Service").
		Preload("Salon").
		First(&appointment, "id = ?", appointmentID).Error; err != nil {
		return
	}

	settings := models.ParseNotificationSettings(appointment.Salon.NotificationSettings)
	if !settings.Reminders.Enabled {
		return
	}
	ac.Reminders.Dispatch(context.Background(), &appointment, services.KindConfirmation, settings.Channels)
}

// GetAppointments retrieves the salon's appointments, optionally filtered
// by status or a from/to start-time range.
func (ac *AppointmentController) GetAppointments(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	query := config.DB.Where("salon_id = ?", salonUUID).
		Preload("Client").
		Preload("Staff").
		Preload("Service")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			query = query.Where("start_time >= ?", t)
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			query = query.Where("start_time <= ?", t)
		}
	}

	var appointments []models.Appointment
	if err := query.Order("start_time").Find(&appointments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve appointments")
		return
	}

	c.JSON(http.StatusOK, appointments)
}

// GetAppointment retrieves a specific appointment by ID
func (ac *AppointmentController) GetAppointment(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	appointmentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	var appointment models.Appointment
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, appointmentUUID).
		Preload("Client").
		Preload("Staff").
		Preload("Service").
		First(&appointment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, appointment)
}

// UpdateAppointmentStatus transitions an appointment's status.
func (ac *AppointmentController) UpdateAppointmentStatus(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	appointmentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	var input UpdateAppointmentStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var appointment models.Appointment
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, appointmentUUID).
		First(&appointment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	wasConfirmed := appointment.Status == models.StatusConfirmed
	appointment.Status = input.Status
	if err := config.DB.Save(&appointment).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update appointment")
		return
	}

	if !wasConfirmed && input.Status == models.StatusConfirmed && ac.Reminders != nil {
		ac.sendConfirmation(appointment.ID)
	}

	c.JSON(http.StatusOK, appointment)
}
