// controllers/reminder.go
package controllers

import (
	"net/http"
	"strconv"

	"glowdesk-backend/config"
	"glowdesk-backend/models"
	"glowdesk-backend/services"
	"glowdesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReminderController exposes the operational control surface of the
// reminder subsystem: job status, manual triggering, ledger inspection and
// template previews.
type ReminderController struct {
	Scheduler *services.ReminderScheduler
}

// GetJobStatus reports each scheduled job and whether it is running.
func (rc *ReminderController) GetJobStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": rc.Scheduler.Status()})
}

// RunJob manually triggers a named job. Unknown names yield 404, never a
// crash.
func (rc *ReminderController) RunJob(c *gin.Context) {
	name := c.Param("name")
	if !rc.Scheduler.Trigger(name) {
		utils.RespondWithError(c, http.StatusNotFound, "Unknown job: "+name)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job triggered", "job": name})
}

// GetReminderLogs lists ledger entries for the salon, newest first,
// optionally filtered by appointment.
func (rc *ReminderController) GetReminderLogs(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	query := config.DB.Where("salon_id = ?", salonUUID)
	if apptID := c.Query("appointmentId"); apptID != "" {
		apptUUID, err := uuid.Parse(apptID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
			return
		}
		query = query.Where("appointment_id = ?", apptUUID)
	}

	limit := 50
	if env := c.Query("limit"); env != "" {
		if n, err := strconv.Atoi(env); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	var logs []models.ReminderLog
	if err := query.Order("sent_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve reminder logs")
		return
	}

	c.JSON(http.StatusOK, logs)
}

type PreviewReminderInput struct {
	LeadHours   int    `json:"leadHours"`
	ClientName  string `json:"clientName"`
	ServiceName string `json:"serviceName"`
	StaffName   string `json:"staffName"`
	Time        string `json:"time"`
}

// PreviewReminder renders the email and SMS templates for a kind without
// sending anything. Handy for checking wording from the admin UI.
func (rc *ReminderController) PreviewReminder(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var input PreviewReminderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var salon models.Salon
	if err := config.DB.First(&salon, "id = ?", salonUUID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Salon not found")
		return
	}

	kind := services.ReminderKind{LeadHours: input.LeadHours}
	data := services.TemplateData{
		ClientFirstName: input.ClientName,
		ServiceName:     input.ServiceName,
		StaffName:       input.StaffName,
		AppointmentTime: input.Time,
		SalonName:       salon.Name,
		SalonAddress:    salon.FullAddress(),
	}

	subject, body := services.RenderEmailReminder(kind, data)
	c.JSON(http.StatusOK, gin.H{
		"kind":    kind.Key(),
		"subject": subject,
		"html":    body,
		"sms":     services.RenderSMSReminder(kind, data),
	})
}
