package controllers

import (
	"net/http"
	"time"

	"glowdesk-backend/config"
	"glowdesk-backend/models"
	"glowdesk-backend/utils"

	"github.com/gin-gonic/gin"
)

type DashboardOverview struct {
	TotalClients         int64            `json:"totalClients"`
	UpcomingAppointments int64            `json:"upcomingAppointments"`
	RemindersSentToday   int64            `json:"remindersSentToday"`
	RemindersFailedToday int64            `json:"remindersFailedToday"`
	RecentReminders      []RecentReminder `json:"recentReminders"`
}

type RecentReminder struct {
	AppointmentID string    `json:"appointmentId"`
	ReminderType  string    `json:"reminderType"`
	Channel       string    `json:"channel"`
	Success       bool      `json:"success"`
	SentAt        time.Time `json:"sentAt"`
}

// GetDashboardOverview summarizes clients, upcoming bookings and recent
// reminder activity for the salon.
func GetDashboardOverview(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var overview DashboardOverview
	now := time.Now()
	startOfDay := utils.BeginningOfDay(now)

	if err := config.DB.Model(&models.Client{}).
		Where("salon_id = ? AND is_active = ?", salonUUID, true).
		Count(&overview.TotalClients).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count clients")
		return
	}

	if err := config.DB.Model(&models.Appointment{}).
		Where("salon_id = ? AND start_time BETWEEN ? AND ?", salonUUID, now, now.Add(24*time.Hour)).
		Where("status IN ?", []string{models.StatusConfirmed, models.StatusPending}).
		Count(&overview.UpcomingAppointments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count appointments")
		return
	}

	if err := config.DB.Model(&models.ReminderLog{}).
		Where("salon_id = ? AND sent_at >= ? AND success = ?", salonUUID, startOfDay, true).
		Count(&overview.RemindersSentToday).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count reminders")
		return
	}
	if err := config.DB.Model(&models.ReminderLog{}).
		Where("salon_id = ? AND sent_at >= ? AND success = ?", salonUUID, startOfDay, false).
		Count(&overview.RemindersFailedToday).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count reminders")
		return
	}

	var logs []models.ReminderLog
	if err := config.DB.Where("salon_id = ?", salonUUID).
		Order("sent_at DESC").Limit(10).Find(&logs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve recent reminders")
		return
	}
	for _, l := range logs {
		overview.RecentReminders = append(overview.RecentReminders, RecentReminder{
			AppointmentID: l.AppointmentID.String(),
			ReminderType:  l.ReminderType,
			Channel:       l.Channel,
			Success:       l.Success,
			SentAt:        l.SentAt,
		})
	}

	c.JSON(http.StatusOK, overview)
}
