package controllers

import (
	"net/http"

	"glowdesk-backend/config"
	"glowdesk-backend/models"
	"glowdesk-backend/utils"

	"github.com/gin-gonic/gin"
)

type UpdateSalonProfileInput struct {
	Name       *string `json:"name"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	PostalCode *string `json:"postalCode"`
	Timezone   *string `json:"timezone"`
}

type UpdateNotificationSettingsInput struct {
	Reminders struct {
		Enabled bool `json:"enabled"`
		Timings []struct {
			Hours int    `json:"hours" binding:"required,min=1,max=168"`
			Label string `json:"label"`
		} `json:"timings" binding:"omitempty,dive"`
	} `json:"reminders"`
	Channels struct {
		Email bool `json:"email"`
		SMS   bool `json:"sms"`
	} `json:"channels"`
}

// GetProfile returns the salon profile with its parsed notification
// settings.
func GetProfile(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var salon models.Salon
	if err := config.DB.First(&salon, "id = ?", salonUUID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Salon not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                   salon.ID,
		"name":                 salon.Name,
		"address":              salon.FullAddress(),
		"timezone":             salon.Timezone,
		"notificationSettings": models.ParseNotificationSettings(salon.NotificationSettings),
	})
}

// UpdateSalonProfile updates salon name, address fields and timezone.
func UpdateSalonProfile(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var input UpdateSalonProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var salon models.Salon
	if err := config.DB.First(&salon, "id = ?", salonUUID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Salon not found")
		return
	}

	if input.Name != nil {
		salon.Name = *input.Name
	}
	if input.Address != nil {
		salon.Address = *input.Address
	}
	if input.City != nil {
		salon.City = *input.City
	}
	if input.State != nil {
		salon.State = *input.State
	}
	if input.PostalCode != nil {
		salon.PostalCode = *input.PostalCode
	}
	if input.Timezone != nil {
		if !utils.ValidTimezone(*input.Timezone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid timezone")
			return
		}
		salon.Timezone = *input.Timezone
	}

	if err := config.DB.Save(&salon).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update salon")
		return
	}

	c.JSON(http.StatusOK, salon)
}

// UpdateNotificationSettings validates and stores the salon's reminder
// configuration blob.
func UpdateNotificationSettings(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var input UpdateNotificationSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var salon models.Salon
	if err := config.DB.First(&salon, "id = ?", salonUUID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Salon not found")
		return
	}

	settings := models.NotificationSettings{
		Reminders: models.ReminderConfig{Enabled: input.Reminders.Enabled},
		Channels: models.ChannelConfig{
			Email: input.Channels.Email,
			SMS:   input.Channels.SMS,
		},
	}
	for _, t := range input.Reminders.Timings {
		settings.Reminders.Timings = append(settings.Reminders.Timings, models.ReminderTiming{
			Hours: t.Hours,
			Label: t.Label,
		})
	}

	salon.NotificationSettings = settings.ToJSONB()
	if err := config.DB.Save(&salon).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update notification settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"notificationSettings": settings})
}
