package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Communication preference values for a client.
const (
	PreferenceEmail = "email"
	PreferenceSMS   = "sms"
	PreferenceBoth  = "both"
	PreferenceNone  = "none"
)

type Client struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	SalonID uuid.UUID `gorm:"type:uuid;index;not null"`

	FirstName string `gorm:"not null"`
	LastName  string
	Email     string
	Phone     string
	Notes     string

	CommunicationPreference string `gorm:"type:varchar(10);default:'both'"`
	OptedInReminders        bool   `gorm:"default:true"`
	IsActive                bool   `gorm:"default:true"`

	Appointments []Appointment `gorm:"foreignKey:ClientID"`

	gorm.Model
}

func (c *Client) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

func (c *Client) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// WantsEmail reports whether the client's preference allows email delivery.
func (c *Client) WantsEmail() bool {
	return c.CommunicationPreference == PreferenceEmail || c.CommunicationPreference == PreferenceBoth
}

// WantsSMS reports whether the client's preference allows SMS delivery.
func (c *Client) WantsSMS() bool {
	return c.CommunicationPreference == PreferenceSMS || c.CommunicationPreference == PreferenceBoth
}
