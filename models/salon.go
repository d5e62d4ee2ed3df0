package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Salon struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	Name       string    `gorm:"not null"`
	Address    string
	City       string
	State      string
	PostalCode string
	Timezone   string `gorm:"default:'UTC'"`
	IsActive   bool   `gorm:"default:true"`

	NotificationSettings JSONB `gorm:"type:jsonb;default:'{}'"`

	Users        []User        `gorm:"foreignKey:SalonID"`
	Clients      []Client      `gorm:"foreignKey:SalonID"`
	Services     []Service     `gorm:"foreignKey:SalonID"`
	Appointments []Appointment `gorm:"foreignKey:SalonID"`
}

func (s *Salon) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

// FullAddress joins the non-empty address fields for display in reminders.
func (s *Salon) FullAddress() string {
	parts := []string{}
	for _, p := range []string{s.Address, s.City, s.State, s.PostalCode} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	if len(parts) == 0 {
		return "Address not available"
	}
	return strings.Join(parts, ", ")
}

// Custom JSONB type for notification settings
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		// sqlite hands back text columns as string
		return json.Unmarshal([]byte(v), j)
	case nil:
		*j = JSONB{}
		return nil
	default:
		return errors.New("unsupported source type for JSONB")
	}
}

// ReminderTiming is one lookahead entry in a salon's reminder schedule.
type ReminderTiming struct {
	Hours int    `json:"hours"`
	Label string `json:"label,omitempty"`
}

type ReminderConfig struct {
	Enabled bool             `json:"enabled"`
	Timings []ReminderTiming `json:"timings"`
}

type ChannelConfig struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
}

// NotificationSettings is the parsed form of the salon's settings blob.
type NotificationSettings struct {
	Reminders ReminderConfig `json:"reminders"`
	Channels  ChannelConfig  `json:"channels"`
}

// DefaultNotificationSettings is applied whenever a salon has no settings
// stored or the stored blob fails to parse: reminders on, 24h and 2h
// timings, both channels enabled.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Reminders: ReminderConfig{
			Enabled: true,
			Timings: []ReminderTiming{
				{Hours: 24, Label: "24 hours before"},
				{Hours: 2, Label: "2 hours before"},
			},
		},
		Channels: ChannelConfig{Email: true, SMS: true},
	}
}

// rawNotificationSettings uses pointers so absent keys fall back to
// defaults while explicit false values are kept.
type rawNotificationSettings struct {
	Reminders *struct {
		Enabled *bool            `json:"enabled"`
		Timings []ReminderTiming `json:"timings"`
	} `json:"reminders"`
	Channels *struct {
		Email *bool `json:"email"`
		SMS   *bool `json:"sms"`
	} `json:"channels"`
}

// ParseNotificationSettings decodes the salon's settings blob. It never
// fails: malformed or missing settings fall back to the defaults.
func ParseNotificationSettings(blob JSONB) NotificationSettings {
	settings := DefaultNotificationSettings()
	if len(blob) == 0 {
		return settings
	}

	data, err := json.Marshal(blob)
	if err != nil {
		return settings
	}
	var raw rawNotificationSettings
	if err := json.Unmarshal(data, &raw); err != nil {
		return settings
	}

	if raw.Reminders != nil {
		if raw.Reminders.Enabled != nil {
			settings.Reminders.Enabled = *raw.Reminders.Enabled
		}
		if len(raw.Reminders.Timings) > 0 {
			timings := make([]ReminderTiming, 0, len(raw.Reminders.Timings))
			for _, t := range raw.Reminders.Timings {
				if t.Hours > 0 {
					timings = append(timings, t)
				}
			}
			if len(timings) > 0 {
				settings.Reminders.Timings = timings
			}
		}
	}
	if raw.Channels != nil {
		if raw.Channels.Email != nil {
			settings.Channels.Email = *raw.Channels.Email
		}
		if raw.Channels.SMS != nil {
			settings.Channels.SMS = *raw.Channels.SMS
		}
	}
	return settings
}

// ToJSONB converts parsed settings back to the storable blob form.
func (n NotificationSettings) ToJSONB() JSONB {
	data, err := json.Marshal(n)
	if err != nil {
		return JSONB{}
	}
	var blob JSONB
	if err := json.Unmarshal(data, &blob); err != nil {
		return JSONB{}
	}
	return blob
}
