// models/reminder_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReminderLog is the append-only ledger of reminder dispatch attempts.
// One row is written per attempt, success or failure; the unique index on
// (appointment_id, reminder_type) is the authoritative duplicate guard
// across overlapping scheduler runs. Rows are never updated or deleted.
type ReminderLog struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	SalonID       uuid.UUID `gorm:"type:uuid;index;not null"`
	AppointmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_appointment_reminder,priority:1"`
	ReminderType  string    `gorm:"type:varchar(30);not null;uniqueIndex:idx_appointment_reminder,priority:2"` // e.g. REMINDER_24H, CONFIRMATION
	Channel       string    `gorm:"type:varchar(10)"`                                                          // email, sms, both
	Success       bool
	ErrorMessage  string `gorm:"type:text"`
	SentAt        time.Time
}

func (r *ReminderLog) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
