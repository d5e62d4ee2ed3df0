package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appointment status values. Only confirmed and pending appointments are
// eligible for reminders.
const (
	StatusConfirmed = "confirmed"
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no-show"
)

type Appointment struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	SalonID uuid.UUID `gorm:"type:uuid;index;not null"`

	ClientID  uuid.UUID `gorm:"type:uuid;index;not null"`
	StaffID   uuid.UUID `gorm:"type:uuid;index;not null"`
	ServiceID uuid.UUID `gorm:"type:uuid;index;not null"`

	StartTime time.Time `gorm:"index;not null"`
	Status    string    `gorm:"type:varchar(20);default:'pending'"`
	Notes     string

	Client  Client  `gorm:"foreignKey:ClientID"`
	Staff   User    `gorm:"foreignKey:StaffID"`
	Service Service `gorm:"foreignKey:ServiceID"`
	Salon   Salon   `gorm:"foreignKey:SalonID"`

	gorm.Model
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
