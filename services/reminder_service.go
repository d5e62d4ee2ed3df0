// services/reminder_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"glowdesk-backend/models"
	"glowdesk-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Channel labels recorded in ledger rows.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
	ChannelBoth  = "both"
)

const defaultWindowHalfWidth = 15 * time.Minute

// ReminderService owns the appointment-reminder pipeline: eligibility
// query, duplicate guard, channel dispatch and ledger writes.
type ReminderService struct {
	db        *gorm.DB
	email     EmailSender
	sms       SMSSender
	halfWidth time.Duration
}

func NewReminderService(db *gorm.DB, email EmailSender, sms SMSSender) *ReminderService {
	halfWidth := defaultWindowHalfWidth
	if env := os.Getenv("REMINDER_WINDOW_MINUTES"); env != "" {
		if m, err := strconv.Atoi(env); err == nil && m > 0 {
			halfWidth = time.Duration(m) * time.Minute
		}
	}
	return &ReminderService{
		db:        db,
		email:     email,
		sms:       sms,
		halfWidth: halfWidth,
	}
}

// DispatchResult summarizes one dispatch attempt for one appointment.
type DispatchResult struct {
	EmailSent bool
	SMSSent   bool
	Skipped   bool // a ledger entry for this (appointment, kind) already exists
	Err       error
}

// PassSummary aggregates counts for one end-to-end reminder pass.
type PassSummary struct {
	Processed int
	Emailed   int
	Texted    int
	Skipped   int
	Failed    int
}

func (p *PassSummary) add(other PassSummary) {
	p.Processed += other.Processed
	p.Emailed += other.Emailed
	p.Texted += other.Texted
	p.Skipped += other.Skipped
	p.Failed += other.Failed
}

// FindEligibleAppointments returns the appointments for one salon whose
// start time falls inside the window around now + lookahead, restricted to
// confirmed/pending appointments of active, opted-in clients. Read-only;
// an empty result is not an error.
func (s *ReminderService) FindEligibleAppointments(salonID uuid.UUID, lookaheadHours int, now time.Time) ([]models.Appointment, error) {
	from, to := utils.ReminderWindow(now, lookaheadHours, s.halfWidth)

	var appointments []models.Appointment
	err := s.db.
		Joins("JOIN clients ON clients.id = appointments.client_id AND clients.deleted_at IS NULL").
		Where("appointments.salon_id = ?", salonID).
		Where("appointments.start_time BETWEEN ? AND ?", from, to).
		Where("appointments.status IN ?", []string{models.StatusConfirmed, models.StatusPending}).
		Where("clients.opted_in_reminders = ? AND clients.is_active = ?", true, true).
		Preload("Client").
		Preload("Staff").
		Preload("Service").
		Preload("Salon").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("eligibility query for salon %s: %w", salonID, err)
	}
	return appointments, nil
}

// HasAttempted reports whether any ledger entry exists for the pair. Any
// prior attempt, success or failure, suppresses a new one.
func (s *ReminderService) HasAttempted(appointmentID uuid.UUID, kind ReminderKind) (bool, error) {
	var count int64
	err := s.db.Model(&models.ReminderLog{}).
		Where("appointment_id = ? AND reminder_type = ?", appointmentID, kind.Key()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RecordAttempt appends one ledger row for a dispatch attempt. A
// duplicate-key error means a concurrent run got there first; that is
// logged and not treated as a failure.
func (s *ReminderService) RecordAttempt(appointment *models.Appointment, kind ReminderKind, channel string, success bool, errorMessage string) error {
	entry := models.ReminderLog{
		SalonID:       appointment.SalonID,
		AppointmentID: appointment.ID,
		ReminderType:  kind.Key(),
		Channel:       channel,
		Success:       success,
		ErrorMessage:  errorMessage,
		SentAt:        time.Now(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Printf("Appointment %s: %s already recorded by a concurrent run", appointment.ID, kind.Key())
			return nil
		}
		return err
	}
	return nil
}

// Dispatch runs the full per-appointment flow for one reminder kind:
// guard check, channel selection, render, send, ledger write. Failures on
// one channel do not prevent attempting the other. Dispatch never panics;
// anything unexpected ends up in the result and, when possible, in a
// failed ledger row.
func (s *ReminderService) Dispatch(ctx context.Context, appointment *models.Appointment, kind ReminderKind, channels models.ChannelConfig) (result DispatchResult) {
	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("dispatch panic: %v", r)
			if err := s.RecordAttempt(appointment, kind, ChannelEmail, false, result.Err.Error()); err != nil {
				log.Printf("Appointment %s: failed to record panic outcome: %v", appointment.ID, err)
			}
		}
	}()

	attempted, err := s.HasAttempted(appointment.ID, kind)
	if err != nil {
		result.Err = fmt.Errorf("guard check: %w", err)
		return result
	}
	if attempted {
		result.Skipped = true
		return result
	}

	client := &appointment.Client
	sendEmail := channels.Email && client.Email != "" && client.WantsEmail()
	sendSMS := channels.SMS && client.Phone != "" && client.WantsSMS()
	if !sendEmail && !sendSMS {
		// No reachable channel. No ledger row is written so a later pass
		// can pick the appointment up once contact details appear.
		return result
	}

	data := s.buildTemplateData(appointment)
	var emailErr, smsErr error

	if sendEmail {
		subject, body := RenderEmailReminder(kind, data)
		if emailErr = s.email.SendEmail(ctx, client.Email, subject, body); emailErr != nil {
			log.Printf("Appointment %s: email send failed: %v", appointment.ID, emailErr)
		} else {
			result.EmailSent = true
		}
	}
	if sendSMS {
		message := RenderSMSReminder(kind, data)
		if smsErr = s.sms.SendSMS(ctx, client.Phone, message); smsErr != nil {
			log.Printf("Appointment %s: sms send failed: %v", appointment.ID, smsErr)
		} else {
			result.SMSSent = true
		}
	}

	channel := ChannelEmail // cosmetic default when nothing succeeded
	switch {
	case result.EmailSent && result.SMSSent:
		channel = ChannelBoth
	case result.SMSSent:
		channel = ChannelSMS
	case result.EmailSent:
		channel = ChannelEmail
	}

	success := result.EmailSent || result.SMSSent
	errorMessage := ""
	if emailErr != nil {
		errorMessage = "email: " + emailErr.Error()
	}
	if smsErr != nil {
		if errorMessage != "" {
			errorMessage += "; "
		}
		errorMessage += "sms: " + smsErr.Error()
	}
	if !success {
		result.Err = errors.New(errorMessage)
	}

	if err := s.RecordAttempt(appointment, kind, channel, success, errorMessage); err != nil {
		// An unrecorded attempt may be re-sent next tick; accepted tradeoff.
		log.Printf("Appointment %s: failed to record %s outcome: %v", appointment.ID, kind.Key(), err)
	}
	return result
}

// RunPass executes one end-to-end reminder pass over every active salon.
// It never raises: failures are logged and the next scheduled tick retries
// naturally.
func (s *ReminderService) RunPass(ctx context.Context) PassSummary {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Reminder pass aborted: %v", r)
		}
	}()

	var total PassSummary

	var salons []models.Salon
	if err := s.db.Where("is_active = ?", true).Find(&salons).Error; err != nil {
		log.Printf("Reminder pass: failed to fetch salons: %v", err)
		return total
	}

	now := time.Now()
	for i := range salons {
		total.add(s.processSalon(ctx, &salons[i], now))
	}

	log.Printf("Reminder pass completed: %d processed, %d emailed, %d texted, %d skipped, %d failed",
		total.Processed, total.Emailed, total.Texted, total.Skipped, total.Failed)
	return total
}

func (s *ReminderService) processSalon(ctx context.Context, salon *models.Salon, now time.Time) PassSummary {
	var summary PassSummary

	settings := models.ParseNotificationSettings(salon.NotificationSettings)
	if !settings.Reminders.Enabled {
		return summary
	}

	for _, timing := range settings.Reminders.Timings {
		kind := ReminderKind{LeadHours: timing.Hours}

		appointments, err := s.FindEligibleAppointments(salon.ID, timing.Hours, now)
		if err != nil {
			log.Printf("Salon %s: %v", salon.ID, err)
			continue
		}

		for i := range appointments {
			result := s.Dispatch(ctx, &appointments[i], kind, settings.Channels)
			summary.Processed++
			if result.Skipped {
				summary.Skipped++
				continue
			}
			if result.EmailSent {
				summary.Emailed++
			}
			if result.SMSSent {
				summary.Texted++
			}
			if result.Err != nil {
				summary.Failed++
			}
		}
	}
	return summary
}

func (s *ReminderService) buildTemplateData(appointment *models.Appointment) TemplateData {
	return TemplateData{
		ClientFirstName: appointment.Client.FirstName,
		ServiceName:     appointment.Service.Name,
		StaffName:       appointment.Staff.FullName(),
		AppointmentTime: utils.FormatInZone(appointment.StartTime, appointment.Salon.Timezone),
		SalonName:       appointment.Salon.Name,
		SalonAddress:    appointment.Salon.FullAddress(),
	}
}
