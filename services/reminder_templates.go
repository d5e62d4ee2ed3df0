package services

import (
	"fmt"
	"strings"
)

// TemplateData carries everything the reminder templates need. The
// appointment time is already formatted in the salon's timezone by the
// caller.
type TemplateData struct {
	ClientFirstName string
	ServiceName     string
	StaffName       string
	AppointmentTime string
	SalonName       string
	SalonAddress    string
}

const smsMaxLength = 200

func (d TemplateData) clientName() string {
	if strings.TrimSpace(d.ClientFirstName) == "" {
		return "there"
	}
	return d.ClientFirstName
}

func (d TemplateData) serviceName() string {
	if strings.TrimSpace(d.ServiceName) == "" {
		return "your appointment"
	}
	return d.ServiceName
}

func (d TemplateData) staffName() string {
	if strings.TrimSpace(d.StaffName) == "" {
		return "our team"
	}
	return d.StaffName
}

func (d TemplateData) salonName() string {
	if strings.TrimSpace(d.SalonName) == "" {
		return "the salon"
	}
	return d.SalonName
}

func (d TemplateData) salonAddress() string {
	if strings.TrimSpace(d.SalonAddress) == "" {
		return "Address not available"
	}
	return d.SalonAddress
}

func (d TemplateData) timeOrPlaceholder() string {
	if strings.TrimSpace(d.AppointmentTime) == "" {
		return "your scheduled time"
	}
	return d.AppointmentTime
}

// RenderEmailReminder produces the subject and HTML body for an email
// reminder of the given kind. Pure and total: missing fields degrade to
// placeholders, it never fails.
func RenderEmailReminder(kind ReminderKind, data TemplateData) (subject, body string) {
	switch {
	case kind.LeadHours <= 0:
		subject = fmt.Sprintf("Your appointment at %s is confirmed", data.salonName())
		body = fmt.Sprintf(
			"<p>Hi %s,</p>"+
				"<p>Your %s with %s at %s is confirmed for %s.</p>"+
				"<p>Find us at: %s</p>"+
				"<p>We look forward to seeing you!</p>",
			data.clientName(), data.serviceName(), data.staffName(),
			data.salonName(), data.timeOrPlaceholder(), data.salonAddress())
	case kind.LeadHours >= 24:
		subject = fmt.Sprintf("Reminder: your appointment at %s tomorrow", data.salonName())
		body = fmt.Sprintf(
			"<p>Hi %s,</p>"+
				"<p>This is a reminder that your %s with %s at %s is coming up on %s.</p>"+
				"<p>Find us at: %s</p>"+
				"<p>Need to reschedule? Please give us a call as soon as you can.</p>",
			data.clientName(), data.serviceName(), data.staffName(),
			data.salonName(), data.timeOrPlaceholder(), data.salonAddress())
	default:
		subject = fmt.Sprintf("See you soon at %s", data.salonName())
		body = fmt.Sprintf(
			"<p>Hi %s,</p>"+
				"<p>Your %s with %s at %s is coming up soon: %s.</p>"+
				"<p>Find us at: %s</p>"+
				"<p>See you shortly!</p>",
			data.clientName(), data.serviceName(), data.staffName(),
			data.salonName(), data.timeOrPlaceholder(), data.salonAddress())
	}
	return subject, body
}

// RenderSMSReminder produces a single plain-text SMS for the given kind,
// bounded to stay under common carrier segment limits and always ending
// with an opt-out instruction.
func RenderSMSReminder(kind ReminderKind, data TemplateData) string {
	var msg string
	switch {
	case kind.LeadHours <= 0:
		msg = fmt.Sprintf("Hi %s! Your %s at %s on %s is confirmed.",
			data.clientName(), data.serviceName(), data.salonName(), data.timeOrPlaceholder())
	case kind.LeadHours >= 24:
		msg = fmt.Sprintf("Hi %s! Reminder: %s at %s tomorrow, %s.",
			data.clientName(), data.serviceName(), data.salonName(), data.timeOrPlaceholder())
	default:
		msg = fmt.Sprintf("Hi %s! Your %s at %s is coming up: %s.",
			data.clientName(), data.serviceName(), data.salonName(), data.timeOrPlaceholder())
	}

	const optOut = " Reply STOP to opt out."
	if len(msg)+len(optOut) > smsMaxLength {
		// trim whole runes so non-ASCII names never yield invalid UTF-8
		limit := smsMaxLength - len(optOut) - 3
		runes := []rune(msg)
		for len(runes) > 0 && len(string(runes)) > limit {
			runes = runes[:len(runes)-1]
		}
		msg = string(runes) + "..."
	}
	return msg + optOut
}
