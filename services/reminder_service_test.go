package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"glowdesk-backend/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type emailCall struct {
	to      string
	subject string
	html    string
}

type fakeEmailSender struct {
	calls  []emailCall
	failTo string // recipients whose sends should fail
}

func (f *fakeEmailSender) SendEmail(ctx context.Context, to, subject, html string) error {
	f.calls = append(f.calls, emailCall{to: to, subject: subject, html: html})
	if f.failTo != "" && to == f.failTo {
		return errors.New("provider rejected message")
	}
	return nil
}

type smsCall struct {
	to   string
	body string
}

type fakeSMSSender struct {
	calls  []smsCall
	failTo string
}

func (f *fakeSMSSender) SendSMS(ctx context.Context, to, body string) error {
	f.calls = append(f.calls, smsCall{to: to, body: body})
	if f.failTo != "" && to == f.failTo {
		return errors.New("provider rejected message")
	}
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection so every query sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Salon{},
		&models.User{},
		&models.Client{},
		&models.Service{},
		&models.Appointment{},
		&models.ReminderLog{},
	))
	return db
}

type fixture struct {
	db      *gorm.DB
	email   *fakeEmailSender
	sms     *fakeSMSSender
	service *ReminderService
	salon   models.Salon
	staff   models.User
	offered models.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	salon := models.Salon{
		Name:     "Velvet Rose Spa",
		Address:  "12 High Street",
		City:     "Leeds",
		Timezone: "UTC",
		IsActive: true,
	}
	require.NoError(t, db.Create(&salon).Error)

	staff := models.User{
		Email:     "stylist@velvetrose.test",
		Password:  "secret-password",
		FirstName: "Dana",
		LastName:  "Reyes",
		Role:      "staff",
		SalonID:   salon.ID,
		IsActive:  true,
	}
	require.NoError(t, db.Create(&staff).Error)

	offered := models.Service{
		SalonID:  salon.ID,
		Name:     "Deep Tissue Massage",
		Price:    75,
		Duration: 60,
		IsActive: true,
	}
	require.NoError(t, db.Create(&offered).Error)

	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}
	return &fixture{
		db:      db,
		email:   email,
		sms:     sms,
		service: NewReminderService(db, email, sms),
		salon:   salon,
		staff:   staff,
		offered: offered,
	}
}

func (f *fixture) createClient(t *testing.T, email, phone, preference string) models.Client {
	t.Helper()
	client := models.Client{
		SalonID:                 f.salon.ID,
		FirstName:               "Maya",
		LastName:                "Osei",
		Email:                   email,
		Phone:                   phone,
		CommunicationPreference: preference,
		OptedInReminders:        true,
		IsActive:                true,
	}
	require.NoError(t, f.db.Create(&client).Error)
	return client
}

func (f *fixture) createAppointment(t *testing.T, client models.Client, start time.Time, status string) models.Appointment {
	t.Helper()
	appt := models.Appointment{
		SalonID:   f.salon.ID,
		ClientID:  client.ID,
		StaffID:   f.staff.ID,
		ServiceID: f.offered.ID,
		StartTime: start,
		Status:    status,
	}
	require.NoError(t, f.db.Create(&appt).Error)
	return appt
}

func (f *fixture) loadAppointment(t *testing.T, id uuid.UUID) models.Appointment {
	t.Helper()
	var appt models.Appointment
	require.NoError(t, f.db.
		Preload("Client").Preload("Staff").Preload("Service").Preload("Salon").
		First(&appt, "id = ?", id).Error)
	return appt
}

func (f *fixture) ledgerRows(t *testing.T) []models.ReminderLog {
	t.Helper()
	var rows []models.ReminderLog
	require.NoError(t, f.db.Find(&rows).Error)
	return rows
}

func TestDispatchBothChannels(t *testing.T) {
	f := newFixture(t)
	client := f.createClient(t, "maya@example.com", "+15551230001", models.PreferenceBoth)
	appt := f.createAppointment(t, client, time.Now().Add(2*time.Hour), models.StatusConfirmed)
	loaded := f.loadAppointment(t, appt.ID)

	kind := ReminderKind{LeadHours: 2}
	result := f.service.Dispatch(context.Background(), &loaded, kind, models.ChannelConfig{Email: true, SMS: true})

	assert.True(t, result.EmailSent)
	assert.True(t, result.SMSSent)
	assert.False(t, result.Skipped)
	assert.NoError(t, result.Err)

	rows := f.ledgerRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, "REMINDER_2H", rows[0].ReminderType)
	assert.Equal(t, ChannelBoth, rows[0].Channel)
	assert.True(t, rows[0].Success)
	assert.Equal(t, appt.ID, rows[0].AppointmentID)
}

func TestDispatchIsIdempotent(t *testing.T) {
	f := newFixture(t)
	client := f.createClient(t, "maya@example.com", "+15551230001", models.PreferenceBoth)
	appt := f.createAppointment(t, client, time.Now().Add(24*time.Hour), models.StatusConfirmed)
	loaded := f.loadAppointment(t, appt.ID)

	kind := ReminderKind{LeadHours: 24}
	channels := models.ChannelConfig{Email: true, SMS: true}

	first := f.service.Dispatch(context.Background(), &loaded, kind, channels)
	second := f.service.Dispatch(context.Background(), &loaded, kind, channels)

	assert.True(t, first.EmailSent)
	assert.True(t, second.Skipped)
	assert.False(t, second.EmailSent)
	assert.False(t, second.SMSSent)

	assert.Len(t, f.ledgerRows(t), 1)
	assert.Len(t, f.email.calls, 1)
	assert.Len(t, f.sms.calls, 1)
}

func TestDispatchEmailPreferenceNeverTexts(t *testing.T) {
	f := newFixture(t)
	client := f.createClient(t, "maya@example.com", "+15551230001", models.PreferenceEmail)
	appt := f.createAppointment(t, client, time.Now().Add(2*time.Hour), models.StatusConfirmed)
	loaded := f.loadAppointment(t, appt.ID)

	result := f.service.Dispatch(context.Background(), &loaded, ReminderKind{LeadHours: 2}, models.ChannelConfig{Email: true, SMS: true})

	assert.True(t, result.EmailSent)
	assert.False(t, result.SMSSent)
	assert.Empty(t, f.sms.calls)

	rows := f.ledgerRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, ChannelEmail, rows[0].Channel)
}

func TestDispatchBothPreferenceFallsBackToSMS(t *testing.T) {
	f := newFixture(t)
	client := f.createClient(t, "", "+15551230001", models.PreferenceBoth)
	appt := f.createAppointment(t, client, time.Now().Add(2*time.Hour), models.StatusConfirmed)
	loaded := f.loadAppointment(t, appt.ID)

	result := f.service.Dispatch(context.Background(), &loaded, ReminderKind{LeadHours: 2}, models.ChannelConfig{Email: true, SMS: true})

	assert.False(t, result.EmailSent)
	assert.True(t, result.SMSSent)
	assert.Empty(t, f.email.calls)

	rows := f.ledgerRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, ChannelSMS, rows[0].Channel)
	assert.True(t, rows[0].Success)
}

func TestDispatchBothPreferenceFallsBackToEmail(t *testing.T) {
	f := newFixture(t)
	client := f.createClient(t, "maya@example.com", "", models.PreferenceBoth)
	appt := f.createAppointment(t, client, time.Now().Add(2*time.Hour), models.StatusConfirmed)
	loaded := f.loadAppointment(t, appt.ID)

	result := f.service.Dispatch(context.Background(), &loaded, ReminderKind{LeadHours: 2}, models.ChannelConfig{Email: true, SMS: true})

	assert.True(t, result.EmailSent)
	assert.False(t, result.SMSSent)

	rows := f.ledgerRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, ChannelEmail, rows[0].Channel)
}

func TestDispatchNoReachableChannelWritesNothing(t *testing.T) {
	f := newFixture(t)
	client := f.createClient(t, "", "", models.PreferenceNone)
	appt := f.createAppointment(t, client, time.Now().Add(2*time.Hour), models.StatusConfirmed)
	loaded := f.loadAppointment(t, appt.ID)

	result := f.service.Dispatch(context.Background(), &loaded, ReminderKind{LeadHours: 2}, models.ChannelConfig{Email: true, SMS: true})

	assert.False(t, result.EmailSent)
	assert.False(t, result.SMSSent)
	assert.NoError(t, result.Err)
	assert.Empty(t, f.ledgerRows(t))
}

func TestDispatchChannelFailureDoesNotShortCircuit(t *testing.T) {
	f := newFixture(t)
	client := f.createClient(t, "maya@example.com", "+15551230001", models.PreferenceBoth)
	appt := f.createAppointment(t, client, time.Now().Add(2*time.Hour), models.StatusConfirmed)
	loaded := f.loadAppointment(t, appt.ID)

	f.email.failTo = "maya@example.com"
	result := f.service.Dispatch(context.Background(), &loaded, ReminderKind{LeadHours: 2}, models.ChannelConfig{Email: true, SMS: true})

	assert.False(t, result.EmailSent)
	assert.True(t, result.SMSSent)
	require.Len(t, f.sms.calls, 1)

	rows := f.ledgerRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, ChannelSMS, rows[0].Channel)
	assert.True(t, rows[0].Success)
	assert.Contains(t, rows[0].ErrorMessage, "email:")
}

func TestDispatchAllChannelsFailRecordsFailure(t *testing.T) {
	f := newFixture(t)
	client := f.createClient(t, "maya@example.com", "+15551230001", models.PreferenceBoth)
	appt := f.createAppointment(t, client, time.Now().Add(2*time.Hour), models.StatusConfirmed)
	loaded := f.loadAppointment(t, appt.ID)

	f.email.failTo = "maya@example.com"
	f.sms.failTo = "+15551230001"
	result := f.service.Dispatch(context.Background(), &loaded, ReminderKind{LeadHours: 2}, models.ChannelConfig{Email: true, SMS: true})

	assert.Error(t, result.Err)
	rows := f.ledgerRows(t)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Success)
	assert.Equal(t, ChannelEmail, rows[0].Channel) // cosmetic default
	assert.Contains(t, rows[0].ErrorMessage, "sms:")
}

func TestFailedAttemptIsTerminal(t *testing.T) {
	f := newFixture(t)
	client := f.createClient(t, "maya@example.com", "", models.PreferenceEmail)
	appt := f.createAppointment(t, client, time.Now().Add(2*time.Hour), models.StatusConfirmed)
	loaded := f.loadAppointment(t, appt.ID)

	f.email.failTo = "maya@example.com"
	kind := ReminderKind{LeadHours: 2}
	channels := models.ChannelConfig{Email: true, SMS: true}
	first := f.service.Dispatch(context.Background(), &loaded, kind, channels)
	require.Error(t, first.Err)

	// even after the provider recovers, the failed ledger row suppresses a retry
	f.email.failTo = ""
	second := f.service.Dispatch(context.Background(), &loaded, kind, channels)
	assert.True(t, second.Skipped)
	assert.Len(t, f.email.calls, 1)
	assert.Len(t, f.ledgerRows(t), 1)
}

func TestFindEligibleAppointments(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	client := f.createClient(t, "maya@example.com", "+15551230001", models.PreferenceBoth)

	inWindow := f.createAppointment(t, client, now.Add(24*time.Hour), models.StatusConfirmed)
	f.createAppointment(t, client, now.Add(30*time.Hour), models.StatusConfirmed)       // outside window
	f.createAppointment(t, client, now.Add(24*time.Hour), models.StatusCompleted)       // wrong status
	f.createAppointment(t, client, now.Add(24*time.Hour), models.StatusCancelled)       // wrong status
	pending := f.createAppointment(t, client, now.Add(24*time.Hour), models.StatusPending)

	appointments, err := f.service.FindEligibleAppointments(f.salon.ID, 24, now)
	require.NoError(t, err)
	require.Len(t, appointments, 2)

	ids := []uuid.UUID{appointments[0].ID, appointments[1].ID}
	assert.Contains(t, ids, inWindow.ID)
	assert.Contains(t, ids, pending.ID)

	// joined data is present for templating
	assert.Equal(t, "Maya", appointments[0].Client.FirstName)
	assert.Equal(t, "Deep Tissue Massage", appointments[0].Service.Name)
	assert.Equal(t, "Velvet Rose Spa", appointments[0].Salon.Name)
}

func TestFindEligibleSkipsOptedOutAndInactiveClients(t *testing.T) {
	f := newFixture(t)
	now := time.Now()

	optedOut := f.createClient(t, "out@example.com", "", models.PreferenceEmail)
	require.NoError(t, f.db.Model(&models.Client{}).Where("id = ?", optedOut.ID).
		Update("opted_in_reminders", false).Error)
	f.createAppointment(t, optedOut, now.Add(24*time.Hour), models.StatusConfirmed)

	inactive := f.createClient(t, "inactive@example.com", "", models.PreferenceEmail)
	require.NoError(t, f.db.Model(&models.Client{}).Where("id = ?", inactive.ID).
		Update("is_active", false).Error)
	f.createAppointment(t, inactive, now.Add(24*time.Hour), models.StatusConfirmed)

	appointments, err := f.service.FindEligibleAppointments(f.salon.ID, 24, now)
	require.NoError(t, err)
	assert.Empty(t, appointments)
}

func TestFindEligibleSkipsDeletedClients(t *testing.T) {
	f := newFixture(t)
	now := time.Now()

	client := f.createClient(t, "maya@example.com", "+15551230001", models.PreferenceBoth)
	f.createAppointment(t, client, now.Add(24*time.Hour), models.StatusConfirmed)
	require.NoError(t, f.db.Delete(&models.Client{}, "id = ?", client.ID).Error)

	appointments, err := f.service.FindEligibleAppointments(f.salon.ID, 24, now)
	require.NoError(t, err)
	assert.Empty(t, appointments)

	// and a pass over the salon no longer counts the appointment as processed
	summary := f.service.RunPass(context.Background())
	assert.Equal(t, 0, summary.Processed)
	assert.Empty(t, f.ledgerRows(t))
}

func TestRunPassEndToEnd(t *testing.T) {
	f := newFixture(t)
	client := f.createClient(t, "maya@example.com", "+15551230001", models.PreferenceBoth)
	f.createAppointment(t, client, time.Now().Add(24*time.Hour), models.StatusConfirmed)

	summary := f.service.RunPass(context.Background())

	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Emailed)
	assert.Equal(t, 1, summary.Texted)

	rows := f.ledgerRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, "REMINDER_24H", rows[0].ReminderType)
	assert.True(t, rows[0].Success)
}

func TestRunPassSkipsDisabledSalon(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&models.Salon{}).Where("id = ?", f.salon.ID).
		Update("notification_settings", models.JSONB{
			"reminders": map[string]interface{}{"enabled": false},
		}).Error)

	client := f.createClient(t, "maya@example.com", "+15551230001", models.PreferenceBoth)
	f.createAppointment(t, client, time.Now().Add(24*time.Hour), models.StatusConfirmed)

	summary := f.service.RunPass(context.Background())

	assert.Equal(t, 0, summary.Processed)
	assert.Empty(t, f.ledgerRows(t))
	assert.Empty(t, f.email.calls)
	assert.Empty(t, f.sms.calls)
}

func TestRunPassIsolatesFailures(t *testing.T) {
	f := newFixture(t)

	failing := f.createClient(t, "broken@example.com", "", models.PreferenceEmail)
	f.createAppointment(t, failing, time.Now().Add(24*time.Hour), models.StatusConfirmed)

	healthy := models.Client{
		SalonID:                 f.salon.ID,
		FirstName:               "Iris",
		Email:                   "iris@example.com",
		CommunicationPreference: models.PreferenceEmail,
		OptedInReminders:        true,
		IsActive:                true,
	}
	require.NoError(t, f.db.Create(&healthy).Error)
	f.createAppointment(t, healthy, time.Now().Add(24*time.Hour), models.StatusConfirmed)

	f.email.failTo = "broken@example.com"
	summary := f.service.RunPass(context.Background())

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Emailed)
	assert.Equal(t, 1, summary.Failed)

	rows := f.ledgerRows(t)
	require.Len(t, rows, 2)
}

func TestRunPassSecondRunIsNoOp(t *testing.T) {
	f := newFixture(t)
	client := f.createClient(t, "maya@example.com", "+15551230001", models.PreferenceBoth)
	f.createAppointment(t, client, time.Now().Add(2*time.Hour), models.StatusConfirmed)

	first := f.service.RunPass(context.Background())
	second := f.service.RunPass(context.Background())

	assert.Equal(t, 1, first.Emailed)
	assert.Equal(t, 1, second.Skipped)
	assert.Equal(t, 0, second.Emailed)
	assert.Len(t, f.ledgerRows(t), 1)
}

func TestRecordAttemptToleratesDuplicates(t *testing.T) {
	f := newFixture(t)
	client := f.createClient(t, "maya@example.com", "", models.PreferenceEmail)
	appt := f.createAppointment(t, client, time.Now().Add(2*time.Hour), models.StatusConfirmed)

	kind := ReminderKind{LeadHours: 2}
	require.NoError(t, f.service.RecordAttempt(&appt, kind, ChannelEmail, true, ""))
	// a concurrent run losing the insert race is not an error
	require.NoError(t, f.service.RecordAttempt(&appt, kind, ChannelEmail, true, ""))

	assert.Len(t, f.ledgerRows(t), 1)
}
