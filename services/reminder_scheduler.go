// services/reminder_scheduler.go
package services

import (
	"context"
	"log"
	"os"
	"sync"

	"github.com/robfig/cron/v3"
)

// JobAppointmentReminders is the recurring job that runs a reminder pass.
const JobAppointmentReminders = "appointment-reminders"

const defaultReminderCronSpec = "*/15 * * * *"

// ReminderScheduler owns the cron instance and the registry of named jobs.
// It is constructed once at startup and passed around explicitly; Stop is
// wired to the host's termination-signal handler.
type ReminderScheduler struct {
	cron    *cron.Cron
	service *ReminderService

	mu      sync.Mutex
	jobs    map[string]func()
	entries map[string]cron.EntryID
	running bool
}

func NewReminderScheduler(service *ReminderService) *ReminderScheduler {
	s := &ReminderScheduler{
		cron:    cron.New(),
		service: service,
		jobs:    make(map[string]func()),
		entries: make(map[string]cron.EntryID),
	}

	spec := os.Getenv("REMINDER_CRON_SPEC")
	if spec == "" {
		spec = defaultReminderCronSpec
	}
	s.register(JobAppointmentReminders, spec, func() {
		s.service.RunPass(context.Background())
	})

	return s
}

func (s *ReminderScheduler) register(name, spec string, job func()) {
	entryID, err := s.cron.AddFunc(spec, job)
	if err != nil {
		log.Printf("Scheduler: failed to register job %q with spec %q: %v", name, spec, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[name] = job
	s.entries[name] = entryID
}

// Start begins firing registered jobs on their cadence.
func (s *ReminderScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
	log.Println("Reminder scheduler started")
}

// Stop halts the cadence and waits for any in-flight job to finish.
// Safe to call more than once.
func (s *ReminderScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	log.Println("Reminder scheduler stopped")
}

// Status reports each registered job name and whether the scheduler is
// currently running it on its cadence.
func (s *ReminderScheduler) Status() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := make(map[string]bool, len(s.jobs))
	for name := range s.jobs {
		status[name] = s.running
	}
	return status
}

// Trigger runs a registered job synchronously, outside its cadence.
// Returns false for unknown job names without panicking.
func (s *ReminderScheduler) Trigger(name string) bool {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return false
	}
	log.Printf("Scheduler: manually triggering job %q", name)
	job()
	return true
}
