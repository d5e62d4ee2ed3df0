package services

import (
	"fmt"
	"time"
)

// ReminderKind identifies a reminder variant by its lead time. Kinds are
// derived from salon-configurable timings rather than a fixed enum; the
// stable string key is what gets persisted in the ledger.
type ReminderKind struct {
	LeadHours int
}

// KindConfirmation is the zero-lead kind sent when a booking is confirmed.
var KindConfirmation = ReminderKind{LeadHours: 0}

// Key returns the stable identifier persisted in reminder ledger rows,
// e.g. "REMINDER_24H" or "CONFIRMATION".
func (k ReminderKind) Key() string {
	if k.LeadHours <= 0 {
		return "CONFIRMATION"
	}
	return fmt.Sprintf("REMINDER_%dH", k.LeadHours)
}

// Lead returns the lead time as a duration.
func (k ReminderKind) Lead() time.Duration {
	return time.Duration(k.LeadHours) * time.Hour
}

func (k ReminderKind) String() string {
	return k.Key()
}
