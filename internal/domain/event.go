package domain

import "time"

// Event is the shared aggregate for one ticketed happening: sale
// configuration, the sold-ticket counter, and the custodial fund pool.
// All amounts are integer cents.
type Event struct {
	ID           string
	Name         string
	Description  string
	TicketPrice  int64
	TotalTickets int
	SoldTickets  int
	Pool         int64
	StartsAt     time.Time
	EndsAt       time.Time
	Cancelled    bool
	CreatedAt    time.Time
}

// ActiveAt reports whether the entry window covers t.
func (e Event) ActiveAt(t time.Time) bool {
	return !t.Before(e.StartsAt) && !t.After(e.EndsAt)
}

// SoldOut reports whether the sold counter has reached capacity.
func (e Event) SoldOut() bool {
	return e.SoldTickets >= e.TotalTickets
}

// OrganizerCap is the unforgeable handle minted exactly once alongside an
// event. Presenting it is the only proof of authority over that event; there
// is no revocation or re-issue, so a lost cap permanently locks the
// privileged operations.
type OrganizerCap struct {
	ID        string
	EventID   string
	Owner     string
	CreatedAt time.Time
}

// Authorizes reports whether the cap was minted for the given event.
func (c OrganizerCap) Authorizes(eventID string) bool {
	return c.EventID == eventID
}
