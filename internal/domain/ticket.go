package domain

import "time"

type TicketStatus string

const (
	TicketStatusActive   TicketStatus = "active"
	TicketStatusRefunded TicketStatus = "refunded"
)

// Ticket is a singly-owned admission resource. EventID is fixed for the
// ticket's whole life; Owner changes only through resale. In the destructive
// refund mode the row is deleted outright, in the flagged mode the status
// moves to refunded exactly once.
type Ticket struct {
	ID        string
	EventID   string
	Owner     string
	Status    TicketStatus
	CreatedAt time.Time
}

// Refunded reports whether the ticket has already been paid out.
func (t Ticket) Refunded() bool {
	return t.Status == TicketStatusRefunded
}
