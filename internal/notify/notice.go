package notify

import (
	"time"

	"github.com/google/uuid"

	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/domain"
)

// Kind identifies the type of a broadcast notice.
type Kind string

const (
	KindEventCreated   Kind = "event.created"
	KindEventCancelled Kind = "event.cancelled"
	KindTicketMinted   Kind = "ticket.minted"
)

// CancelledMarker replaces the description on cancellation notices.
const CancelledMarker = "cancelled"

// Notice is the structured record broadcast to external observers. Creation
// and cancellation notices share one shape; mint notices add the ticket
// fields.
type Notice struct {
	ID           string    `json:"id"`
	Kind         Kind      `json:"kind"`
	Timestamp    time.Time `json:"timestamp"`
	EventID      string    `json:"event_id"`
	EventName    string    `json:"event_name"`
	Description  string    `json:"description,omitempty"`
	TicketPrice  int64     `json:"ticket_price"`
	TotalTickets int       `json:"total_tickets,omitempty"`
	TicketID     string    `json:"ticket_id,omitempty"`
	Buyer        string    `json:"buyer,omitempty"`
}

// EventCreated builds the notice announcing a new event.
func EventCreated(at time.Time, ev domain.Event) Notice {
	return Notice{
		ID:           uuid.NewString(),
		Kind:         KindEventCreated,
		Timestamp:    at,
		EventID:      ev.ID,
		EventName:    ev.Name,
		Description:  ev.Description,
		TicketPrice:  ev.TicketPrice,
		TotalTickets: ev.TotalTickets,
	}
}

// EventCancelled builds the cancellation notice: the creation shape with the
// description swapped for the fixed marker.
func EventCancelled(at time.Time, ev domain.Event) Notice {
	n := EventCreated(at, ev)
	n.Kind = KindEventCancelled
	n.Description = CancelledMarker
	return n
}

// TicketMinted builds the notice announcing a ticket sale.
func TicketMinted(at time.Time, t domain.Ticket, ev domain.Event) Notice {
	return Notice{
		ID:          uuid.NewString(),
		Kind:        KindTicketMinted,
		Timestamp:   at,
		EventID:     ev.ID,
		EventName:   ev.Name,
		TicketPrice: ev.TicketPrice,
		TicketID:    t.ID,
		Buyer:       t.Owner,
	}
}
