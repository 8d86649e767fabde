package notify

import (
	"context"
	"testing"
	"time"

	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/domain"
)

func TestNotices(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 1, 4, 10, 0, 0, 0, time.UTC)
	event := domain.Event{
		ID:           "e1",
		Name:         "Goose Fest",
		Description:  "honking",
		TicketPrice:  100,
		TotalTickets: 50,
	}

	t.Run("event created carries the listing fields", func(t *testing.T) {
		n := EventCreated(at, event)

		if n.ID == "" {
			t.Fatalf("expected a notice id")
		}
		if n.Kind != KindEventCreated {
			t.Fatalf("expected kind %q, got %q", KindEventCreated, n.Kind)
		}
		if !n.Timestamp.Equal(at) {
			t.Fatalf("unexpected timestamp: %v", n.Timestamp)
		}
		if n.EventID != "e1" || n.EventName != "Goose Fest" || n.Description != "honking" {
			t.Fatalf("unexpected notice: %+v", n)
		}
		if n.TicketPrice != 100 || n.TotalTickets != 50 {
			t.Fatalf("unexpected listing fields: %+v", n)
		}
		if n.TicketID != "" || n.Buyer != "" {
			t.Fatalf("expected no ticket fields, got %+v", n)
		}
	})

	t.Run("cancellation swaps the description for the marker", func(t *testing.T) {
		n := EventCancelled(at, event)

		if n.Kind != KindEventCancelled {
			t.Fatalf("expected kind %q, got %q", KindEventCancelled, n.Kind)
		}
		if n.Description != CancelledMarker {
			t.Fatalf("expected marker description, got %q", n.Description)
		}
		if n.EventID != "e1" || n.EventName != "Goose Fest" || n.TicketPrice != 100 {
			t.Fatalf("unexpected notice: %+v", n)
		}
	})

	t.Run("ticket minted names the ticket and buyer", func(t *testing.T) {
		ticket := domain.Ticket{ID: "t1", EventID: "e1", Owner: "acct-alice"}
		n := TicketMinted(at, ticket, event)

		if n.Kind != KindTicketMinted {
			t.Fatalf("expected kind %q, got %q", KindTicketMinted, n.Kind)
		}
		if n.TicketID != "t1" || n.Buyer != "acct-alice" {
			t.Fatalf("unexpected ticket fields: %+v", n)
		}
		if n.EventID != "e1" || n.EventName != "Goose Fest" || n.TicketPrice != 100 {
			t.Fatalf("unexpected event fields: %+v", n)
		}
	})

	t.Run("each notice gets its own id", func(t *testing.T) {
		a := EventCreated(at, event)
		b := EventCreated(at, event)

		if a.ID == b.ID {
			t.Fatalf("expected distinct ids, both %q", a.ID)
		}
	})

	t.Run("log notifier never fails", func(t *testing.T) {
		if err := (LogNotifier{}).Publish(context.Background(), EventCreated(at, event)); err != nil {
			t.Fatalf("publish: %v", err)
		}
	})
}
