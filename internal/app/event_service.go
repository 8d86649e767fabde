package app

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/clock"
	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/domain"
	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/notify"
)

type EventRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateEvent(ctx context.Context, event domain.Event) error
	CreateOrganizerCap(ctx context.Context, cap domain.OrganizerCap) error
	GetEventForUpdate(ctx context.Context, id string) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	UpdateDescription(ctx context.Context, id, description string) error
	MarkCancelled(ctx context.Context, id string) error
	DrainPool(ctx context.Context, id string) error
	GetOrganizerCap(ctx context.Context, capID string) (domain.OrganizerCap, error)
}

// EventCatalog is the read-model cache for the public listing.
type EventCatalog interface {
	Get(ctx context.Context) ([]domain.Event, bool)
	Set(ctx context.Context, events []domain.Event)
	Invalidate(ctx context.Context)
}

type EventService struct {
	repo     EventRepository
	clock    clock.Clock
	notifier notify.Notifier
	catalog  EventCatalog
}

func NewEventService(repo EventRepository, clk clock.Clock, opts ...EventServiceOption) *EventService {
	svc := &EventService{
		repo:  repo,
		clock: clk,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type EventServiceOption func(*EventService)

// WithEventNotifier broadcasts creation and cancellation notices through n.
func WithEventNotifier(n notify.Notifier) EventServiceOption {
	return func(s *EventService) {
		s.notifier = n
	}
}

// WithEventCatalog serves listings from c and refreshes it on mutation.
func WithEventCatalog(c EventCatalog) EventServiceOption {
	return func(s *EventService) {
		s.catalog = c
	}
}

// Payout is an instruction for the external currency-transfer collaborator:
// pay Amount cents to Recipient. A zero Payout means nothing leaves custody.
type Payout struct {
	Amount    int64
	Recipient string
}

type CreateEventInput struct {
	Name         string
	Description  string
	TicketPrice  int64
	TotalTickets int
	StartOffset  time.Duration
	EndOffset    time.Duration
	Owner        string
}

// CreateEvent stores a new event and mints its organizer cap in one
// transaction. The entry window is anchored on the current clock; there is no
// check that the window is ordered or the capacity positive.
func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (domain.Event, domain.OrganizerCap, error) {
	if in.Name == "" {
		return domain.Event{}, domain.OrganizerCap{}, domain.ErrEventNameRequired
	}
	if in.Owner == "" {
		return domain.Event{}, domain.OrganizerCap{}, domain.ErrAccountRequired
	}
	if in.TicketPrice < 0 {
		return domain.Event{}, domain.OrganizerCap{}, domain.ErrInvalidPrice
	}
	if in.TotalTickets < 0 {
		return domain.Event{}, domain.OrganizerCap{}, domain.ErrInvalidCapacity
	}

	now := s.clock.Now()
	event := domain.Event{
		ID:           newUUID(),
		Name:         in.Name,
		Description:  in.Description,
		TicketPrice:  in.TicketPrice,
		TotalTickets: in.TotalTickets,
		StartsAt:     now.Add(in.StartOffset),
		EndsAt:       now.Add(in.EndOffset),
		CreatedAt:    now,
	}
	cap := domain.OrganizerCap{
		ID:        newUUID(),
		EventID:   event.ID,
		Owner:     in.Owner,
		CreatedAt: now,
	}

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreateEvent(txCtx, event); err != nil {
			return err
		}
		return s.repo.CreateOrganizerCap(txCtx, cap)
	})
	if err != nil {
		return domain.Event{}, domain.OrganizerCap{}, err
	}

	s.invalidateCatalog(ctx)
	s.broadcast(ctx, notify.EventCreated(now, event))
	return event, cap, nil
}

// UpdateEventDetails replaces the description. Price, capacity, and the entry
// window are immutable after creation.
func (s *EventService) UpdateEventDetails(ctx context.Context, capID, eventID, description string) (domain.Event, error) {
	var result domain.Event

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.authorize(txCtx, capID, eventID); err != nil {
			return err
		}
		event, err := s.repo.GetEventForUpdate(txCtx, eventID)
		if err != nil {
			return err
		}
		if err := s.repo.UpdateDescription(txCtx, eventID, description); err != nil {
			return err
		}
		event.Description = description
		result = event
		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}

	s.invalidateCatalog(ctx)
	return result, nil
}

// CancelEvent sets the advisory cancelled flag and broadcasts it. The pool
// keeps its balance and tickets stay sellable.
func (s *EventService) CancelEvent(ctx context.Context, capID, eventID string) (domain.Event, error) {
	now := s.clock.Now()
	var result domain.Event

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.authorize(txCtx, capID, eventID); err != nil {
			return err
		}
		event, err := s.repo.GetEventForUpdate(txCtx, eventID)
		if err != nil {
			return err
		}
		if err := s.repo.MarkCancelled(txCtx, eventID); err != nil {
			return err
		}
		event.Cancelled = true
		result = event
		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}

	s.invalidateCatalog(ctx)
	s.broadcast(ctx, notify.EventCancelled(now, result))
	return result, nil
}

// Withdraw drains the whole pool and returns the payout for the cap owner.
// There is no partial withdrawal.
func (s *EventService) Withdraw(ctx context.Context, capID, eventID string) (Payout, error) {
	var payout Payout

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		cap, err := s.authorize(txCtx, capID, eventID)
		if err != nil {
			return err
		}
		event, err := s.repo.GetEventForUpdate(txCtx, eventID)
		if err != nil {
			return err
		}
		if err := s.repo.DrainPool(txCtx, eventID); err != nil {
			return err
		}
		payout = Payout{Amount: event.Pool, Recipient: cap.Owner}
		return nil
	})
	if err != nil {
		return Payout{}, err
	}

	s.invalidateCatalog(ctx)
	return payout, nil
}

// ListEvents serves the public catalog, preferring the cache when one is
// wired.
func (s *EventService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	if s.catalog != nil {
		if events, ok := s.catalog.Get(ctx); ok {
			return events, nil
		}
	}

	events, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, err
	}

	if s.catalog != nil {
		s.catalog.Set(ctx, events)
	}
	return events, nil
}

// authorize resolves the presented cap and checks its event binding. An
// unknown cap and a cap for another event both read as unauthorized.
func (s *EventService) authorize(ctx context.Context, capID, eventID string) (domain.OrganizerCap, error) {
	cap, err := s.repo.GetOrganizerCap(ctx, capID)
	if err != nil {
		if err == domain.ErrCapNotFound {
			return domain.OrganizerCap{}, domain.ErrUnauthorized
		}
		return domain.OrganizerCap{}, err
	}
	if !cap.Authorizes(eventID) {
		return domain.OrganizerCap{}, domain.ErrUnauthorized
	}
	return cap, nil
}

func (s *EventService) invalidateCatalog(ctx context.Context) {
	if s.catalog != nil {
		s.catalog.Invalidate(ctx)
	}
}

func (s *EventService) broadcast(ctx context.Context, n notify.Notice) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, n); err != nil {
		log.WithError(err).WithField("kind", n.Kind).Warn("notice publish failed")
	}
}
