package app

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/clock"
	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/domain"
	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/notify"
)

type TicketRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetEvent(ctx context.Context, id string) (domain.Event, error)
	GetEventForUpdate(ctx context.Context, id string) (domain.Event, error)
	RecordSale(ctx context.Context, eventID string, deposit int64) error
	DepositPool(ctx context.Context, eventID string, amount int64) error
	TakeFromPool(ctx context.Context, eventID string, amount int64) error
	CreateTicket(ctx context.Context, ticket domain.Ticket) error
	GetTicket(ctx context.Context, id string) (domain.Ticket, error)
	GetTicketForUpdate(ctx context.Context, id string) (domain.Ticket, error)
	DeleteTicket(ctx context.Context, id string) error
	MarkRefunded(ctx context.Context, id string) error
	UpdateTicketOwner(ctx context.Context, id, owner string) error
	GetOrganizerCap(ctx context.Context, capID string) (domain.OrganizerCap, error)
}

// TicketCatalog is the slice of the catalog cache sales need: every fund or
// counter mutation stales the listing.
type TicketCatalog interface {
	Invalidate(ctx context.Context)
}

// RefundMode selects the refund design.
type RefundMode string

const (
	// RefundModeDestroy consumes the ticket row outright; no cap is needed
	// and a second refund finds no ticket.
	RefundModeDestroy RefundMode = "destroy"
	// RefundModeFlag keeps the row, marks it refunded exactly once, and
	// requires the organizer cap.
	RefundModeFlag RefundMode = "flag"
)

// ResaleProceeds selects where resale payments land.
type ResaleProceeds string

const (
	ResaleProceedsPool   ResaleProceeds = "pool"
	ResaleProceedsSeller ResaleProceeds = "seller"
)

type TicketService struct {
	repo           TicketRepository
	clock          clock.Clock
	notifier       notify.Notifier
	catalog        TicketCatalog
	refundMode     RefundMode
	resaleProceeds ResaleProceeds
}

func NewTicketService(repo TicketRepository, clk clock.Clock, opts ...TicketServiceOption) *TicketService {
	svc := &TicketService{
		repo:           repo,
		clock:          clk,
		refundMode:     RefundModeDestroy,
		resaleProceeds: ResaleProceedsPool,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type TicketServiceOption func(*TicketService)

// WithRefundMode overrides the default destructive refund design.
func WithRefundMode(m RefundMode) TicketServiceOption {
	return func(s *TicketService) {
		if m == RefundModeDestroy || m == RefundModeFlag {
			s.refundMode = m
		}
	}
}

// WithResaleProceeds overrides the default pool destination for resale
// payments.
func WithResaleProceeds(p ResaleProceeds) TicketServiceOption {
	return func(s *TicketService) {
		if p == ResaleProceedsPool || p == ResaleProceedsSeller {
			s.resaleProceeds = p
		}
	}
}

// WithTicketNotifier broadcasts mint notices through n.
func WithTicketNotifier(n notify.Notifier) TicketServiceOption {
	return func(s *TicketService) {
		s.notifier = n
	}
}

// WithTicketCatalog invalidates c after every fund or counter mutation.
func WithTicketCatalog(c TicketCatalog) TicketServiceOption {
	return func(s *TicketService) {
		s.catalog = c
	}
}

type BuyTicketInput struct {
	EventID string
	Payment int64
	Buyer   string
}

// BuyTicket mints a ticket against capacity and payment checks. The full
// payment is deposited, so any overpayment stays in the pool. The event row
// lock serializes concurrent purchases.
func (s *TicketService) BuyTicket(ctx context.Context, in BuyTicketInput) (domain.Ticket, error) {
	if in.Buyer == "" {
		return domain.Ticket{}, domain.ErrAccountRequired
	}

	now := s.clock.Now()
	var result domain.Ticket
	var event domain.Event

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		ev, err := s.repo.GetEventForUpdate(txCtx, in.EventID)
		if err != nil {
			return err
		}
		if in.Payment < ev.TicketPrice {
			return domain.ErrInsufficientFunds
		}
		if ev.SoldOut() {
			return domain.ErrCapacityReached
		}

		if err := s.repo.RecordSale(txCtx, in.EventID, in.Payment); err != nil {
			return err
		}

		ticket := domain.Ticket{
			ID:        newUUID(),
			EventID:   in.EventID,
			Owner:     in.Buyer,
			Status:    domain.TicketStatusActive,
			CreatedAt: now,
		}
		if err := s.repo.CreateTicket(txCtx, ticket); err != nil {
			return err
		}

		ev.SoldTickets++
		ev.Pool += in.Payment
		event = ev
		result = ticket
		return nil
	})
	if err != nil {
		return domain.Ticket{}, err
	}

	s.invalidateCatalog(ctx)
	s.broadcast(ctx, notify.TicketMinted(now, result, event))
	return result, nil
}

// ValidateTicket is the entry-gate check: the event must be inside its window
// and the ticket must belong to it. No mutation, so re-scans are safe.
func (s *TicketService) ValidateTicket(ctx context.Context, ticketID, eventID string) error {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	ticket, err := s.repo.GetTicket(ctx, ticketID)
	if err != nil {
		return err
	}

	if !event.ActiveAt(s.clock.Now()) {
		return domain.ErrEventNotActive
	}
	if ticket.EventID != event.ID {
		return domain.ErrTicketMismatch
	}
	return nil
}

type RefundTicketInput struct {
	TicketID string
	EventID  string
	// CapID is consulted only in the flagged mode.
	CapID string
}

// RefundTicket pays the ticket price back to the ticket's owner. The
// destructive mode deletes the row; the flagged mode requires the organizer
// cap and marks the row refunded. Neither mode may drive the pool negative.
func (s *TicketService) RefundTicket(ctx context.Context, in RefundTicketInput) (Payout, error) {
	var payout Payout

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if s.refundMode == RefundModeFlag {
			if err := s.authorize(txCtx, in.CapID, in.EventID); err != nil {
				return err
			}
		}

		ticket, err := s.repo.GetTicketForUpdate(txCtx, in.TicketID)
		if err != nil {
			return err
		}
		event, err := s.repo.GetEventForUpdate(txCtx, in.EventID)
		if err != nil {
			return err
		}

		if ticket.EventID != event.ID {
			return domain.ErrTicketMismatch
		}
		if s.refundMode == RefundModeFlag && ticket.Refunded() {
			return domain.ErrAlreadyRefunded
		}
		if event.Pool < event.TicketPrice {
			return domain.ErrInsufficientPoolFunds
		}

		if err := s.repo.TakeFromPool(txCtx, in.EventID, event.TicketPrice); err != nil {
			return err
		}
		if s.refundMode == RefundModeFlag {
			if err := s.repo.MarkRefunded(txCtx, in.TicketID); err != nil {
				return err
			}
		} else {
			if err := s.repo.DeleteTicket(txCtx, in.TicketID); err != nil {
				return err
			}
		}

		payout = Payout{Amount: event.TicketPrice, Recipient: ticket.Owner}
		return nil
	})
	if err != nil {
		return Payout{}, err
	}

	s.invalidateCatalog(ctx)
	return payout, nil
}

type ResellTicketInput struct {
	TicketID string
	EventID  string
	NewOwner string
	Payment  int64
	Seller   string
}

// ResellTicket reassigns the ticket to a new owner. Only the current owner
// may sell. The payment lands in the event pool or goes to the seller,
// depending on the configured proceeds destination.
func (s *TicketService) ResellTicket(ctx context.Context, in ResellTicketInput) (Payout, error) {
	if in.NewOwner == "" {
		return Payout{}, domain.ErrAccountRequired
	}

	var payout Payout

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		ticket, err := s.repo.GetTicketForUpdate(txCtx, in.TicketID)
		if err != nil {
			return err
		}
		event, err := s.repo.GetEventForUpdate(txCtx, in.EventID)
		if err != nil {
			return err
		}

		if ticket.Owner != in.Seller {
			return domain.ErrUnauthorized
		}
		if in.Payment < event.TicketPrice {
			return domain.ErrInsufficientFunds
		}

		if err := s.repo.UpdateTicketOwner(txCtx, in.TicketID, in.NewOwner); err != nil {
			return err
		}

		if s.resaleProceeds == ResaleProceedsSeller {
			payout = Payout{Amount: in.Payment, Recipient: in.Seller}
			return nil
		}
		return s.repo.DepositPool(txCtx, in.EventID, in.Payment)
	})
	if err != nil {
		return Payout{}, err
	}

	s.invalidateCatalog(ctx)
	return payout, nil
}

func (s *TicketService) authorize(ctx context.Context, capID, eventID string) error {
	cap, err := s.repo.GetOrganizerCap(ctx, capID)
	if err != nil {
		if err == domain.ErrCapNotFound {
			return domain.ErrUnauthorized
		}
		return err
	}
	if !cap.Authorizes(eventID) {
		return domain.ErrUnauthorized
	}
	return nil
}

func (s *TicketService) invalidateCatalog(ctx context.Context) {
	if s.catalog != nil {
		s.catalog.Invalidate(ctx)
	}
}

func (s *TicketService) broadcast(ctx context.Context, n notify.Notice) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, n); err != nil {
		log.WithError(err).WithField("kind", n.Kind).Warn("notice publish failed")
	}
}
