package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/clock"
	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/domain"
)

type ParticipantRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateParticipant(ctx context.Context, p domain.Participant) error
	GetParticipant(ctx context.Context, id string) (domain.Participant, error)
	GetParticipantForUpdate(ctx context.Context, id string) (domain.Participant, error)
	FindEventName(ctx context.Context, eventID string) (string, error)
	AddRegistration(ctx context.Context, participantID, eventID string, at time.Time) error
	AppendNotification(ctx context.Context, participantID, message string, at time.Time) error
}

type ParticipantService struct {
	repo  ParticipantRepository
	clock clock.Clock
}

func NewParticipantService(repo ParticipantRepository, clk clock.Clock) *ParticipantService {
	return &ParticipantService{
		repo:  repo,
		clock: clk,
	}
}

// Register creates the per-account registration resource.
func (s *ParticipantService) Register(ctx context.Context, owner string) (domain.Participant, error) {
	if owner == "" {
		return domain.Participant{}, domain.ErrAccountRequired
	}

	p := domain.Participant{
		ID:        newUUID(),
		Owner:     owner,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.CreateParticipant(ctx, p); err != nil {
		return domain.Participant{}, err
	}
	return p, nil
}

// RegisterForEvent adds the event to the participant's registered list,
// refusing duplicates.
func (s *ParticipantService) RegisterForEvent(ctx context.Context, participantID, eventID string) (domain.Participant, error) {
	now := s.clock.Now()
	var result domain.Participant

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		p, err := s.repo.GetParticipantForUpdate(txCtx, participantID)
		if err != nil {
			return err
		}
		if _, err := s.repo.FindEventName(txCtx, eventID); err != nil {
			return err
		}
		if p.IsRegistered(eventID) {
			return domain.ErrAlreadyRegistered
		}
		if err := s.repo.AddRegistration(txCtx, participantID, eventID, now); err != nil {
			return err
		}

		p.Registered = append(p.Registered, eventID)
		result = p
		return nil
	})
	if err != nil {
		return domain.Participant{}, err
	}
	return result, nil
}

// CheckIn verifies event membership. Read-only.
func (s *ParticipantService) CheckIn(ctx context.Context, participantID, eventID string) error {
	p, err := s.repo.GetParticipant(ctx, participantID)
	if err != nil {
		return err
	}
	if !p.IsRegistered(eventID) {
		return domain.ErrNotRegistered
	}
	return nil
}

// RateEvent verifies event membership and accepts the rating. The value is
// not aggregated anywhere.
func (s *ParticipantService) RateEvent(ctx context.Context, participantID, eventID string, rating int) error {
	if rating < 0 {
		return domain.ErrInvalidRating
	}

	p, err := s.repo.GetParticipant(ctx, participantID)
	if err != nil {
		return err
	}
	if !p.IsRegistered(eventID) {
		return domain.ErrNotRegistered
	}
	return nil
}

// Subscribe logs a subscription message and appends the event to the
// registered list. Unlike RegisterForEvent this append skips the duplicate
// check, so a subscribed event can appear in the list twice.
func (s *ParticipantService) Subscribe(ctx context.Context, participantID, eventID string) (domain.Participant, error) {
	now := s.clock.Now()
	var result domain.Participant

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		p, err := s.repo.GetParticipantForUpdate(txCtx, participantID)
		if err != nil {
			return err
		}
		name, err := s.repo.FindEventName(txCtx, eventID)
		if err != nil {
			return err
		}

		message := fmt.Sprintf("subscribed to notifications for %s", name)
		if err := s.repo.AppendNotification(txCtx, participantID, message, now); err != nil {
			return err
		}
		if err := s.repo.AddRegistration(txCtx, participantID, eventID, now); err != nil {
			return err
		}

		p.Notifications = append(p.Notifications, message)
		p.Registered = append(p.Registered, eventID)
		result = p
		return nil
	})
	if err != nil {
		return domain.Participant{}, err
	}
	return result, nil
}
