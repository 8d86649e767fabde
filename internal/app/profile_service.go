package app

import (
	"context"

	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/clock"
	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/domain"
)

type ProfileRepository interface {
	CreateProfile(ctx context.Context, p domain.Profile) error
	GetProfile(ctx context.Context, id string) (domain.Profile, error)
	SetVerified(ctx context.Context, id string, verified bool) error
	SetReputation(ctx context.Context, id string, score int64) error
	AdminCapExists(ctx context.Context, capID string) (bool, error)
}

type ProfileService struct {
	repo  ProfileRepository
	clock clock.Clock
}

func NewProfileService(repo ProfileRepository, clk clock.Clock) *ProfileService {
	return &ProfileService{
		repo:  repo,
		clock: clk,
	}
}

// Register creates an unverified profile with zero reputation. One profile
// per account is a caller convention, not enforced here.
func (s *ProfileService) Register(ctx context.Context, owner string) (domain.Profile, error) {
	if owner == "" {
		return domain.Profile{}, domain.ErrAccountRequired
	}

	p := domain.Profile{
		ID:        newUUID(),
		Owner:     owner,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.CreateProfile(ctx, p); err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}

// VerifyProfile marks the profile verified. Authority is possession of a
// stored admin cap, nothing about the caller's identity.
func (s *ProfileService) VerifyProfile(ctx context.Context, adminCapID, profileID string) (domain.Profile, error) {
	if err := s.authorize(ctx, adminCapID); err != nil {
		return domain.Profile{}, err
	}

	p, err := s.repo.GetProfile(ctx, profileID)
	if err != nil {
		return domain.Profile{}, err
	}
	if err := s.repo.SetVerified(ctx, profileID, true); err != nil {
		return domain.Profile{}, err
	}

	p.Verified = true
	return p, nil
}

// UpdateReputation replaces the reputation score.
func (s *ProfileService) UpdateReputation(ctx context.Context, adminCapID, profileID string, score int64) (domain.Profile, error) {
	if score < 0 {
		return domain.Profile{}, domain.ErrInvalidReputation
	}
	if err := s.authorize(ctx, adminCapID); err != nil {
		return domain.Profile{}, err
	}

	p, err := s.repo.GetProfile(ctx, profileID)
	if err != nil {
		return domain.Profile{}, err
	}
	if err := s.repo.SetReputation(ctx, profileID, score); err != nil {
		return domain.Profile{}, err
	}

	p.Reputation = score
	return p, nil
}

func (s *ProfileService) authorize(ctx context.Context, adminCapID string) error {
	ok, err := s.repo.AdminCapExists(ctx, adminCapID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUnauthorized
	}
	return nil
}
