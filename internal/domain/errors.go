package domain

import "errors"

var (
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrCapacityReached       = errors.New("capacity reached")
	ErrEventNotActive        = errors.New("event not active")
	ErrTicketMismatch        = errors.New("ticket does not match event")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrAlreadyRefunded       = errors.New("ticket already refunded")
	ErrNotRegistered         = errors.New("not registered for event")
	ErrInsufficientPoolFunds = errors.New("insufficient pool funds")

	ErrEventNotFound       = errors.New("event not found")
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrCapNotFound         = errors.New("capability not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrAlreadyRegistered   = errors.New("already registered for event")

	ErrEventNameRequired = errors.New("event name required")
	ErrAccountRequired   = errors.New("account required")
	ErrInvalidPrice      = errors.New("invalid ticket price")
	ErrInvalidCapacity   = errors.New("invalid capacity")
	ErrInvalidRating     = errors.New("invalid rating")
	ErrInvalidReputation = errors.New("invalid reputation score")
	ErrInvalidID         = errors.New("invalid id")
)
