package domain

import "time"

// Participant tracks one account's event registrations and its append-only
// notification log. Registered has list semantics: the registration path
// refuses duplicates, the subscription path appends unconditionally.
type Participant struct {
	ID            string
	Owner         string
	Registered    []string
	Notifications []string
	CreatedAt     time.Time
}

// IsRegistered reports whether eventID appears in the registered list.
func (p Participant) IsRegistered(eventID string) bool {
	for _, id := range p.Registered {
		if id == eventID {
			return true
		}
	}
	return false
}
