package domain

import "time"

// Profile carries the admin-set trust state for one account. Uniqueness per
// account is a caller convention, not enforced here.
type Profile struct {
	ID         string
	Owner      string
	Verified   bool
	Reputation int64
	CreatedAt  time.Time
}

// AdminCap is the held credential for profile administration. Possession of
// a stored cap is the entire check; no identity comparison is involved.
type AdminCap struct {
	ID        string
	CreatedAt time.Time
}
