package models

import "time"

// RefreshToken is the persisted state of one refresh-token family. At most
// one row exists per family; JIT always names the most recently issued token
// of that family, so a lookup miss on a presented jit means the token was
// already rotated away (or never existed).
type RefreshToken struct {
	ID        string
	UserID    string
	JIT       string
	Family    string
	Expires   time.Time
	CreatedAt time.Time
}
