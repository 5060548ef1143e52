package models

import "time"

// User is a stored credential record. PasswordHash is a PHC-format Argon2id
// string and is the only secret-bearing field; it must never be logged or
// echoed back to clients.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
