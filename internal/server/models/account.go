package models

import "time"

// Account is a stored identity record. PasswordHash is produced only by
// internal/cryptox and is never the raw password.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
