package models

import "time"

// User is the single persisted entity. Email is the storage-enforced unique
// key; username uniqueness is checked at the service layer. PasswordHash is
// internal only and never serialized to clients.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
