package models

import "time"

type User struct {
	ID           string
	Email        string
	PasswordHash string
	IsAdmin      bool
	IsSuperAdmin bool
	CreatedAt    time.Time
}

// Profile holds the optional personal details captured at sign-up.
type Profile struct {
	UserID    string
	FirstName string
	LastName  string
	Phone     string
}
