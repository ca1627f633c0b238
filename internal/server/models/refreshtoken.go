package models

import "time"

// RefreshToken is a server-stored, single-use refresh token.
type RefreshToken struct {
	UserID  string
	Token   string
	Expires time.Time
}
