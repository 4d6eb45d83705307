package models

import "time"

// User is an account able to log in. PasswordHash holds a bcrypt hash and is
// never rendered to clients.
type User struct {
	ID           string
	UserName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
