package identity

import "time"

// User represents a registered platform account.
type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash []byte
	TokenVersion int
	CreatedAt    time.Time
	LastLogin    time.Time
}

// Credentials is a sign-in or sign-up request.
type Credentials struct {
	Email    string
	Password string
	FullName string
}
