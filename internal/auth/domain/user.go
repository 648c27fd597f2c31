package domain

import "time"

type UserID string

// User is a stored credential record. PasswordHash never leaves the service.
type User struct {
	ID           UserID    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Summary is the public projection of a user returned by the listing.
type Summary struct {
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}

func (u User) Summary() Summary {
	return Summary{Name: u.Name, Email: u.Email}
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
