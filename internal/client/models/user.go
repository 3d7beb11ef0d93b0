// Package models defines the client-side data models exchanged with the
// marketplace API.
package models

import "time"

// User is the account identity returned by the auth endpoints.
// It carries no role information; the client never makes authorization
// decisions on its own.
type User struct {
	ID          int64     `json:"id"`
	UID         string    `json:"uid,omitempty"`
	Username    string    `json:"username,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
	Email       string    `json:"email"`
	PhotoURL    string    `json:"photoURL,omitempty"`
	FirstName   string    `json:"firstName,omitempty"`
	LastName    string    `json:"lastName,omitempty"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Country     string    `json:"country,omitempty"`
	City        string    `json:"city,omitempty"`
	Balance     float64   `json:"balance"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// Name returns the display name, falling back to the username and then email.
func (u *User) Name() string {
	switch {
	case u == nil:
		return ""
	case u.DisplayName != "":
		return u.DisplayName
	case u.Username != "":
		return u.Username
	default:
		return u.Email
	}
}

// UserUpdate is a partial profile update. Nil fields are left untouched by the server.
type UserUpdate struct {
	DisplayName *string `json:"displayName,omitempty"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	PhotoURL    *string `json:"photoURL,omitempty" validate:"omitempty,url"`
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Country     *string `json:"country,omitempty"`
	City        *string `json:"city,omitempty"`
}

// Empty reports whether the update carries no fields.
func (u UserUpdate) Empty() bool {
	return u.DisplayName == nil && u.Email == nil && u.PhotoURL == nil &&
		u.FirstName == nil && u.LastName == nil && u.PhoneNumber == nil &&
		u.Country == nil && u.City == nil
}

// Credentials is the login payload. Identifier is an email or a username.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Registration is the sign-up payload.
type Registration struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
