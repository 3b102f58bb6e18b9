package auth

import "time"

// Identity is a registered user account keyed by email.
type Identity struct {
	ID           int64
	Name         string
	Surname      string
	Email        string
	PasswordHash string `json:"-"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Name     string
	Surname  string
	Email    string
	Password string
}

// ProfileUpdate carries optional profile changes. Empty fields are kept.
type ProfileUpdate struct {
	Name    string
	Surname string
}

// UserView is the public JSON representation of an identity.
type UserView struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
}

// View strips credentials and internal fields.
func (i *Identity) View() UserView {
	return UserView{Name: i.Name, Surname: i.Surname, Email: i.Email}
}

// Caller is the identity resolved for a single request.
type Caller struct {
	Identity  *Identity
	ExpiresAt time.Time
}

// Subject returns the token subject the caller was resolved from.
func (c *Caller) Subject() string {
	if c == nil || c.Identity == nil {
		return ""
	}
	return c.Identity.Email
}
