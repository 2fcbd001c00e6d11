package models

import "time"

// UserProfile is the backend's public view of an account. It is replaced
// wholesale whenever the server returns a new one, never patched in place.
type UserProfile struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	LevelName string    `json:"level_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterCredentials is the sign-up request body.
type RegisterCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// ProfileUpdate is a partial profile change. Empty fields are left out of
// the request and therefore stay unchanged on the server.
type ProfileUpdate struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// Availability is the answer to a username/email availability probe.
// Message is set when the probe itself failed.
type Availability struct {
	Available bool
	Message   string
}
