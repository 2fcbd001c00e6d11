package services

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/dmitrijs2005/mediashare/internal/client/client"
	"github.com/dmitrijs2005/mediashare/internal/client/models"
)

const (
	MinPasswordLength    = 5
	MinTitleLength       = 3
	MinDescriptionLength = 5
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,4}$`)

// ValidationError is an input error caught before any request is sent. It
// matches client.ErrValidation under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return client.ErrValidation }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func validateRegistration(c models.RegisterCredentials) error {
	switch {
	case c.Username == "":
		return invalid("username", "is required")
	case c.Email == "":
		return invalid("email", "is required")
	case !ValidEmail(c.Email):
		return invalid("email", "not a valid email")
	case c.Password == "":
		return invalid("password", "is required")
	case utf8.RuneCountInString(c.Password) < MinPasswordLength:
		return invalid("password", fmt.Sprintf("min %d characters", MinPasswordLength))
	}
	return nil
}

func validateProfileUpdate(u models.ProfileUpdate) error {
	if u.Email != "" && !ValidEmail(u.Email) {
		return invalid("email", "not a valid email")
	}
	if u.Password != "" && utf8.RuneCountInString(u.Password) < MinPasswordLength {
		return invalid("password", fmt.Sprintf("min %d characters", MinPasswordLength))
	}
	return nil
}

// ValidateMediaInput applies the edit-form rules: a title of at least three
// characters and an optional description of at least five.
func ValidateMediaInput(in models.MediaInput) error {
	if in.Title == "" {
		return invalid("title", "is required")
	}
	if utf8.RuneCountInString(in.Title) < MinTitleLength {
		return invalid("title", fmt.Sprintf("must be at least %d characters", MinTitleLength))
	}
	if in.Description != "" && utf8.RuneCountInString(in.Description) < MinDescriptionLength {
		return invalid("description", fmt.Sprintf("must be at least %d characters", MinDescriptionLength))
	}
	return nil
}
