// Package signup creates user records from the registration form.
package signup

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrMissingField     = errors.New("signup: all fields are required")
	ErrInvalidEmail     = errors.New("signup: invalid email format")
	ErrPasswordMismatch = errors.New("signup: passwords do not match")
	ErrEmailTaken       = errors.New("signup: email already registered")
	ErrPasswordTooLong  = errors.New("signup: password longer than 72 bytes")
)

// MaxPasswordBytes is the most bcrypt will hash.
const MaxPasswordBytes = 72

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,6}$`)

type Form struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Normalize trims every field.
func (f *Form) Normalize() {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)
	f.Password = strings.TrimSpace(f.Password)
	f.ConfirmPassword = strings.TrimSpace(f.ConfirmPassword)
}

// Validate checks, in order, presence, email shape, password confirmation
// and password length.
func (f Form) Validate() error {
	for _, fld := range []struct{ name, v string }{
		{"firstName", f.FirstName},
		{"lastName", f.LastName},
		{"email", f.Email},
		{"password", f.Password},
		{"confirmPassword", f.ConfirmPassword},
	} {
		if fld.v == "" {
			return fmt.Errorf("%w (%s)", ErrMissingField, fld.name)
		}
	}
	if !emailPattern.MatchString(f.Email) {
		return ErrInvalidEmail
	}
	if f.Password != f.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if len(f.Password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}
