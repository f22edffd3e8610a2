package auth

import (
	"errors"
	"fmt"

	"github.com/e-terminus/core/internal/models"
)

// LoginDTO carries the login request body. Identifier is an email or username,
// disambiguated by whether it parses as an email address.
type LoginDTO struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password"   binding:"required"`
	Remember   bool   `json:"remember"`
}

// RegisterDTO carries the registration request body.
type RegisterDTO struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

type loginResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

var (
	// errInvalidCredentials covers unknown accounts and wrong passwords alike,
	// so responses never reveal whether an email or username exists.
	errInvalidCredentials = errors.New("invalid email or password")
	errAccountLocked      = errors.New("account locked")
	errAccountUnverified  = errors.New("account not verified")
	errDuplicateAccount   = errors.New("email or username already registered")
)

// ValidationError is a field-level 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RateLimitedError carries the remaining window for a 429 response.
type RateLimitedError struct {
	RetryAfter int64
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %ds", e.RetryAfter)
}
