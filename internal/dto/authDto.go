package dto

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// LoginRequest carries either customer (email) or worker (worker_id) credentials.
type LoginRequest struct {
	UserType string `json:"user_type" validate:"required,oneof=user worker"`
	Email    string `json:"email" validate:"omitempty,email"`
	WorkerID string `json:"worker_id" validate:"omitempty,max=64"`
	Password string `json:"password"`
}

// Normalize trims surrounding whitespace from the identifying fields.
func (l *LoginRequest) Normalize() {
	l.UserType = strings.ToLower(strings.TrimSpace(l.UserType))
	l.Email = strings.TrimSpace(l.Email)
	l.WorkerID = strings.TrimSpace(l.WorkerID)
}

// HasCredentials reports whether the fields required by the selected flow are filled in.
func (l *LoginRequest) HasCredentials() bool {
	if l.Password == "" {
		return false
	}
	switch l.UserType {
	case "user":
		return l.Email != ""
	case "worker":
		return l.WorkerID != ""
	default:
		return false
	}
}

func (l *LoginRequest) Validate() error {
	return validate.Struct(l)
}

type LoginResponse struct {
	Message   string `json:"message"`
	UserType  string `json:"user_type"`
	Redirect  string `json:"redirect"`
	ExpiresAt int64  `json:"expires_at"`
}

type MessageResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}
