package customerrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
)

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

var (
	ErrBadRequest           = &Error{Code: 400, Message: "bad request"}
	ErrEmptyCredentials     = &Error{Code: 400, Message: "please fill in all fields"}
	ErrUnknownUserType      = &Error{Code: 400, Message: "unknown user type"}
	ErrInvalidRedeemAmount  = &Error{Code: 400, Message: "invalid redeem amount"}
	ErrInsufficientCoins    = &Error{Code: 400, Message: "insufficient coins"}
	ErrMissingUserID        = &Error{Code: 400, Message: "user id is required"}
	ErrInvalidScanMode      = &Error{Code: 400, Message: "scan mode must be checkout or recycle"}
	ErrMissingImage         = &Error{Code: 400, Message: "qr image is required"}
	ErrInvalidCredentials   = &Error{Code: 401, Message: "invalid credentials"}
	ErrUnauthorized         = &Error{Code: 401, Message: "authentication required"}
	ErrSessionExpired       = &Error{Code: 401, Message: "session expired"}
	ErrForbidden            = &Error{Code: 403, Message: "forbidden"}
	ErrNotFound             = &Error{Code: 404, Message: "not found"}
	ErrHttpMethodNotAllowed = &Error{Code: 405, Message: "http method not allowed"}
	ErrImageTooLarge        = &Error{Code: 413, Message: "qr image too large"}
	ErrQRNotFound           = &Error{Code: 422, Message: "no qr code found in image"}
	ErrInternalServer       = &Error{Code: 500, Message: "internal server error"}
	ErrBackendUnavailable   = &Error{Code: 502, Message: "reloop backend unavailable"}
	ErrDbUnreacheable       = &Error{Code: 503, Message: "database unreachable"}
	ErrDbTimeout            = &Error{Code: 504, Message: "database timeout"}
)

// StatusCoder is implemented by errors that carry their own HTTP status,
// such as failures reported by the Reloop backend.
type StatusCoder interface {
	StatusCode() int
}

// PublicMessager is implemented by errors that carry a message safe to show clients.
type PublicMessager interface {
	PublicMessage() string
}

func GetStatus(err error) int {
	var customErr *Error
	if errors.As(err, &customErr) {
		return customErr.Code
	}

	var coder StatusCoder
	if errors.As(err, &coder) {
		return coder.StatusCode()
	}

	switch {
	case errors.Is(err, jwt.ErrSignatureInvalid), errors.Is(err, jwt.ErrTokenExpired):
		return http.StatusUnauthorized

	default:
		return http.StatusInternalServerError
	}
}

func GetMessage(err error) string {
	var customErr *Error
	if errors.As(err, &customErr) {
		return customErr.Message
	}

	var public PublicMessager
	switch status := GetStatus(err); {
	case status == http.StatusBadGateway:
		return ErrBackendUnavailable.Message
	case status >= http.StatusInternalServerError:
		return ErrInternalServer.Message
	case errors.As(err, &public):
		return public.PublicMessage()
	default:
		return err.Error()
	}
}

// FromBackend translates a failed call to the Reloop backend into a portal error.
// Rejections the backend answered keep their mapped status, an expired backend
// token becomes ErrSessionExpired and transport failures become ErrBackendUnavailable.
func FromBackend(err error) error {
	if err == nil {
		return nil
	}

	var coder StatusCoder
	if errors.As(err, &coder) {
		if coder.StatusCode() == http.StatusUnauthorized {
			return ErrSessionExpired
		}
		return err
	}

	if errors.Is(err, context.Canceled) {
		return err
	}
	return ErrBackendUnavailable
}
