package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/reloop/portal/internal/backend"
	"github.com/reloop/portal/internal/config"
	customerrors "github.com/reloop/portal/internal/customErrors"
	"github.com/reloop/portal/internal/dto"
)

const (
	CustomerLanding = "/dashboard"
	WorkerLanding   = "/worker/dashboard"
	LoginPage       = "/auth/login"
)

// Session is a freshly issued portal session.
type Session struct {
	Token     string
	UserType  backend.UserType
	Subject   string
	ExpiresAt time.Time
	Redirect  string
}

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*Session, error)
	Validate(token string) (*config.Claims, error)
}

type AuthServiceImpl struct {
	api backend.API
	jwt config.Token
	log *zap.Logger
}

func NewAuthService(api backend.API, jwt config.Token, log *zap.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{api: api, jwt: jwt, log: log}
}

func (s *AuthServiceImpl) Login(ctx context.Context, req dto.LoginRequest) (*Session, error) {
	req.Normalize()

	userType := backend.UserType(req.UserType)
	if userType != backend.UserTypeCustomer && userType != backend.UserTypeWorker {
		return nil, customerrors.ErrUnknownUserType
	}
	if !req.HasCredentials() {
		return nil, customerrors.ErrEmptyCredentials
	}
	if err := req.Validate(); err != nil {
		return nil, customerrors.ErrBadRequest
	}

	var (
		token    *backend.Token
		subject  string
		redirect string
		err      error
	)
	switch userType {
	case backend.UserTypeCustomer:
		subject, redirect = req.Email, CustomerLanding
		token, err = s.api.LoginCustomer(ctx, backend.CustomerCredentials{Email: req.Email, Password: req.Password})
	case backend.UserTypeWorker:
		subject, redirect = req.WorkerID, WorkerLanding
		token, err = s.api.LoginWorker(ctx, backend.WorkerCredentials{WorkerID: req.WorkerID, Password: req.Password})
	}
	if err != nil {
		return nil, s.loginError(userType, subject, err)
	}

	signed, expiresAt, err := s.jwt.GenerateJWT(string(userType), subject, token.AccessToken, token.TokenType)
	if err != nil {
		return nil, err
	}

	s.log.Info("login succeeded", zap.String("user_type", string(userType)), zap.String("subject", subject))
	return &Session{
		Token:     signed,
		UserType:  userType,
		Subject:   subject,
		ExpiresAt: expiresAt,
		Redirect:  redirect,
	}, nil
}

func (s *AuthServiceImpl) loginError(userType backend.UserType, subject string, err error) error {
	fields := []zap.Field{zap.String("user_type", string(userType)), zap.String("subject", subject), zap.Error(err)}

	if errors.Is(err, backend.ErrMissingToken) {
		s.log.Warn("login rejected", fields...)
		return customerrors.ErrInvalidCredentials
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
		s.log.Warn("login rejected", fields...)
		return customerrors.ErrInvalidCredentials
	}

	s.log.Error("login failed", fields...)
	return customerrors.ErrBackendUnavailable
}

func (s *AuthServiceImpl) Validate(token string) (*config.Claims, error) {
	if token == "" {
		return nil, customerrors.ErrUnauthorized
	}
	return s.jwt.ValidateJWT(token)
}
