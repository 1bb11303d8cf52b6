package controller

import (
	"encoding/json"
	"net/http"
	"time"

	authservice "github.com/reloop/portal/internal/auth/service"
	"github.com/reloop/portal/internal/config"
	customerrors "github.com/reloop/portal/internal/customErrors"
	"github.com/reloop/portal/internal/dto"
	"github.com/reloop/portal/internal/middleware"
)

type AuthController struct {
	authService authservice.AuthService
	session     config.SessionConfig
}

func NewAuthController(authService authservice.AuthService, session config.SessionConfig) *AuthController {
	return &AuthController{authService: authService, session: session}
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) error {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return customerrors.ErrBadRequest
	}

	session, err := c.authService.Login(r.Context(), req)
	if err != nil {
		return err
	}

	http.SetCookie(w, c.cookie(r, session.Token, session.ExpiresAt))
	return respond(w, http.StatusOK, dto.LoginResponse{
		Message:   "Sign-In successfully!",
		UserType:  string(session.UserType),
		Redirect:  session.Redirect,
		ExpiresAt: session.ExpiresAt.Unix(),
	})
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, c.cookie(r, "", time.Unix(0, 0)))
	return respond(w, http.StatusOK, dto.MessageResponse{
		Message:  "Signed out",
		Redirect: authservice.LoginPage,
	})
}

// cookie is Secure when configured so or when the request arrived over HTTPS.
func (c *AuthController) cookie(r *http.Request, value string, expires time.Time) *http.Cookie {
	cookie := &http.Cookie{
		Name:     c.session.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   c.session.CookieSecure || middleware.IsHTTPS(r),
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		cookie.MaxAge = -1
	}
	return cookie
}

func respond(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}
