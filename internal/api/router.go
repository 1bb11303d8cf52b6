package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/reloop/portal/internal/backend"
	"github.com/reloop/portal/internal/controller"
	customerrors "github.com/reloop/portal/internal/customErrors"
	"github.com/reloop/portal/internal/middleware"
)

type Controllers struct {
	Auth     *controller.AuthController
	Customer *controller.CustomerController
	Worker   *controller.WorkerController
	Health   *controller.HealthController
}

// Options configures the router around the controllers.
type Options struct {
	Sessions   middleware.SessionValidator
	CookieName string
	// TrustProxy honours X-Forwarded-* headers from a reverse proxy.
	TrustProxy bool
	Log        *zap.Logger
}

type routes struct {
	log        *zap.Logger
	sessions   middleware.SessionValidator
	cookieName string
}

func SetupRoutes(c Controllers, opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	rt := &routes{log: log, sessions: opts.Sessions, cookieName: opts.CookieName}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	if opts.TrustProxy {
		router.Use(middleware.ForwardedHeaders)
	}
	router.Use(chimiddleware.Recoverer)

	router.NotFound(rt.apply(func(w http.ResponseWriter, r *http.Request) error {
		return customerrors.ErrNotFound
	}))
	router.MethodNotAllowed(rt.apply(func(w http.ResponseWriter, r *http.Request) error {
		return customerrors.ErrHttpMethodNotAllowed
	}))

	rt.setupAuthRoutes(router, c.Auth)
	rt.setupCustomerRoutes(router, c.Customer)
	rt.setupWorkerRoutes(router, c.Worker)
	rt.setupSystemRoutes(router, c.Health)

	return router
}

func (rt *routes) apply(h middleware.HandlerFunc) http.HandlerFunc {
	return middleware.ErrorHandler(rt.log)(middleware.LoggingMiddleware(rt.log)(h))
}

func (rt *routes) applyWithSession(userType backend.UserType, h middleware.HandlerFunc) http.HandlerFunc {
	return rt.apply(middleware.RequireSession(rt.sessions, rt.cookieName, userType)(h))
}

func (rt *routes) setupAuthRoutes(router chi.Router, c *controller.AuthController) {
	router.Post("/auth/login", rt.apply(c.Login))
	router.Post("/auth/logout", rt.apply(c.Logout))
}

func (rt *routes) setupCustomerRoutes(router chi.Router, c *controller.CustomerController) {
	customer := func(h middleware.HandlerFunc) http.HandlerFunc {
		return rt.applyWithSession(backend.UserTypeCustomer, h)
	}

	router.Get("/dashboard", customer(c.Dashboard))
	router.Get("/profile", customer(c.Profile))
	router.Get("/redeem", customer(c.RedeemOptions))
	router.Post("/redeem", customer(c.Redeem))
	router.Get("/transactions", customer(c.Transactions))
}

func (rt *routes) setupWorkerRoutes(router chi.Router, c *controller.WorkerController) {
	worker := func(h middleware.HandlerFunc) http.HandlerFunc {
		return rt.applyWithSession(backend.UserTypeWorker, h)
	}

	router.Route("/worker", func(r chi.Router) {
		r.Get("/dashboard", worker(c.Dashboard))
		r.Get("/profile", worker(c.Profile))
		r.Post("/scan", worker(c.Scan))
		r.Post("/check-bag", worker(c.CheckBag))
	})
}

func (rt *routes) setupSystemRoutes(router chi.Router, c *controller.HealthController) {
	router.Get("/healthz", rt.apply(c.HealthCheck))
}
