package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/reloop/portal/internal/api"
	authservice "github.com/reloop/portal/internal/auth/service"
	"github.com/reloop/portal/internal/backend"
	"github.com/reloop/portal/internal/config"
	"github.com/reloop/portal/internal/controller"
	customerservice "github.com/reloop/portal/internal/customer/service"
	"github.com/reloop/portal/internal/db"
	"github.com/reloop/portal/internal/worker/repository"
	workerservice "github.com/reloop/portal/internal/worker/service"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP portal and the gRPC health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}

			log, err := opts.logger(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	log.Info("starting portal", zap.Stringer("config", cfg))

	database, err := db.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer database.Close()

	scanRepo := repository.NewScanRepository(database)
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, log.Named("backend"))

	authService := authservice.NewAuthService(client, config.NewJWT(cfg.Session), log.Named("auth"))
	customerService := customerservice.NewCustomerService(client, log.Named("customer"))
	workerService := workerservice.NewWorkerService(client, scanRepo, cfg.Scan.RecentLimit, log.Named("worker"))

	router := api.SetupRoutes(api.Controllers{
		Auth:     controller.NewAuthController(authService, cfg.Session),
		Customer: controller.NewCustomerController(customerService),
		Worker:   controller.NewWorkerController(workerService, cfg.Scan.MaxUploadBytes),
		Health:   controller.NewHealthController(scanRepo),
	}, api.Options{
		Sessions:   authService,
		CookieName: cfg.Session.CookieName,
		TrustProxy: cfg.HTTP.TrustProxy,
		Log:        log.Named("http"),
	})

	httpServer := api.NewServer(cfg.HTTP.Address, router, cfg.HTTP.ShutdownTimeout, log.Named("http"))

	var grpcServer *api.GRPCServer
	if cfg.GRPC.Address != "" {
		grpcServer, err = api.NewGRPCServer(cfg.GRPC, scanRepo, cfg.HTTP.ShutdownTimeout, log.Named("grpc"))
		if err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpServer.ListenAndServe(ctx)
	})
	if grpcServer != nil {
		g.Go(func() error {
			return grpcServer.ListenAndServe(ctx, cfg.GRPC.Address)
		})
	}

	err = g.Wait()
	log.Info("portal stopped", zap.Error(err))
	return err
}
