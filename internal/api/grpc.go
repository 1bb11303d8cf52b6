package api

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"os"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/reloop/portal/internal/config"
)

// ServiceName is the gRPC health service name reported for the portal.
const ServiceName = "reloop.portal"

var ErrInvalidCACert = errors.New("no certificates found in CA file")

// Pinger reports whether the scan journal database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type GRPCServer struct {
	Server          *grpc.Server
	health          *health.Server
	db              Pinger
	shutdownTimeout time.Duration
	probeInterval   time.Duration
	log             *zap.Logger
}

func NewGRPCServer(cfg config.GRPCConfig, db Pinger, shutdownTimeout time.Duration, log *zap.Logger) (*GRPCServer, error) {
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(LoggingInterceptor(log)),
	}

	if cfg.TLSCertFile != "" {
		creds, err := loadTLSCredentials(cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, grpc.Creds(creds))
	}

	server := grpc.NewServer(opts...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(server, hs)

	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &GRPCServer{
		Server:          server,
		health:          hs,
		db:              db,
		shutdownTimeout: shutdownTimeout,
		probeInterval:   15 * time.Second,
		log:             log,
	}, nil
}

// Serve answers health checks on lis until ctx is done. The serving status
// follows the database ping, refreshed every probe interval.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	serverErrors := make(chan error, 1)

	s.probe(ctx)
	go s.watch(ctx)

	go func() {
		s.log.Info("grpc server listening", zap.String("address", lis.Addr().String()))
		serverErrors <- s.Server.Serve(lis)
	}()

	select {
	case err := <-serverErrors:
		return err

	case <-ctx.Done():
		s.log.Info("starting graceful shutdown of grpc server")
		s.health.Shutdown()
		s.gracefulShutdown()
		<-serverErrors
		return nil
	}
}

func (s *GRPCServer) ListenAndServe(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

func (s *GRPCServer) watch(ctx context.Context) {
	ticker := time.NewTicker(s.probeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.probe(ctx)
		}
	}
}

func (s *GRPCServer) probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	serving := healthpb.HealthCheckResponse_SERVING
	if err := s.db.Ping(ctx); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		s.log.Warn("database ping failed", zap.Error(err))
		serving = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", serving)
	s.health.SetServingStatus(ServiceName, serving)
}

func (s *GRPCServer) gracefulShutdown() {
	stopped := make(chan struct{})
	go func() {
		s.Server.GracefulStop()
		close(stopped)
	}()

	timer := time.NewTimer(s.shutdownTimeout)
	select {
	case <-timer.C:
		s.log.Warn("timeout reached, forcing grpc shutdown")
		s.Server.Stop()
	case <-stopped:
		timer.Stop()
	}
}

func LoggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		log.Debug("grpc call completed",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}

func loadTLSCredentials(cfg config.GRPCConfig) (credentials.TransportCredentials, error) {
	serverCert, err := tls.LoadX509KeyPair(cfg.TLSCertFile, cfg.TLSKeyFile)
	if err != nil {
		return nil, err
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{serverCert},
		MinVersion:   tls.VersionTLS13,
	}

	if cfg.CACertFile != "" {
		caCert, err := os.ReadFile(cfg.CACertFile)
		if err != nil {
			return nil, err
		}

		certPool := x509.NewCertPool()
		if !certPool.AppendCertsFromPEM(caCert) {
			return nil, ErrInvalidCACert
		}
		tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
		tlsConfig.ClientCAs = certPool
	}

	return credentials.NewTLS(tlsConfig), nil
}
