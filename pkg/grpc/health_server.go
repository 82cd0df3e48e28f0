package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/example/storefront/pkg/config"
)

// Pinger is a dependency the health server probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer exposes grpc.health.v1 for the storefront. The overall status
// and one status per named dependency follow the latest probe.
type HealthServer struct {
	config *config.Config
	logger *zap.Logger
	health *health.Server

	mu       sync.Mutex
	srv      *grpc.Server
	probes   map[string]Pinger
	required map[string]bool
}

func NewHealthServer(cfg *config.Config, logger *zap.Logger) *HealthServer {
	return &HealthServer{
		config:   cfg,
		logger:   logger,
		health:   health.NewServer(),
		probes:   make(map[string]Pinger),
		required: make(map[string]bool),
	}
}

// AddProbe registers a dependency under service name. A failing required
// probe marks the whole server NOT_SERVING; an optional one only its own
// service entry.
func (s *HealthServer) AddProbe(service string, p Pinger, required bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.probes[service] = p
	s.required[service] = required
}

func (s *HealthServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, s.health)
	reflection.Register(srv)

	s.mu.Lock()
	s.srv = srv
	s.mu.Unlock()

	s.logger.Info("Health service started", zap.String("address", addr))

	return srv.Serve(lis)
}

// Probe pings every registered dependency once and updates serving status.
func (s *HealthServer) Probe(ctx context.Context) {
	s.mu.Lock()
	probes := make(map[string]Pinger, len(s.probes))
	required := make(map[string]bool, len(s.required))
	for name, p := range s.probes {
		probes[name] = p
		required[name] = s.required[name]
	}
	s.mu.Unlock()

	overall := healthpb.HealthCheckResponse_SERVING
	for name, p := range probes {
		status := healthpb.HealthCheckResponse_SERVING
		if err := p.Ping(ctx); err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			s.logger.Warn("Dependency probe failed", zap.String("service", name), zap.Error(err))
			if required[name] {
				overall = healthpb.HealthCheckResponse_NOT_SERVING
			}
		}
		s.health.SetServingStatus(name, status)
	}
	s.health.SetServingStatus("", overall)
}

// Run probes immediately and then every interval until ctx is done.
func (s *HealthServer) Run(ctx context.Context, interval time.Duration) {
	s.Probe(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Probe(ctx)
		}
	}
}

// Check answers a health query in-process.
func (s *HealthServer) Check(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.Status, nil
}

func (s *HealthServer) Stop() {
	s.health.Shutdown()

	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv != nil {
		srv.GracefulStop()
	}
}
