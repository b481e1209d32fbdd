// Package grpcserver serves the standard gRPC health protocol, reflecting store reachability.
package grpcserver

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Pinger is a dependency whose reachability is reported.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// DefaultProbeInterval is how often dependencies are re-checked.
const DefaultProbeInterval = 10 * time.Second

// Health keeps a health.Server in sync with a set of named dependency probes.
// The overall status ("" service) is SERVING only while every probe succeeds.
type Health struct {
	hs       *health.Server
	probes   map[string]Pinger
	names    []string
	interval time.Duration
	timeout  time.Duration
	log      *zap.Logger
}

// NewHealth constructs Health. Each probe is also published as its own service name.
func NewHealth(probes map[string]Pinger, interval time.Duration, log *zap.Logger) *Health {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	names := make([]string, 0, len(probes))
	for n := range probes {
		names = append(names, n)
	}
	sort.Strings(names)
	h := &Health{
		hs:       health.NewServer(),
		probes:   probes,
		names:    names,
		interval: interval,
		timeout:  interval / 2,
		log:      log,
	}
	h.hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Server exposes the underlying health implementation.
func (h *Health) Server() healthpb.HealthServer { return h.hs }

// Probe pings every dependency once and updates statuses. It reports whether all succeeded.
func (h *Health) Probe(ctx context.Context) bool {
	all := true
	for _, name := range h.names {
		pctx, cancel := context.WithTimeout(ctx, h.timeout)
		err := h.probes[name].Ping(pctx)
		cancel()
		st := healthpb.HealthCheckResponse_SERVING
		if err != nil {
			all = false
			st = healthpb.HealthCheckResponse_NOT_SERVING
			h.log.Warn("health probe failed", zap.String("dependency", name), zap.Error(err))
		}
		h.hs.SetServingStatus(name, st)
	}
	overall := healthpb.HealthCheckResponse_SERVING
	if !all {
		overall = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.hs.SetServingStatus("", overall)
	return all
}

// Run probes immediately and then every interval until ctx is done,
// after which all services report NOT_SERVING.
func (h *Health) Run(ctx context.Context) {
	h.Probe(ctx)
	t := time.NewTicker(h.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			h.hs.Shutdown()
			return
		case <-t.C:
			h.Probe(ctx)
		}
	}
}

// NewServer builds a gRPC server with recovery and logging interceptors and registers h.
func NewServer(h *Health, log *zap.Logger, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts,
		grpc.ChainUnaryInterceptor(
			RecoverUnary(log),
			LoggingUnary(log),
		),
		grpc.ChainStreamInterceptor(
			RecoverStream(log),
			LoggingStream(log),
		),
	)
	s := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(s, h.Server())
	return s
}
