package server

import (
	"context"
	"fmt"

	"github.com/cultivatehq/cultivate/backend/internal/graph"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// GraphHealthService verifies graph connectivity as part of health checks.
type GraphHealthService struct {
	Client graph.Client
}

// Probe implements the HealthService interface.
func (s GraphHealthService) Probe(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	if err := s.Client.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("graph: %w", err)
	}
	return nil
}

// Pinger is satisfied by the Redis client backing the snapshot cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CompositeHealthService runs every probe and reports the first failure.
type CompositeHealthService []HealthService

// Probe implements the HealthService interface.
func (c CompositeHealthService) Probe(ctx context.Context) error {
	for _, p := range c {
		if p == nil {
			continue
		}
		if err := p.Probe(ctx); err != nil {
			return err
		}
	}
	return nil
}

// PingHealthService adapts a Pinger into a named probe.
type PingHealthService struct {
	Name   string
	Pinger Pinger
}

// Probe implements the HealthService interface.
func (s PingHealthService) Probe(ctx context.Context) error {
	if s.Pinger == nil {
		return nil
	}
	if err := s.Pinger.Ping(ctx); err != nil {
		return fmt.Errorf("%s: %w", s.Name, err)
	}
	return nil
}
