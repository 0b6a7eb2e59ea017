package domain

import (
	"context"
)

type HubStats struct {
	ActiveSessions    int
	ActiveConnections int64
}

type HealthCheckResponse struct {
	HubStats
}

type HubUseCase interface {
	Handle(ctx context.Context, client Client) error
	Run(ctx context.Context)
	Stats() HubStats
}

type HealthRepository interface {
	HealthCheck(ctx context.Context, addr string) (*HealthCheckResponse, error)
}
