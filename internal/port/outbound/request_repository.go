package outbound

import (
	"context"

	"chatledger/internal/domain/entity"
)

// RequestRepository defines the outbound port for request ledger persistence.
type RequestRepository interface {
	// SaveBatch stores requests atomically. Requests already stored are left unchanged.
	SaveBatch(ctx context.Context, requests []*entity.Request) error
	FindByMonth(ctx context.Context, month string) ([]*entity.Request, error)
	CountByCategory(ctx context.Context) (map[string]int, error)
	CountByMonth(ctx context.Context) (map[string]int, error)
}

// RequestPublisher defines the outbound port for announcing extracted requests.
type RequestPublisher interface {
	PublishRequests(ctx context.Context, requests []*entity.Request) error
}

// RequestPublisherHealth defines health monitoring capabilities for request publishers.
type RequestPublisherHealth interface {
	GetConnectionHealth() PublisherHealthStatus
	GetPublishMetrics() PublisherMetrics
}

// PublisherHealthStatus represents the health status of a request publisher.
type PublisherHealthStatus struct {
	Connected        bool   `json:"connected"`
	LastError        string `json:"last_error,omitempty"`
	Uptime           string `json:"uptime"`
	JetStreamEnabled bool   `json:"jetstream_enabled"`
}

// PublisherMetrics represents request publishing counters.
type PublisherMetrics struct {
	Published int64  `json:"published"`
	Failed    int64  `json:"failed"`
	LastSent  string `json:"last_sent,omitempty"`
}
