package service

import (
	"context"
	"fmt"

	"chatledger/internal/application/common/slogger"
	"chatledger/internal/domain/entity"
	"chatledger/internal/port/outbound"
)

// LedgerService forwards extracted requests to the optional persistent ledger and event stream.
type LedgerService struct {
	repository outbound.RequestRepository
	publisher  outbound.RequestPublisher
}

// NewLedgerService creates a ledger service. Either sink may be nil to disable it.
func NewLedgerService(repository outbound.RequestRepository, publisher outbound.RequestPublisher) *LedgerService {
	return &LedgerService{repository: repository, publisher: publisher}
}

// Enabled reports whether any sink is configured.
func (s *LedgerService) Enabled() bool {
	return s.repository != nil || s.publisher != nil
}

// Record stores the requests, then publishes them. Publishing is skipped when storing fails.
func (s *LedgerService) Record(ctx context.Context, requests []*entity.Request) error {
	if len(requests) == 0 {
		return nil
	}

	if s.repository != nil {
		if err := s.repository.SaveBatch(ctx, requests); err != nil {
			return fmt.Errorf("failed to store requests: %w", err)
		}
		slogger.Info(ctx, "Requests stored", slogger.Field("requests", len(requests)))
	}

	if s.publisher != nil {
		if err := s.publisher.PublishRequests(ctx, requests); err != nil {
			return fmt.Errorf("failed to publish requests: %w", err)
		}
		slogger.Info(ctx, "Requests published", slogger.Field("requests", len(requests)))
	}
	return nil
}
