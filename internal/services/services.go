package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/parallel-finance/staking-agent/internal/clients/substrate"
	"github.com/parallel-finance/staking-agent/internal/config"
	"github.com/parallel-finance/staking-agent/internal/db"
	"github.com/parallel-finance/staking-agent/internal/queue/client"
	"github.com/parallel-finance/staking-agent/internal/types"
)

// OutcomePublisher is the queue side of outcome reporting.
type OutcomePublisher interface {
	PublishOutcome(ctx context.Context, ev client.OperationOutcomeEvent) error
	IsConnectionHealthy() error
}

// Service layer contains the business logic and is used to interact with
// the database and other external clients (if any).
type Services struct {
	DbClient  db.DBClient
	Publisher OutcomePublisher
	Ledgers   []substrate.LedgerClient
	cfg       *config.Config

	stateMu sync.RWMutex
	state   types.DispatcherState
}

func New(
	ctx context.Context, cfg *config.Config, publisher OutcomePublisher, ledgers ...substrate.LedgerClient,
) (*Services, error) {
	dbClient, err := db.New(ctx, cfg.Db)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while creating db client")
		return nil, err
	}
	return &Services{
		DbClient:  dbClient,
		Publisher: publisher,
		Ledgers:   ledgers,
		cfg:       cfg,
	}, nil
}

// DoHealthCheck checks the health of the services by pinging the database,
// every ledger and the outcome queue.
func (s *Services) DoHealthCheck(ctx context.Context) error {
	if err := s.DbClient.Ping(ctx); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	for _, ledger := range s.Ledgers {
		if err := ledger.Ping(ctx); err != nil {
			return fmt.Errorf("%s: %w", ledger.Name(), err)
		}
	}
	if s.Publisher != nil {
		if err := s.Publisher.IsConnectionHealthy(); err != nil {
			return fmt.Errorf("queue: %w", err)
		}
	}
	return nil
}

// PublishState replaces the state snapshot served by the status API.
func (s *Services) PublishState(state types.DispatcherState) {
	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()
}

func (s *Services) State() types.DispatcherState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}
