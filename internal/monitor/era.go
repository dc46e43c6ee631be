package monitor

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parallel-finance/staking-agent/internal/clients/substrate"
	"github.com/parallel-finance/staking-agent/internal/types"
	"github.com/parallel-finance/staking-agent/internal/utils"
)

// EraMonitor emits an EraRollover each time the relay era index changes. The
// first observed era is only a baseline.
type EraMonitor struct {
	ledger       substrate.LedgerClient
	pollInterval time.Duration
}

func NewEraMonitor(ledger substrate.LedgerClient, pollInterval time.Duration) *EraMonitor {
	return &EraMonitor{ledger: ledger, pollInterval: pollInterval}
}

func (m *EraMonitor) Name() string {
	return "era"
}

func (m *EraMonitor) Run(ctx context.Context, out chan<- Envelope) error {
	logger := log.Ctx(ctx).With().Str("monitor", m.Name()).Logger()

	var (
		last    uint32
		hasLast bool
	)
	for {
		era, err := m.ledger.GetEraIndex(ctx)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn().Err(err).Msg("failed to read era index")
		case !hasLast:
			last, hasLast = era, true
			logger.Info().Uint32("era", era).Msg("era baseline")
		case era != last:
			logger.Info().Uint32("from", last).Uint32("to", era).Msg("era changed")
			last = era
			if err := Emit(ctx, out, types.EraRolloverEvent{Era: era}); err != nil {
				return err
			}
		}

		if err := utils.Sleep(ctx, m.pollInterval); err != nil {
			return err
		}
	}
}
