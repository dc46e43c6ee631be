package scripts

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/parallel-finance/staking-agent/internal/services"
	"github.com/parallel-finance/staking-agent/internal/types"
)

// ReplayFailedOperations runs every stored failed operation once with this
// member's role and reports how many were resolved.
func ReplayFailedOperations(
	ctx context.Context, s *services.Services,
	executors map[types.Ledger]services.Executor, router services.ReplayRouter,
) error {
	summary, err := s.ReplayFailedOperations(ctx, executors, router)
	if err != nil {
		return fmt.Errorf("failed to replay failed operations: %w", err)
	}

	fmt.Printf("Replayed %d failed operations, %d failed again, %d dropped, %d skipped.\n",
		summary.Replayed, summary.Failed, summary.Dropped, summary.Skipped)
	log.Ctx(ctx).Info().
		Int("replayed", summary.Replayed).
		Int("failed", summary.Failed).
		Int("dropped", summary.Dropped).
		Int("skipped", summary.Skipped).
		Msg("Replay of failed operations completed.")
	return nil
}
