package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/parallel-finance/staking-agent/internal/flows"
	"github.com/parallel-finance/staking-agent/internal/types"
)

// Executor runs threshold operations on one ledger.
type Executor interface {
	Execute(ctx context.Context, op flows.Operation) (*flows.Outcome, error)
	Role() flows.Role
}

// ReplayRouter gives a replayed call the opener check and the follow-up
// operations it had when it first ran from an event.
type ReplayRouter interface {
	Precondition(call types.Call) func(context.Context) error
	FollowUp(ctx context.Context, eventId string, call types.Call)
}

type ReplaySummary struct {
	Replayed int
	Failed   int
	// Dropped operations were refused by the ledger state on replay and are
	// not kept for another attempt.
	Dropped int
	Skipped int
}

// ReplayFailedOperations runs every stored failed operation once, oldest
// first, with the executor of its ledger. Resolved and dropped operations
// move to the journal, the rest stay with an increased attempt count.
func (s *Services) ReplayFailedOperations(
	ctx context.Context, executors map[types.Ledger]Executor, router ReplayRouter,
) (*ReplaySummary, error) {
	failed, err := s.DbClient.FindFailedOperations(ctx, s.cfg.Db.MaxReplayBatch)
	if err != nil {
		return nil, err
	}

	summary := &ReplaySummary{}
	for _, doc := range failed {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		logger := log.Ctx(ctx).With().
			Str("failedOperationId", doc.Id).
			Str("eventId", doc.EventId).
			Str("action", doc.Action).
			Logger()

		if !replayable(types.ErrorCode(doc.ErrorCode)) {
			logger.Warn().Str("errorCode", doc.ErrorCode).Msg("skipping failed operation that is not replayable")
			summary.Skipped++
			continue
		}

		call, err := types.DecodeCallPayload(types.Action(doc.Action), doc.Payload)
		if err != nil {
			logger.Error().Err(err).Msg("skipping failed operation with undecodable payload")
			summary.Skipped++
			continue
		}
		executor, ok := executors[call.Ledger()]
		if !ok {
			logger.Error().Str("ledger", call.Ledger().String()).Msg("no executor for ledger")
			summary.Skipped++
			continue
		}

		opCtx := logger.WithContext(ctx)
		outcome, execErr := executor.Execute(opCtx, flows.Operation{
			Call:           call,
			Precondition:   router.Precondition(call),
			AwaitExecution: s.cfg.Agent.AwaitExecution,
		})
		report := flows.Report{
			EventId:  doc.EventId,
			Call:     call,
			Role:     executor.Role(),
			Outcome:  outcome,
			Err:      execErr,
			Replayed: true,
		}
		if execErr != nil && !replayable(types.CodeOf(execErr)) {
			summary.Dropped++
			logger.Info().Err(execErr).Msg("failed operation no longer applies")
			if err := s.DbClient.ResolveFailedOperation(ctx, doc.Id, journalDocument(report)); err != nil {
				logger.Error().Err(err).Msg("error while resolving failed operation")
			}
			continue
		}
		if execErr != nil {
			summary.Failed++
			if err := s.DbClient.IncrementFailedOperationAttempts(
				ctx, doc.Id, types.CodeOf(execErr).String(), execErr.Error(),
			); err != nil {
				logger.Error().Err(err).Msg("error while updating failed operation")
			}
			if err := s.DbClient.SaveOperationJournal(ctx, journalDocument(report)); err != nil {
				logger.Error().Err(err).Msg("error while saving operation journal")
			}
			continue
		}

		summary.Replayed++
		if err := s.DbClient.ResolveFailedOperation(ctx, doc.Id, journalDocument(report)); err != nil {
			logger.Error().Err(err).Msg("error while resolving failed operation")
		}
		router.FollowUp(opCtx, doc.EventId, call)
	}
	return summary, nil
}
