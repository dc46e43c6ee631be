package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/parallel-finance/staking-agent/internal/db"
	"github.com/parallel-finance/staking-agent/internal/db/model"
	"github.com/parallel-finance/staking-agent/internal/flows"
	"github.com/parallel-finance/staking-agent/internal/queue/client"
	"github.com/parallel-finance/staking-agent/internal/types"
)

// RecordOutcome journals a flow result and publishes it. Failed flows are
// also stored for a later operator replay, unless the failure only describes
// ledger state. Storage or publishing failures are
// returned but never affect the flow itself.
func (s *Services) RecordOutcome(ctx context.Context, report flows.Report) error {
	doc := journalDocument(report)

	var errs []error
	if err := s.DbClient.SaveOperationJournal(ctx, doc); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while saving operation journal")
		errs = append(errs, err)
	}

	if report.Err != nil && replayable(types.CodeOf(report.Err)) {
		if err := s.saveFailedOperation(ctx, report, doc); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("error while saving failed operation")
			errs = append(errs, err)
		}
	}

	if s.Publisher != nil {
		if err := s.Publisher.PublishOutcome(ctx, outcomeEvent(doc)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// replayable is false for the errors a flow returns when the ledger already
// decided the operation: it is open, not open yet, or no longer wanted.
func replayable(code types.ErrorCode) bool {
	switch code {
	case types.PreconditionNotMet, types.OperationAlreadyOpen, types.OperationNotYetOpen:
		return false
	}
	return true
}

func (s *Services) saveFailedOperation(
	ctx context.Context, report flows.Report, doc *model.OperationJournalDocument,
) error {
	payload, err := types.EncodeCallPayload(report.Call)
	if err != nil {
		return err
	}
	return s.DbClient.SaveFailedOperation(ctx, &model.FailedOperationDocument{
		Id:        uuid.NewString(),
		EventId:   report.EventId,
		Ledger:    doc.Ledger,
		Action:    doc.Action,
		Payload:   payload,
		ErrorCode: doc.ErrorCode,
		Error:     doc.Error,
		Attempts:  1,
		CreatedAt: doc.CreatedAt,
	})
}

// GetOperationJournal returns one page of the journal, newest first.
func (s *Services) GetOperationJournal(
	ctx context.Context, paginationToken string,
) ([]model.OperationJournalDocument, string, *types.Error) {
	result, err := s.DbClient.FindOperationJournal(ctx, paginationToken)
	if err != nil {
		if db.IsInvalidPaginationTokenError(err) {
			log.Ctx(ctx).Warn().Err(err).Msg("Invalid pagination token when fetching operation journal")
			return nil, "", types.NewError(http.StatusBadRequest, types.BadRequest, err)
		}
		log.Ctx(ctx).Error().Err(err).Msg("Failed to fetch operation journal")
		return nil, "", types.NewInternalServiceError(err)
	}
	return result.Data, result.PaginationToken, nil
}

func journalDocument(report flows.Report) *model.OperationJournalDocument {
	doc := &model.OperationJournalDocument{
		Id:        uuid.NewString(),
		EventId:   report.EventId,
		Role:      report.Role.String(),
		Stage:     string(flows.StageFailed),
		Replayed:  report.Replayed,
		CreatedAt: time.Now().UnixMilli(),
	}
	if report.Call != nil {
		doc.Ledger = report.Call.Ledger().String()
		doc.Action = report.Call.Action().String()
	}
	if report.Outcome != nil {
		doc.Stage = string(report.Outcome.Stage)
		doc.CallHash = report.Outcome.CallHash.Hex()
		doc.Timepoint = report.Outcome.Timepoint
		if report.Outcome.Receipt != nil {
			doc.BlockHash = report.Outcome.Receipt.BlockHash
			doc.Finalized = report.Outcome.Receipt.Finalized
		}
	}
	if report.Err != nil {
		doc.Stage = string(flows.StageFailed)
		doc.ErrorCode = types.CodeOf(report.Err).String()
		doc.Error = report.Err.Error()
	}
	return doc
}

func outcomeEvent(doc *model.OperationJournalDocument) client.OperationOutcomeEvent {
	ev := client.OperationOutcomeEvent{
		EventType: client.OperationOutcomeEventType,
		EventId:   doc.EventId,
		Ledger:    doc.Ledger,
		Action:    doc.Action,
		Role:      doc.Role,
		Stage:     doc.Stage,
		CallHash:  doc.CallHash,
		BlockHash: doc.BlockHash,
		ErrorCode: doc.ErrorCode,
		Error:     doc.Error,
		Timestamp: doc.CreatedAt,
	}
	if doc.Timepoint != nil {
		ev.Timepoint = doc.Timepoint.String()
	}
	return ev
}
