package handlers

import (
	"net/http"

	"github.com/parallel-finance/staking-agent/internal/db/model"
	"github.com/parallel-finance/staking-agent/internal/types"
)

// GetState returns the dispatcher correlation lists and the withdraw
// accumulator as of the last handled event.
func (h *Handler) GetState(request *http.Request) (*Result, *types.Error) {
	return NewResult(h.service.State()), nil
}

type OperationPublic struct {
	Id        string           `json:"id"`
	EventId   string           `json:"event_id"`
	Ledger    string           `json:"ledger"`
	Action    string           `json:"action"`
	Role      string           `json:"role"`
	Stage     string           `json:"stage"`
	CallHash  string           `json:"call_hash,omitempty"`
	Timepoint *types.Timepoint `json:"timepoint,omitempty"`
	BlockHash string           `json:"block_hash,omitempty"`
	ErrorCode string           `json:"error_code,omitempty"`
	Error     string           `json:"error,omitempty"`
	Replayed  bool             `json:"replayed"`
	CreatedAt int64            `json:"created_at"`
}

func fromJournalDocument(d model.OperationJournalDocument) OperationPublic {
	return OperationPublic{
		Id:        d.Id,
		EventId:   d.EventId,
		Ledger:    d.Ledger,
		Action:    d.Action,
		Role:      d.Role,
		Stage:     d.Stage,
		CallHash:  d.CallHash,
		Timepoint: d.Timepoint,
		BlockHash: d.BlockHash,
		ErrorCode: d.ErrorCode,
		Error:     d.Error,
		Replayed:  d.Replayed,
		CreatedAt: d.CreatedAt,
	}
}

// GetOperations pages through the operation journal, newest first.
func (h *Handler) GetOperations(request *http.Request) (*Result, *types.Error) {
	paginationKey, err := parsePaginationQuery(request)
	if err != nil {
		return nil, err
	}
	docs, paginationToken, err := h.service.GetOperationJournal(request.Context(), paginationKey)
	if err != nil {
		return nil, err
	}

	operations := make([]OperationPublic, 0, len(docs))
	for _, d := range docs {
		operations = append(operations, fromJournalDocument(d))
	}
	return NewResultWithPagination(operations, paginationToken), nil
}
