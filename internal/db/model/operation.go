package model

import (
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/parallel-finance/staking-agent/internal/types"
)

const (
	OperationJournalCollection = "operation_journal"
	FailedOperationCollection  = "failed_operations"
)

// OperationJournalDocument is one flow outcome on this member, successful or not.
type OperationJournalDocument struct {
	Id        string           `bson:"_id"`
	EventId   string           `bson:"event_id"`
	Ledger    string           `bson:"ledger"`
	Action    string           `bson:"action"`
	Role      string           `bson:"role"`
	Stage     string           `bson:"stage"`
	CallHash  string           `bson:"call_hash,omitempty"`
	Timepoint *types.Timepoint `bson:"timepoint,omitempty"`
	BlockHash string           `bson:"block_hash,omitempty"`
	Finalized bool             `bson:"finalized"`
	ErrorCode string           `bson:"error_code,omitempty"`
	Error     string           `bson:"error,omitempty"`
	Replayed  bool             `bson:"replayed"`
	CreatedAt int64            `bson:"created_at"`
}

// FailedOperationDocument keeps what is needed to run a failed call again.
type FailedOperationDocument struct {
	Id        string `bson:"_id"`
	EventId   string `bson:"event_id"`
	Ledger    string `bson:"ledger"`
	Action    string `bson:"action"`
	Payload   string `bson:"payload"`
	ErrorCode string `bson:"error_code"`
	Error     string `bson:"error"`
	Attempts  int    `bson:"attempts"`
	CreatedAt int64  `bson:"created_at"`
}

// OperationJournalPagination is the cursor of the newest-first journal listing.
type OperationJournalPagination struct {
	Id        string `json:"id"`
	CreatedAt int64  `json:"created_at"`
}

func DecodeOperationJournalPaginationToken(token string) (*OperationJournalPagination, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	var p OperationJournalPagination
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	if p.Id == "" {
		return nil, errors.New("pagination token without id")
	}
	return &p, nil
}

func BuildOperationJournalPaginationToken(d OperationJournalDocument) (string, error) {
	raw, err := json.Marshal(OperationJournalPagination{Id: d.Id, CreatedAt: d.CreatedAt})
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}
