package client

type EventType int

const (
	OperationOutcomeEventType EventType = 1
)

// OperationOutcomeEvent is published for every threshold operation outcome
// on this member.
type OperationOutcomeEvent struct {
	EventType EventType `json:"event_type"` // always 1
	EventId   string    `json:"event_id"`
	Ledger    string    `json:"ledger"`
	Action    string    `json:"action"`
	Role      string    `json:"role"`
	Stage     string    `json:"stage"`
	CallHash  string    `json:"call_hash,omitempty"`
	Timepoint string    `json:"timepoint,omitempty"`
	BlockHash string    `json:"block_hash,omitempty"`
	ErrorCode string    `json:"error_code,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp int64     `json:"timestamp"`
}
