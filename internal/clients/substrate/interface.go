package substrate

import (
	"context"

	"github.com/parallel-finance/staking-agent/internal/types"
)

// LedgerClient is the per-ledger handle the agent drives. One instance exists
// for the parachain and one for the relay chain.
type LedgerClient interface {
	Name() types.Ledger
	GetBalance(ctx context.Context, account types.Address) (*types.AccountBalance, error)
	// SubscribeEvents streams finalized events matching filter. The channel is
	// closed when the underlying subscription ends or ctx is done.
	SubscribeEvents(ctx context.Context, filter types.EventFilter) (<-chan types.LedgerEvent, error)
	// GetPendingOperation returns nil, nil when no operation is open for hash.
	GetPendingOperation(ctx context.Context, account types.Address, hash types.Fingerprint) (*types.PendingOperation, error)
	GetEraIndex(ctx context.Context) (uint32, error)
	IsBonded(ctx context.Context, stash types.Address) (bool, error)
	Encode(call types.Call) ([]byte, error)
	SubmitAndWatch(ctx context.Context, call *types.ThresholdCall) (*types.ExecutionReceipt, error)
	Ping(ctx context.Context) error
}
