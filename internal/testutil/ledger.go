package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/parallel-finance/staking-agent/internal/clients/substrate"
	"github.com/parallel-finance/staking-agent/internal/multisig"
	"github.com/parallel-finance/staking-agent/internal/types"
)

// FakeLedger is an in-memory ledger shared by several agents in tests. It
// keeps pending threshold operations and executes a call once it is closed.
type FakeLedger struct {
	name types.Ledger

	mu       sync.Mutex
	height   uint32
	era      uint32
	balances map[types.Address]types.AccountBalance
	bonded   map[types.Address]bool
	pending  map[types.Fingerprint]*types.PendingOperation
	executed []types.Call
	submits  []*types.ThresholdCall

	// OnExecute is called with the ledger lock held once a call executes.
	OnExecute func(l *FakeLedger, call types.Call)
	// FailSubmit makes SubmitAndWatch fail for matching calls.
	FailSubmit func(tc *types.ThresholdCall) error
}

var _ substrate.LedgerClient = (*FakeLedger)(nil)

func NewFakeLedger(name types.Ledger) *FakeLedger {
	return &FakeLedger{
		name:     name,
		balances: map[types.Address]types.AccountBalance{},
		bonded:   map[types.Address]bool{},
		pending:  map[types.Fingerprint]*types.PendingOperation{},
	}
}

func (l *FakeLedger) Name() types.Ledger {
	return l.name
}

func (l *FakeLedger) Ping(ctx context.Context) error {
	return nil
}

func (l *FakeLedger) SetBalance(account types.Address, free types.Balance) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] = types.AccountBalance{Free: free}
}

// Debit must be called with the lock held, as OnExecute hooks are.
func (l *FakeLedger) Debit(account types.Address, amount types.Balance) {
	b := l.balances[account]
	b.Free = b.Free.Sub(amount)
	l.balances[account] = b
}

func (l *FakeLedger) SetBonded(stash types.Address) {
	l.bonded[stash] = true
}

func (l *FakeLedger) SetEra(era uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.era = era
}

func (l *FakeLedger) Executed() []types.Call {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]types.Call(nil), l.executed...)
}

func (l *FakeLedger) Submits() []*types.ThresholdCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*types.ThresholdCall(nil), l.submits...)
}

func (l *FakeLedger) PendingCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

func (l *FakeLedger) GetBalance(ctx context.Context, account types.Address) (*types.AccountBalance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.balances[account]
	return &b, nil
}

func (l *FakeLedger) SubscribeEvents(ctx context.Context, filter types.EventFilter) (<-chan types.LedgerEvent, error) {
	return nil, errors.New("fake ledger has no event stream")
}

func (l *FakeLedger) GetPendingOperation(
	ctx context.Context, account types.Address, hash types.Fingerprint,
) (*types.PendingOperation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	op, ok := l.pending[hash]
	if !ok {
		return nil, nil
	}
	cp := *op
	return &cp, nil
}

func (l *FakeLedger) GetEraIndex(ctx context.Context) (uint32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.era, nil
}

func (l *FakeLedger) IsBonded(ctx context.Context, stash types.Address) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bonded[stash], nil
}

// Encode is "action|payload", which is reversible for the fake.
func (l *FakeLedger) Encode(call types.Call) ([]byte, error) {
	if call.Ledger() != l.name {
		return nil, types.Errorf(types.EncodingError, "%s call on %s", call.Ledger(), l.name)
	}
	payload, err := types.EncodeCallPayload(call)
	if err != nil {
		return nil, err
	}
	return []byte(call.Action().String() + "|" + payload), nil
}

func decode(encoded []byte) (types.Call, error) {
	action, payload, ok := strings.Cut(string(encoded), "|")
	if !ok {
		return nil, errors.New("malformed call")
	}
	return types.DecodeCallPayload(types.Action(action), payload)
}

func (l *FakeLedger) SubmitAndWatch(ctx context.Context, tc *types.ThresholdCall) (*types.ExecutionReceipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.FailSubmit != nil {
		if err := l.FailSubmit(tc); err != nil {
			return nil, err
		}
	}
	l.submits = append(l.submits, tc)
	l.height++

	switch tc.Kind {
	case types.ThresholdCallOpen:
		if _, ok := l.pending[tc.CallHash]; ok {
			return nil, types.Errorf(types.SubmissionError, "operation %s already exists", tc.CallHash)
		}
		l.pending[tc.CallHash] = &types.PendingOperation{
			When:      types.Timepoint{Height: l.height, Index: 1},
			Approvals: tc.Signatories[:1],
		}
	case types.ThresholdCallClose:
		op, ok := l.pending[tc.CallHash]
		if !ok {
			return nil, types.Errorf(types.SubmissionError, "operation %s not found", tc.CallHash)
		}
		if tc.Timepoint == nil || *tc.Timepoint != op.When {
			return nil, types.Errorf(types.SubmissionError, "wrong timepoint for %s", tc.CallHash)
		}
		if multisig.Fingerprint(tc.InnerCall) != tc.CallHash {
			return nil, types.Errorf(types.SubmissionError, "call does not match hash %s", tc.CallHash)
		}
		call, err := decode(tc.InnerCall)
		if err != nil {
			return nil, err
		}
		delete(l.pending, tc.CallHash)
		l.executed = append(l.executed, call)
		if l.OnExecute != nil {
			l.OnExecute(l, call)
		}
	}
	return &types.ExecutionReceipt{BlockHash: "0xfake", Finalized: true}, nil
}
