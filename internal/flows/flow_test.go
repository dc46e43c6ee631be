package flows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/parallel-finance/staking-agent/internal/mocks"
	"github.com/parallel-finance/staking-agent/internal/multisig"
	"github.com/parallel-finance/staking-agent/internal/types"
	"github.com/parallel-finance/staking-agent/internal/utils"
)

var (
	alice   = types.MustParseAddress("0xd43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d")
	bob     = types.MustParseAddress("0x8eaf04151687736326c9fea17e25fc5287613693c912909cb226aa4794f26a48")
	charlie = types.MustParseAddress("0x90b5ab205c6974c9ea841be688864633dc9ca8a357843eeacf2314649965fe22")

	stakeCall    = types.StakeCall{Agent: alice, Amount: types.NewBalance(500)}
	stakeEncoded = []byte("liquid-staking-withdraw-500")
)

func newLedger(t *testing.T) *mocks.LedgerClient {
	ledger := mocks.NewLedgerClient(t)
	ledger.On("Name").Return(types.Parachain).Maybe()
	ledger.On("Encode", mock.Anything).Return(stakeEncoded, nil).Maybe()
	return ledger
}

func newFlow(t *testing.T, ledger *mocks.LedgerClient, isOpener bool) *Flow {
	flow, err := New(ledger, alice, []types.Address{bob, charlie}, 2, 1_000_000_000_000, Config{
		IsOpener:               isOpener,
		TimepointRetryInterval: time.Second,
		TimepointMaxRetries:    3,
		ExecutionPollInterval:  time.Second,
	})
	require.NoError(t, err)
	return flow
}

func recordSleeps(t *testing.T) *[]time.Duration {
	sleeps := []time.Duration{}
	utils.SetSleepFunc(func(d time.Duration) {
		sleeps = append(sleeps, d)
	})
	t.Cleanup(utils.ResetSleepFunc)
	return &sleeps
}

func TestOpenerSubmitsOpenOnce(t *testing.T) {
	ledger := newLedger(t)
	flow := newFlow(t, ledger, true)
	hash := multisig.Fingerprint(stakeEncoded)
	account := flow.Account()

	ledger.On("GetPendingOperation", mock.Anything, account, hash).Return(nil, nil).Once()
	ledger.On("SubmitAndWatch", mock.Anything, mock.MatchedBy(func(tc *types.ThresholdCall) bool {
		return tc.Kind == types.ThresholdCallOpen &&
			tc.Timepoint == nil &&
			tc.CallHash == hash &&
			tc.InnerCall == nil &&
			tc.Threshold == 2 &&
			assert.ObjectsAreEqual([]types.Address{bob, charlie}, tc.OtherSignatories)
	})).Return(&types.ExecutionReceipt{BlockHash: "0x01"}, nil).Once()

	outcome, err := flow.Execute(context.Background(), Operation{Call: stakeCall})
	require.NoError(t, err)
	assert.Equal(t, StageOpened, outcome.Stage)
	assert.Equal(t, RoleOpener, outcome.Role)
	assert.Equal(t, hash, outcome.CallHash)

	// The same call is now pending on the ledger.
	ledger.On("GetPendingOperation", mock.Anything, account, hash).
		Return(&types.PendingOperation{When: types.Timepoint{Height: 10, Index: 1}}, nil).Once()

	_, err = flow.Execute(context.Background(), Operation{Call: stakeCall})
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.OperationAlreadyOpen))
	ledger.AssertNumberOfCalls(t, "SubmitAndWatch", 1)
}

func TestOpenerPreconditionNotMet(t *testing.T) {
	ledger := newLedger(t)
	flow := newFlow(t, ledger, true)

	_, err := flow.Execute(context.Background(), Operation{
		Call: stakeCall,
		Precondition: func(ctx context.Context) error {
			return errors.New("pool below low water mark")
		},
	})
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.PreconditionNotMet))
	ledger.AssertNotCalled(t, "GetPendingOperation", mock.Anything, mock.Anything, mock.Anything)
	ledger.AssertNotCalled(t, "SubmitAndWatch", mock.Anything, mock.Anything)
}

func TestCloserNotYetOpen(t *testing.T) {
	ledger := newLedger(t)
	flow := newFlow(t, ledger, false)
	sleeps := recordSleeps(t)

	ledger.On("GetPendingOperation", mock.Anything, flow.Account(), mock.Anything).Return(nil, nil).Times(3)

	_, err := flow.Execute(context.Background(), Operation{Call: stakeCall})
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.OperationNotYetOpen))
	assert.Equal(t, []time.Duration{time.Second, time.Second}, *sleeps)
	ledger.AssertNotCalled(t, "SubmitAndWatch", mock.Anything, mock.Anything)
}

func TestCloserReadFailuresExhaustRetries(t *testing.T) {
	ledger := newLedger(t)
	flow := newFlow(t, ledger, false)
	recordSleeps(t)

	ledger.On("GetPendingOperation", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, types.Errorf(types.ConnectionError, "socket closed")).Times(3)

	_, err := flow.Execute(context.Background(), Operation{Call: stakeCall})
	require.Error(t, err)
	assert.Equal(t, types.OperationNotYetOpen, types.CodeOf(err))
}

func TestCloserClosesWithTimepoint(t *testing.T) {
	ledger := newLedger(t)
	flow := newFlow(t, ledger, false)
	recordSleeps(t)
	hash := multisig.Fingerprint(stakeEncoded)
	when := types.Timepoint{Height: 42, Index: 3}

	ledger.On("GetPendingOperation", mock.Anything, flow.Account(), hash).Return(nil, nil).Once()
	ledger.On("GetPendingOperation", mock.Anything, flow.Account(), hash).
		Return(&types.PendingOperation{When: when}, nil).Once()
	ledger.On("SubmitAndWatch", mock.Anything, mock.MatchedBy(func(tc *types.ThresholdCall) bool {
		return tc.Kind == types.ThresholdCallClose &&
			tc.Timepoint != nil && *tc.Timepoint == when &&
			string(tc.InnerCall) == string(stakeEncoded) &&
			tc.MaxWeight == 1_000_000_000_000
	})).Return(&types.ExecutionReceipt{BlockHash: "0x02", Finalized: true}, nil).Once()

	outcome, err := flow.Execute(context.Background(), Operation{Call: stakeCall})
	require.NoError(t, err)
	assert.Equal(t, StageClosed, outcome.Stage)
	assert.Equal(t, when, *outcome.Timepoint)
	assert.True(t, outcome.Receipt.Finalized)
}

func TestCloserAwaitsExecution(t *testing.T) {
	ledger := newLedger(t)
	flow := newFlow(t, ledger, false)
	sleeps := recordSleeps(t)
	when := types.Timepoint{Height: 7, Index: 0}

	ledger.On("GetPendingOperation", mock.Anything, mock.Anything, mock.Anything).
		Return(&types.PendingOperation{When: when}, nil).Twice()
	ledger.On("GetPendingOperation", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil).Once()
	ledger.On("SubmitAndWatch", mock.Anything, mock.Anything).Return(&types.ExecutionReceipt{}, nil).Once()

	outcome, err := flow.Execute(context.Background(), Operation{Call: stakeCall, AwaitExecution: true})
	require.NoError(t, err)
	assert.Equal(t, StageExecuted, outcome.Stage)
	assert.Len(t, *sleeps, 1)
}

func TestCloserStopsAwaitingAfterPollBudget(t *testing.T) {
	ledger := newLedger(t)
	flow := newFlow(t, ledger, false)
	flow.cfg.ExecutionMaxPolls = 3
	sleeps := recordSleeps(t)
	when := types.Timepoint{Height: 7, Index: 0}

	// the opener's approval keeps the record alive when the close did not execute
	ledger.On("GetPendingOperation", mock.Anything, mock.Anything, mock.Anything).
		Return(&types.PendingOperation{When: when}, nil).Times(4)
	ledger.On("SubmitAndWatch", mock.Anything, mock.Anything).Return(&types.ExecutionReceipt{}, nil).Once()

	_, err := flow.Execute(context.Background(), Operation{Call: stakeCall, AwaitExecution: true})
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.SubmissionError))
	assert.ErrorContains(t, err, "still pending after 3 polls")
	assert.Len(t, *sleeps, 2)
}

func TestCloserReportsFailedDispatch(t *testing.T) {
	ledger := newLedger(t)
	flow := newFlow(t, ledger, false)
	recordSleeps(t)

	ledger.On("GetPendingOperation", mock.Anything, mock.Anything, mock.Anything).
		Return(&types.PendingOperation{When: types.Timepoint{Height: 7}}, nil).Once()
	ledger.On("SubmitAndWatch", mock.Anything, mock.Anything).
		Return(nil, types.Errorf(types.SubmissionError, "extrinsic 2 in block 0x01 failed: WrongTimepoint")).Once()

	_, err := flow.Execute(context.Background(), Operation{Call: stakeCall, AwaitExecution: true})
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.SubmissionError))
	ledger.AssertNumberOfCalls(t, "GetPendingOperation", 1)
}

func TestSubmissionFailurePropagates(t *testing.T) {
	ledger := newLedger(t)
	flow := newFlow(t, ledger, true)

	ledger.On("GetPendingOperation", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil).Once()
	ledger.On("SubmitAndWatch", mock.Anything, mock.Anything).Return(nil, errors.New("invalid transaction")).Once()

	_, err := flow.Execute(context.Background(), Operation{Call: stakeCall})
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.SubmissionError))
}

func TestCallRoutedToWrongLedger(t *testing.T) {
	ledger := newLedger(t)
	flow := newFlow(t, ledger, true)

	_, err := flow.Execute(context.Background(), Operation{Call: types.BondExtraCall{Amount: types.NewBalance(1)}})
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.InternalServiceError))
}

func TestEncodingFailure(t *testing.T) {
	ledger := mocks.NewLedgerClient(t)
	ledger.On("Name").Return(types.Parachain).Maybe()
	ledger.On("Encode", mock.Anything).Return(nil, errors.New("unknown call")).Once()
	flow := newFlow(t, ledger, true)

	_, err := flow.Execute(context.Background(), Operation{Call: stakeCall})
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.EncodingError))
}
