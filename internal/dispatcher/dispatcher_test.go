package dispatcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/parallel-finance/staking-agent/internal/flows"
	"github.com/parallel-finance/staking-agent/internal/mocks"
	"github.com/parallel-finance/staking-agent/internal/monitor"
	"github.com/parallel-finance/staking-agent/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	agent = types.MustParseAddress("0xd43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d")
	pool  = types.MustParseAddress("0x8eaf04151687736326c9fea17e25fc5287613693c912909cb226aa4794f26a48")
	dave  = types.MustParseAddress("0x306721211d5404bd9da88e0204360a1a9ab8b87c66c1bc2fcdd37f3c2222cc20")
	eve   = types.MustParseAddress("0xe659a7a1628cdd93febc04a4e0646ea20e9f5f0ce097d9a05290d4a9e054df4e")
)

// fakeExecutor records every operation and fails those fail returns an error for.
type fakeExecutor struct {
	ledger types.Ledger
	fail   func(call types.Call) error

	mu    sync.Mutex
	calls []types.Call
}

func (f *fakeExecutor) Execute(ctx context.Context, op flows.Operation) (*flows.Outcome, error) {
	f.mu.Lock()
	f.calls = append(f.calls, op.Call)
	f.mu.Unlock()

	if op.Precondition != nil {
		if err := op.Precondition(ctx); err != nil {
			return nil, types.WrapError(types.PreconditionNotMet, err)
		}
	}
	if f.fail != nil {
		if err := f.fail(op.Call); err != nil {
			return nil, err
		}
	}
	return &flows.Outcome{Ledger: f.ledger, Action: op.Call.Action(), Role: flows.RoleOpener, Stage: flows.StageOpened}, nil
}

func (f *fakeExecutor) Role() flows.Role { return flows.RoleOpener }

func (f *fakeExecutor) Account() types.Address { return agent }

func (f *fakeExecutor) executed() []types.Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.Call(nil), f.calls...)
}

type fakeReporter struct {
	mu      sync.Mutex
	reports []flows.Report
	states  []types.DispatcherState
}

func (r *fakeReporter) RecordOutcome(ctx context.Context, report flows.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
	return nil
}

func (r *fakeReporter) PublishState(state types.DispatcherState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
}

type fixture struct {
	para, relay *fakeExecutor
	paraClient  *mocks.LedgerClient
	relayClient *mocks.LedgerClient
	reporter    *fakeReporter
	acc         *Accumulator
	d           *Dispatcher
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		para:        &fakeExecutor{ledger: types.Parachain},
		relay:       &fakeExecutor{ledger: types.Relaychain},
		paraClient:  mocks.NewLedgerClient(t),
		relayClient: mocks.NewLedgerClient(t),
		reporter:    &fakeReporter{},
		acc:         &Accumulator{},
	}
	f.d = New(Config{
		Pool:             pool,
		Low:              types.NewBalance(500),
		BondingDuration:  28,
		NumSlashingSpans: 1,
	}, Ledgers{
		Parachain:        f.para,
		Relaychain:       f.relay,
		ParachainClient:  f.paraClient,
		RelaychainClient: f.relayClient,
	}, f.reporter, f.acc)
	return f
}

func TestStakeBondsWhenNotBonded(t *testing.T) {
	f := newFixture(t)
	f.paraClient.On("GetBalance", mock.Anything, pool).Return(&types.AccountBalance{Free: types.NewBalance(5_000)}, nil)
	f.relayClient.On("IsBonded", mock.Anything, agent).Return(false, nil).Once()
	f.relayClient.On("IsBonded", mock.Anything, agent).Return(true, nil).Once()

	ctx := context.Background()
	f.d.Handle(ctx, types.StakeAmountEvent{Amount: types.NewBalance(1_000)})
	f.d.Handle(ctx, types.StakeAmountEvent{Amount: types.NewBalance(2_000)})

	assert.Equal(t, []types.Call{
		types.StakeCall{Agent: agent, Amount: types.NewBalance(1_000)},
		types.StakeCall{Agent: agent, Amount: types.NewBalance(2_000)},
	}, f.para.executed())
	assert.Equal(t, []types.Call{
		types.BondCall{Controller: agent, Amount: types.NewBalance(1_000), Payee: types.PayeeStaked},
		types.BondExtraCall{Amount: types.NewBalance(2_000)},
	}, f.relay.executed())
	assert.Len(t, f.reporter.reports, 4)
}

func TestFailedStakeSkipsBond(t *testing.T) {
	f := newFixture(t)
	f.paraClient.On("GetBalance", mock.Anything, pool).Return(&types.AccountBalance{Free: types.NewBalance(499)}, nil)

	f.d.Handle(context.Background(), types.StakeAmountEvent{Amount: types.NewBalance(1_000)})

	assert.Len(t, f.para.executed(), 1)
	assert.Empty(t, f.relay.executed())
	require.Len(t, f.reporter.reports, 1)
	assert.True(t, types.IsErrorCode(f.reporter.reports[0].Err, types.PreconditionNotMet))
}

func TestReplayRoutingForStake(t *testing.T) {
	f := newFixture(t)
	stake := types.StakeCall{Agent: agent, Amount: types.NewBalance(1_000)}
	f.paraClient.On("GetBalance", mock.Anything, pool).Return(&types.AccountBalance{Free: types.NewBalance(499)}, nil).Once()
	f.relayClient.On("IsBonded", mock.Anything, agent).Return(true, nil).Once()

	guard := f.d.Precondition(stake)
	require.NotNil(t, guard)
	assert.ErrorContains(t, guard(context.Background()), "below low water mark")
	assert.Nil(t, f.d.Precondition(types.WithdrawUnbondedCall{}))

	f.d.FollowUp(context.Background(), "ev-9", stake)
	f.d.FollowUp(context.Background(), "ev-10", types.RecordRewardsCall{Agent: agent, Amount: types.NewBalance(1)})

	assert.Equal(t, []types.Call{types.BondExtraCall{Amount: types.NewBalance(1_000)}}, f.relay.executed())
	require.Len(t, f.reporter.reports, 1)
	assert.Equal(t, "ev-9", f.reporter.reports[0].EventId)
	assert.Empty(t, f.d.State().PendingUnstakes)
}

func TestBondedReadFailureIsReported(t *testing.T) {
	f := newFixture(t)
	f.paraClient.On("GetBalance", mock.Anything, pool).Return(&types.AccountBalance{Free: types.NewBalance(5_000)}, nil)
	f.relayClient.On("IsBonded", mock.Anything, agent).Return(false, errors.New("ws closed"))

	f.d.Handle(context.Background(), types.StakeAmountEvent{Amount: types.NewBalance(1_000)})

	assert.Empty(t, f.relay.executed())
	require.Len(t, f.reporter.reports, 2)
	last := f.reporter.reports[1]
	assert.Equal(t, types.BondExtraCall{Amount: types.NewBalance(1_000)}, last.Call)
	assert.True(t, types.IsErrorCode(last.Err, types.ConnectionError))
	assert.Equal(t, f.reporter.reports[0].EventId, last.EventId)
}

func TestUnbondedMatchesFirstEqualAmount(t *testing.T) {
	f := newFixture(t)
	f.relayClient.On("GetEraIndex", mock.Anything).Return(uint32(10), nil)
	ctx := context.Background()

	f.d.Handle(ctx, types.UnstakeRequestedEvent{Owner: dave, Amount: types.NewBalance(100)})
	f.d.Handle(ctx, types.UnstakeRequestedEvent{Owner: eve, Amount: types.NewBalance(300)})
	f.d.Handle(ctx, types.UnstakeRequestedEvent{Owner: dave, Amount: types.NewBalance(300)})
	f.d.Handle(ctx, types.UnbondedEvent{Agent: agent, Amount: types.NewBalance(300)})

	state := f.d.State()
	assert.Equal(t, []types.PendingUnstake{
		{Owner: dave, Amount: types.NewBalance(100)},
		{Owner: dave, Amount: types.NewBalance(300)},
	}, state.PendingUnstakes)
	assert.Equal(t, []types.PendingUnbonded{{Owner: eve, Amount: types.NewBalance(300)}}, state.PendingUnbonded)
	assert.Equal(t, []types.EraLockRecord{{Controller: agent, Era: 10, Amount: types.NewBalance(300)}}, state.EraLocks)
	assert.Equal(t, uint64(4), state.ProcessedEvents)
	assert.Equal(t, types.EventUnbonded, state.LastEvent)

	assert.Equal(t, []types.Call{
		types.ProcessPendingUnstakeCall{Agent: agent, Owner: eve, Era: 10, Amount: types.NewBalance(300)},
	}, f.para.executed())
}

func TestUnbondedWithoutMatchIsDropped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.d.Handle(ctx, types.UnstakeRequestedEvent{Owner: dave, Amount: types.NewBalance(100)})
	f.d.Handle(ctx, types.UnbondedEvent{Agent: agent, Amount: types.NewBalance(300)})

	state := f.d.State()
	assert.Len(t, state.PendingUnstakes, 1)
	assert.Empty(t, state.EraLocks)
	assert.Empty(t, f.para.executed())
}

func TestUnbondedEraReadFailureDropsMatch(t *testing.T) {
	f := newFixture(t)
	f.relayClient.On("GetEraIndex", mock.Anything).Return(uint32(0), errors.New("timeout"))
	ctx := context.Background()

	f.d.Handle(ctx, types.UnstakeRequestedEvent{Owner: dave, Amount: types.NewBalance(100)})
	f.d.Handle(ctx, types.UnbondedEvent{Agent: agent, Amount: types.NewBalance(100)})

	state := f.d.State()
	assert.Empty(t, state.PendingUnstakes)
	assert.Empty(t, state.PendingUnbonded)
	assert.Empty(t, state.EraLocks)
	assert.Empty(t, f.para.executed())
}

func seedLocks(t *testing.T, f *fixture, eras ...uint32) {
	ctx := context.Background()
	for i, era := range eras {
		f.relayClient.On("GetEraIndex", mock.Anything).Return(era, nil).Once()
		amount := types.NewBalance(uint64(100 * (i + 1)))
		f.d.Handle(ctx, types.UnstakeRequestedEvent{Owner: dave, Amount: amount})
		f.d.Handle(ctx, types.UnbondedEvent{Agent: agent, Amount: amount})
	}
	require.Len(t, f.d.State().EraLocks, len(eras))
}

func TestEraRolloverWithdrawsMaturedLocksOnce(t *testing.T) {
	f := newFixture(t)
	seedLocks(t, f, 10, 10, 12)
	ctx := context.Background()

	f.d.Handle(ctx, types.EraRolloverEvent{Era: 37})
	assert.Empty(t, f.relay.executed())
	assert.Len(t, f.d.State().EraLocks, 3)

	f.d.Handle(ctx, types.EraRolloverEvent{Era: 38})
	assert.Equal(t, []types.Call{types.WithdrawUnbondedCall{NumSlashingSpans: 1}}, f.relay.executed())
	assert.Equal(t, []types.EraLockRecord{{Controller: agent, Era: 12, Amount: types.NewBalance(300)}}, f.d.State().EraLocks)
	assert.Equal(t, "300", f.acc.Get().String())

	f.d.Handle(ctx, types.EraRolloverEvent{Era: 39})
	assert.Len(t, f.relay.executed(), 1)
}

func TestFailedWithdrawStillClearsMaturedLocks(t *testing.T) {
	f := newFixture(t)
	seedLocks(t, f, 10)
	f.relay.fail = func(types.Call) error { return types.Errorf(types.SubmissionError, "rejected") }

	f.d.Handle(context.Background(), types.EraRolloverEvent{Era: 40})

	assert.Len(t, f.relay.executed(), 1)
	assert.Empty(t, f.d.State().EraLocks)
	assert.True(t, f.acc.Get().IsZero())
	assert.Len(t, f.d.State().PendingUnbonded, 1)
}

func TestAlreadyOpenWithdrawCoversMaturedLocks(t *testing.T) {
	f := newFixture(t)
	seedLocks(t, f, 10, 12)
	ctx := context.Background()

	f.d.Handle(ctx, types.EraRolloverEvent{Era: 38})
	assert.Equal(t, "100", f.acc.Get().String())

	f.relay.fail = func(types.Call) error {
		return types.Errorf(types.OperationAlreadyOpen, "withdraw unbonded already open")
	}
	f.d.Handle(ctx, types.EraRolloverEvent{Era: 40})

	assert.Len(t, f.relay.executed(), 2)
	assert.Empty(t, f.d.State().EraLocks)
	assert.Equal(t, "300", f.acc.Get().String())
}

func TestWithdrawnFinishesOldestFirst(t *testing.T) {
	f := newFixture(t)
	seedLocks(t, f, 10, 10, 10)
	f.acc.Add(types.NewBalance(600))
	ctx := context.Background()

	// 100 and 200 fit, 300 does not.
	f.d.Handle(ctx, types.WithdrawnEvent{Agent: agent, Amount: types.NewBalance(450)})

	finished := f.para.executed()[3:]
	assert.Equal(t, []types.Call{
		types.FinishProcessedUnstakeCall{Agent: agent, Owner: dave, Amount: types.NewBalance(100)},
		types.FinishProcessedUnstakeCall{Agent: agent, Owner: dave, Amount: types.NewBalance(200)},
	}, finished)
	assert.Equal(t, []types.PendingUnbonded{{Owner: dave, Amount: types.NewBalance(300)}}, f.d.State().PendingUnbonded)
	assert.Equal(t, "300", f.acc.Get().String())
}

func TestWithdrawnStopsAtFailedFinish(t *testing.T) {
	f := newFixture(t)
	seedLocks(t, f, 10, 10)
	f.acc.Add(types.NewBalance(300))
	f.para.fail = func(call types.Call) error {
		if call.Action() == types.ActionFinishProcessedUnstake {
			return types.Errorf(types.SubmissionError, "rejected")
		}
		return nil
	}

	f.d.Handle(context.Background(), types.WithdrawnEvent{Agent: agent, Amount: types.NewBalance(1_000)})

	assert.Len(t, f.para.executed(), 3)
	assert.Len(t, f.d.State().PendingUnbonded, 2)
	assert.Equal(t, "300", f.acc.Get().String())
}

func TestRewardAndSlashAreRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.d.Handle(ctx, types.RewardEvent{Agent: agent, Amount: types.NewBalance(7)})
	f.d.Handle(ctx, types.SlashEvent{Agent: agent, Amount: types.NewBalance(3)})

	assert.Equal(t, []types.Call{
		types.RecordRewardsCall{Agent: agent, Amount: types.NewBalance(7)},
		types.RecordSlashCall{Agent: agent, Amount: types.NewBalance(3)},
	}, f.para.executed())
	assert.Empty(t, f.relay.executed())
	assert.Len(t, f.reporter.states, 2)
}

func TestRunAcksEachEventAndStops(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan monitor.Envelope)
	done := make(chan error, 1)
	go func() { done <- f.d.Run(ctx, in) }()

	for i := 0; i < 2; i++ {
		require.NoError(t, monitor.Emit(ctx, in, types.RewardEvent{Agent: agent, Amount: types.NewBalance(1)}))
	}
	assert.Equal(t, uint64(2), f.d.State().ProcessedEvents)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher did not stop")
	}
}

func TestRunReturnsWhenInputCloses(t *testing.T) {
	f := newFixture(t)
	in := make(chan monitor.Envelope)
	close(in)
	assert.NoError(t, f.d.Run(context.Background(), in))
}
