package dispatcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/parallel-finance/staking-agent/internal/clients/substrate"
	"github.com/parallel-finance/staking-agent/internal/flows"
	"github.com/parallel-finance/staking-agent/internal/monitor"
	"github.com/parallel-finance/staking-agent/internal/observability/metrics"
	"github.com/parallel-finance/staking-agent/internal/observability/tracing"
	"github.com/parallel-finance/staking-agent/internal/types"
	"github.com/parallel-finance/staking-agent/internal/utils"
)

// Executor runs threshold operations on one ledger. *flows.Flow implements it.
type Executor interface {
	Execute(ctx context.Context, op flows.Operation) (*flows.Outcome, error)
	Role() flows.Role
	Account() types.Address
}

type Reporter interface {
	RecordOutcome(ctx context.Context, report flows.Report) error
	PublishState(state types.DispatcherState)
}

type Ledgers struct {
	Parachain        Executor
	Relaychain       Executor
	ParachainClient  substrate.LedgerClient
	RelaychainClient substrate.LedgerClient
}

type Config struct {
	// Pool is the parachain account stakes are taken from.
	Pool             types.Address
	Low              types.Balance
	BondingDuration  uint32
	NumSlashingSpans uint32
	AwaitExecution   bool
}

// Dispatcher is the single consumer of monitor events. It owns the
// correlation lists; nothing else mutates them.
type Dispatcher struct {
	ledgers     Ledgers
	reporter    Reporter
	accumulator *Accumulator
	cfg         Config
	// agent is the threshold account, the same on both ledgers.
	agent types.Address

	mu              sync.Mutex
	pendingUnstakes []types.PendingUnstake
	pendingUnbonded []types.PendingUnbonded
	eraLocks        []types.EraLockRecord
	lastEvent       types.EventKind
	processed       uint64
}

func New(cfg Config, ledgers Ledgers, reporter Reporter, accumulator *Accumulator) *Dispatcher {
	return &Dispatcher{
		ledgers:     ledgers,
		reporter:    reporter,
		accumulator: accumulator,
		cfg:         cfg,
		agent:       ledgers.Relaychain.Account(),
	}
}

// Run handles events one at a time until ctx ends or in is closed. Each event
// is acknowledged after its synchronous work finished, failed or not.
func (d *Dispatcher) Run(ctx context.Context, in <-chan monitor.Envelope) error {
	log.Ctx(ctx).Info().Str("agent", d.agent.Hex()).Msg("dispatcher started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env, ok := <-in:
			if !ok {
				return nil
			}
			d.Handle(ctx, env.Event)
			env.Ack()
		}
	}
}

// Handle routes one event. Failures are logged and reported, never returned.
func (d *Dispatcher) Handle(ctx context.Context, ev types.Event) {
	eventId := uuid.NewString()
	ctx = tracing.AttachTracingIntoContext(ctx)
	ctx = log.Ctx(ctx).With().
		Str("eventId", eventId).
		Str("event", ev.Kind().String()).
		Logger().WithContext(ctx)
	metrics.RecordEventReceived(ev.Kind().String())
	log.Ctx(ctx).Debug().Interface("payload", ev).Msg("handling event")

	h := &handling{Dispatcher: d, eventId: eventId}
	switch e := ev.(type) {
	case types.StakeAmountEvent:
		h.stake(ctx, e)
	case types.UnstakeRequestedEvent:
		h.unstakeRequested(ctx, e)
	case types.UnbondedEvent:
		h.unbonded(ctx, e)
	case types.EraRolloverEvent:
		h.eraRollover(ctx, e)
	case types.WithdrawnEvent:
		h.withdrawn(ctx, e)
	case types.RewardEvent:
		h.execute(ctx, d.ledgers.Parachain, types.RecordRewardsCall{Agent: d.agent, Amount: e.Amount}, nil)
	case types.SlashEvent:
		h.execute(ctx, d.ledgers.Parachain, types.RecordSlashCall{Agent: d.agent, Amount: e.Amount}, nil)
	default:
		log.Ctx(ctx).Warn().Msg("no route for event")
	}

	d.mu.Lock()
	d.lastEvent = ev.Kind()
	d.processed++
	d.mu.Unlock()
	d.publish()
}

// State returns a copy of the correlation state.
func (d *Dispatcher) State() types.DispatcherState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return types.DispatcherState{
		PendingUnstakes:  append([]types.PendingUnstake{}, d.pendingUnstakes...),
		PendingUnbonded:  append([]types.PendingUnbonded{}, d.pendingUnbonded...),
		EraLocks:         append([]types.EraLockRecord{}, d.eraLocks...),
		WithdrawUnbonded: d.accumulator.Get(),
		LastEvent:        d.lastEvent,
		ProcessedEvents:  d.processed,
	}
}

func (d *Dispatcher) publish() {
	state := d.State()
	metrics.SetCorrelationRecords("pending_unstakes", len(state.PendingUnstakes))
	metrics.SetCorrelationRecords("pending_unbonded", len(state.PendingUnbonded))
	metrics.SetCorrelationRecords("era_locks", len(state.EraLocks))
	metrics.SetWithdrawUnbonded(state.WithdrawUnbonded.Float64())
	if d.reporter != nil {
		d.reporter.PublishState(state)
	}
}

// handling carries the per event context.
type handling struct {
	*Dispatcher
	eventId string
}

// execute runs call through ex and reports the result.
func (h *handling) execute(
	ctx context.Context, ex Executor, call types.Call, precondition func(context.Context) error,
) (*flows.Outcome, error) {
	outcome, err := ex.Execute(ctx, flows.Operation{
		Call:           call,
		Precondition:   precondition,
		AwaitExecution: h.cfg.AwaitExecution,
	})
	h.report(ctx, ex.Role(), call, outcome, err)
	return outcome, err
}

func (h *handling) report(ctx context.Context, role flows.Role, call types.Call, outcome *flows.Outcome, err error) {
	if h.reporter == nil {
		return
	}
	report := flows.Report{EventId: h.eventId, Call: call, Role: role, Outcome: outcome, Err: err}
	if rerr := h.reporter.RecordOutcome(ctx, report); rerr != nil {
		log.Ctx(ctx).Warn().Err(rerr).Msg("failed to record operation outcome")
	}
}

// stake moves the amount out of the pool on the parachain, then bonds it on
// the relay chain.
func (h *handling) stake(ctx context.Context, e types.StakeAmountEvent) {
	stake := types.StakeCall{Agent: h.agent, Amount: e.Amount}
	if _, err := h.execute(ctx, h.ledgers.Parachain, stake, h.poolCoversLowWaterMark); err != nil {
		return
	}
	h.bond(ctx, e.Amount)
}

// bond bonds amount on the relay chain, or adds it to the existing bond.
func (h *handling) bond(ctx context.Context, amount types.Balance) {
	bonded, err := h.ledgers.RelaychainClient.IsBonded(ctx, h.agent)
	if err != nil {
		err = types.WrapError(types.ConnectionError, fmt.Errorf("failed to read bonded state: %w", err))
		log.Ctx(ctx).Error().Err(err).Msg("cannot choose between bond and bond extra")
		h.report(ctx, h.ledgers.Relaychain.Role(), types.BondExtraCall{Amount: amount}, nil, err)
		return
	}

	var bond types.Call = types.BondExtraCall{Amount: amount}
	if !bonded {
		bond = types.BondCall{Controller: h.agent, Amount: amount, Payee: types.PayeeStaked}
	}
	h.execute(ctx, h.ledgers.Relaychain, bond, nil)
}

func (d *Dispatcher) poolCoversLowWaterMark(ctx context.Context) error {
	balance, err := d.ledgers.ParachainClient.GetBalance(ctx, d.cfg.Pool)
	if err != nil {
		return types.WrapError(types.ConnectionError, err)
	}
	if spendable := balance.Spendable(); spendable.Lt(d.cfg.Low) {
		return fmt.Errorf("pool spendable %s below low water mark %s", spendable, d.cfg.Low)
	}
	return nil
}

// Precondition returns the opener check the routing table attaches to call.
func (d *Dispatcher) Precondition(call types.Call) func(context.Context) error {
	if _, ok := call.(types.StakeCall); ok {
		return d.poolCoversLowWaterMark
	}
	return nil
}

// FollowUp runs the operations the routing table chains after call once it
// succeeded outside of event handling, as on replay. Correlation lists are
// left alone.
func (d *Dispatcher) FollowUp(ctx context.Context, eventId string, call types.Call) {
	h := &handling{Dispatcher: d, eventId: eventId}
	if stake, ok := call.(types.StakeCall); ok {
		h.bond(ctx, stake.Amount)
	}
}

func (h *handling) unstakeRequested(ctx context.Context, e types.UnstakeRequestedEvent) {
	h.mu.Lock()
	h.pendingUnstakes = append(h.pendingUnstakes, types.PendingUnstake{Owner: e.Owner, Amount: e.Amount})
	h.mu.Unlock()
	log.Ctx(ctx).Info().Str("owner", e.Owner.Hex()).Str("amount", e.Amount.String()).Msg("unstake pending")
}

// unbonded pairs a relay unbonding with the first pending unstake of the same
// amount and tells the parachain about it.
func (h *handling) unbonded(ctx context.Context, e types.UnbondedEvent) {
	h.mu.Lock()
	idx := utils.IndexFunc(h.pendingUnstakes, func(p types.PendingUnstake) bool {
		return p.Amount.Cmp(e.Amount) == 0
	})
	if idx < 0 {
		h.mu.Unlock()
		log.Ctx(ctx).Warn().Str("amount", e.Amount.String()).Msg("no pending unstake matches unbonded amount")
		return
	}
	matched := h.pendingUnstakes[idx]
	h.pendingUnstakes = utils.RemoveAt(h.pendingUnstakes, idx)
	h.mu.Unlock()

	era, err := h.ledgers.RelaychainClient.GetEraIndex(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("owner", matched.Owner.Hex()).
			Str("amount", matched.Amount.String()).
			Msg("failed to read era, dropping matched unstake")
		return
	}

	h.mu.Lock()
	h.eraLocks = append(h.eraLocks, types.EraLockRecord{Controller: e.Agent, Era: era, Amount: e.Amount})
	h.pendingUnbonded = append(h.pendingUnbonded, types.PendingUnbonded{Owner: matched.Owner, Amount: matched.Amount})
	h.mu.Unlock()

	h.execute(ctx, h.ledgers.Parachain, types.ProcessPendingUnstakeCall{
		Agent:  h.agent,
		Owner:  matched.Owner,
		Era:    era,
		Amount: matched.Amount,
	}, nil)
}

// eraRollover withdraws every matured era lock with a single call. Matured
// records are removed whether or not the withdrawal succeeded. A withdrawal
// that is already open counts as covering them.
func (h *handling) eraRollover(ctx context.Context, e types.EraRolloverEvent) {
	h.mu.Lock()
	var (
		matured []types.EraLockRecord
		kept    []types.EraLockRecord
		sum     types.Balance
	)
	for _, rec := range h.eraLocks {
		if rec.Matured(e.Era, h.cfg.BondingDuration) {
			matured = append(matured, rec)
			sum = sum.Add(rec.Amount)
		} else {
			kept = append(kept, rec)
		}
	}
	h.eraLocks = kept
	h.mu.Unlock()

	if len(matured) == 0 {
		return
	}
	log.Ctx(ctx).Info().Uint32("era", e.Era).Int("records", len(matured)).Str("amount", sum.String()).
		Msg("era locks matured")

	_, err := h.execute(ctx, h.ledgers.Relaychain, types.WithdrawUnbondedCall{NumSlashingSpans: h.cfg.NumSlashingSpans}, nil)
	switch {
	case types.IsErrorCode(err, types.OperationAlreadyOpen):
		// the withdrawal already open releases every matured lock once it executes
		log.Ctx(ctx).Info().Str("amount", sum.String()).Msg("matured locks covered by open withdrawal")
	case err != nil:
		return
	}
	h.accumulator.Add(sum)
}

// withdrawn returns withdrawn funds to unstakers oldest first, stopping at the
// first one the remaining amount cannot cover or whose operation fails.
func (h *handling) withdrawn(ctx context.Context, e types.WithdrawnEvent) {
	remaining := e.Amount
	for {
		h.mu.Lock()
		if len(h.pendingUnbonded) == 0 {
			h.mu.Unlock()
			return
		}
		rec := h.pendingUnbonded[0]
		h.mu.Unlock()

		if remaining.Lt(rec.Amount) {
			log.Ctx(ctx).Info().Str("remaining", remaining.String()).Str("next", rec.Amount.String()).
				Msg("withdrawn amount exhausted")
			return
		}

		_, err := h.execute(ctx, h.ledgers.Parachain, types.FinishProcessedUnstakeCall{
			Agent:  h.agent,
			Owner:  rec.Owner,
			Amount: rec.Amount,
		}, nil)
		if err != nil {
			return
		}

		remaining = remaining.Sub(rec.Amount)
		h.mu.Lock()
		h.pendingUnbonded = utils.RemoveAt(h.pendingUnbonded, 0)
		h.mu.Unlock()
		h.accumulator.Sub(rec.Amount)
	}
}
