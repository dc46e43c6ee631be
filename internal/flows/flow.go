package flows

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parallel-finance/staking-agent/internal/clients/substrate"
	"github.com/parallel-finance/staking-agent/internal/multisig"
	"github.com/parallel-finance/staking-agent/internal/observability/metrics"
	"github.com/parallel-finance/staking-agent/internal/observability/tracing"
	"github.com/parallel-finance/staking-agent/internal/types"
	"github.com/parallel-finance/staking-agent/internal/utils"
)

type Role string

const (
	RoleOpener Role = "opener"
	RoleCloser Role = "closer"
)

func (r Role) String() string {
	return string(r)
}

type Stage string

const (
	StageOpened   Stage = "opened"
	StageClosed   Stage = "closed"
	StageExecuted Stage = "executed"
	StageFailed   Stage = "failed"
)

type Config struct {
	IsOpener               bool
	TimepointRetryInterval time.Duration
	TimepointMaxRetries    int
	ExecutionPollInterval  time.Duration
	// ExecutionMaxPolls bounds the execution wait. Zero waits until ctx ends.
	ExecutionMaxPolls int
}

// Operation is one threshold operation request.
type Operation struct {
	Call types.Call
	// Precondition is only evaluated by the opener, before anything is submitted.
	Precondition func(ctx context.Context) error
	// AwaitExecution makes the closer wait until the pending record is gone.
	AwaitExecution bool
}

// Outcome describes how far a flow got on this member.
type Outcome struct {
	Ledger    types.Ledger            `json:"ledger"`
	Action    types.Action            `json:"action"`
	Role      Role                    `json:"role"`
	Stage     Stage                   `json:"stage"`
	CallHash  types.Fingerprint       `json:"-"`
	Timepoint *types.Timepoint        `json:"timepoint,omitempty"`
	Receipt   *types.ExecutionReceipt `json:"receipt,omitempty"`
}

// Flow drives threshold operations for one ledger. The same instance is used
// for every action on that ledger, sequentially, by the dispatcher.
type Flow struct {
	ledger  substrate.LedgerClient
	builder *multisig.Builder
	cfg     Config
}

func New(
	ledger substrate.LedgerClient, self types.Address, others []types.Address,
	threshold uint16, maxWeight uint64, cfg Config,
) (*Flow, error) {
	builder, err := multisig.NewBuilder(ledger, self, others, threshold, maxWeight)
	if err != nil {
		return nil, err
	}
	return &Flow{ledger: ledger, builder: builder, cfg: cfg}, nil
}

// Account is the threshold account operations run under.
func (f *Flow) Account() types.Address {
	return f.builder.Account()
}

func (f *Flow) Ledger() types.Ledger {
	return f.ledger.Name()
}

func (f *Flow) Role() Role {
	if f.cfg.IsOpener {
		return RoleOpener
	}
	return RoleCloser
}

// Execute runs the opener or closer half of op, depending on the configured role.
func (f *Flow) Execute(ctx context.Context, op Operation) (*Outcome, error) {
	if op.Call == nil {
		return nil, types.Errorf(types.InternalServiceError, "operation without call")
	}
	if op.Call.Ledger() != f.ledger.Name() {
		return nil, types.Errorf(
			types.InternalServiceError, "%s call routed to %s", op.Call.Ledger(), f.ledger.Name(),
		)
	}

	ctx = log.Ctx(ctx).With().
		Str("ledger", f.ledger.Name().String()).
		Str("action", op.Call.Action().String()).
		Str("role", f.Role().String()).
		Object("call", op.Call).
		Logger().WithContext(ctx)

	done := metrics.StartFlowDurationTimer(op.Call.Action().String(), f.Role().String())
	outcome, err := tracing.WrapWithSpan(ctx, "flow:"+op.Call.Action().String(), func() (*Outcome, error) {
		if f.cfg.IsOpener {
			return f.open(ctx, op)
		}
		return f.close(ctx, op)
	})
	if err != nil {
		done(metrics.Error)
		log.Ctx(ctx).Error().Err(err).Msg("threshold operation failed")
		return nil, err
	}
	done(metrics.Success)
	log.Ctx(ctx).Info().Str("stage", string(outcome.Stage)).Msg("threshold operation done")
	return outcome, nil
}

func (f *Flow) open(ctx context.Context, op Operation) (*Outcome, error) {
	if op.Precondition != nil {
		if err := op.Precondition(ctx); err != nil {
			return nil, types.WrapError(types.PreconditionNotMet, err)
		}
	}

	hash, _, err := f.builder.Fingerprint(op.Call)
	if err != nil {
		return nil, err
	}

	pending, err := f.ledger.GetPendingOperation(ctx, f.builder.Account(), hash)
	if err != nil {
		return nil, types.WrapError(types.ConnectionError, err)
	}
	if pending != nil {
		return nil, types.Errorf(
			types.OperationAlreadyOpen, "operation %s already open at %s", hash, pending.When,
		)
	}

	call, err := f.builder.Open(op.Call)
	if err != nil {
		return nil, err
	}
	receipt, err := f.ledger.SubmitAndWatch(ctx, call)
	if err != nil {
		return nil, types.WrapError(types.SubmissionError, err)
	}

	return &Outcome{
		Ledger:   f.ledger.Name(),
		Action:   op.Call.Action(),
		Role:     RoleOpener,
		Stage:    StageOpened,
		CallHash: hash,
		Receipt:  receipt,
	}, nil
}

func (f *Flow) close(ctx context.Context, op Operation) (*Outcome, error) {
	hash, _, err := f.builder.Fingerprint(op.Call)
	if err != nil {
		return nil, err
	}

	when, err := f.awaitTimepoint(ctx, hash)
	if err != nil {
		return nil, err
	}

	call, err := f.builder.Close(op.Call, *when)
	if err != nil {
		return nil, err
	}
	receipt, err := f.ledger.SubmitAndWatch(ctx, call)
	if err != nil {
		return nil, types.WrapError(types.SubmissionError, err)
	}

	outcome := &Outcome{
		Ledger:    f.ledger.Name(),
		Action:    op.Call.Action(),
		Role:      RoleCloser,
		Stage:     StageClosed,
		CallHash:  hash,
		Timepoint: when,
		Receipt:   receipt,
	}
	if !op.AwaitExecution {
		return outcome, nil
	}

	if err := f.awaitExecution(ctx, hash); err != nil {
		return nil, err
	}
	outcome.Stage = StageExecuted
	return outcome, nil
}

// awaitTimepoint polls for the opening timepoint with a fixed interval. Read
// failures count as a failed attempt.
func (f *Flow) awaitTimepoint(ctx context.Context, hash types.Fingerprint) (*types.Timepoint, error) {
	var lastErr error
	for attempt := 1; attempt <= f.cfg.TimepointMaxRetries; attempt++ {
		pending, err := f.ledger.GetPendingOperation(ctx, f.builder.Account(), hash)
		switch {
		case err != nil:
			lastErr = err
			log.Ctx(ctx).Warn().Err(err).Int("attempt", attempt).Msg("failed to read pending operation")
		case pending != nil:
			log.Ctx(ctx).Debug().Str("timepoint", pending.When.String()).Msg("found opening timepoint")
			when := pending.When
			return &when, nil
		}

		if attempt == f.cfg.TimepointMaxRetries {
			break
		}
		if err := utils.Sleep(ctx, f.cfg.TimepointRetryInterval); err != nil {
			return nil, types.WrapError(types.OperationNotYetOpen, err)
		}
	}

	if lastErr != nil {
		return nil, types.NewError(types.UninitializedStatusCode, types.OperationNotYetOpen, fmt.Errorf(
			"operation %s not open after %d attempts: %w", hash, f.cfg.TimepointMaxRetries, lastErr,
		))
	}
	return nil, types.Errorf(
		types.OperationNotYetOpen, "operation %s not open after %d attempts", hash, f.cfg.TimepointMaxRetries,
	)
}

// awaitExecution polls until the pending record for hash disappears, the
// poll budget is spent or ctx ends.
func (f *Flow) awaitExecution(ctx context.Context, hash types.Fingerprint) error {
	for poll := 1; ; poll++ {
		pending, err := f.ledger.GetPendingOperation(ctx, f.builder.Account(), hash)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("failed to read pending operation while awaiting execution")
		} else if pending == nil {
			return nil
		}
		if f.cfg.ExecutionMaxPolls > 0 && poll >= f.cfg.ExecutionMaxPolls {
			return types.Errorf(types.SubmissionError, "operation %s still pending after %d polls", hash, poll)
		}
		if err := utils.Sleep(ctx, f.cfg.ExecutionPollInterval); err != nil {
			return types.WrapError(types.SubmissionError, fmt.Errorf("stopped awaiting execution of %s: %w", hash, err))
		}
	}
}

// Report ties a flow result to the event that caused it.
type Report struct {
	EventId  string
	Call     types.Call
	Role     Role
	Outcome  *Outcome
	Err      error
	Replayed bool
}
