package monitor

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parallel-finance/staking-agent/internal/clients/substrate"
	"github.com/parallel-finance/staking-agent/internal/observability/metrics"
	"github.com/parallel-finance/staking-agent/internal/types"
	"github.com/parallel-finance/staking-agent/internal/utils"
)

// Earmarked reports funds in the pool that are reserved for unstakers.
type Earmarked interface {
	Get() types.Balance
}

type BalanceConfig struct {
	Pool         types.Address
	Low          types.Balance
	High         types.Balance
	PollInterval time.Duration
	Cooldown     time.Duration
}

// BalanceMonitor polls the pool balance and requests a stake when the part
// of it not earmarked for unstakers reaches the low water mark.
type BalanceMonitor struct {
	ledger    substrate.LedgerClient
	earmarked Earmarked
	cfg       BalanceConfig
}

func NewBalanceMonitor(ledger substrate.LedgerClient, earmarked Earmarked, cfg BalanceConfig) *BalanceMonitor {
	return &BalanceMonitor{ledger: ledger, earmarked: earmarked, cfg: cfg}
}

func (m *BalanceMonitor) Name() string {
	return "balance"
}

func (m *BalanceMonitor) Run(ctx context.Context, out chan<- Envelope) error {
	logger := log.Ctx(ctx).With().Str("monitor", m.Name()).Str("pool", m.cfg.Pool.Hex()).Logger()
	logger.Info().Msg("balance monitor started")

	for {
		amount, err := m.check(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn().Err(err).Msg("failed to read pool balance")
		} else if !amount.IsZero() {
			logger.Info().Str("amount", amount.String()).Msg("stake threshold reached")
			if err := Emit(ctx, out, types.StakeAmountEvent{Amount: amount}); err != nil {
				return err
			}
			if err := utils.Sleep(ctx, m.cfg.Cooldown); err != nil {
				return err
			}
		}

		if err := utils.Sleep(ctx, m.cfg.PollInterval); err != nil {
			return err
		}
	}
}

// check returns the amount to stake, zero when nothing should be staked.
func (m *BalanceMonitor) check(ctx context.Context) (types.Balance, error) {
	balance, err := m.ledger.GetBalance(ctx, m.cfg.Pool)
	if err != nil {
		return types.Balance{}, err
	}
	return StakeAmount(balance.Spendable(), m.earmarked.Get(), m.cfg.Low, m.cfg.High), nil
}

// StakeAmount is min(spendable - earmarked, high) once spendable covers
// low + earmarked, zero otherwise.
func StakeAmount(spendable, earmarked, low, high types.Balance) types.Balance {
	if spendable.Lt(low.Add(earmarked)) {
		return types.Balance{}
	}
	return spendable.Sub(earmarked).Min(high)
}

// recordDrop is shared by the monitors for events that never reach the dispatcher.
func recordDrop(monitor, reason string) {
	metrics.RecordEventDropped(monitor, reason)
}
