package agent

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/parallel-finance/staking-agent/internal/clients"
	"github.com/parallel-finance/staking-agent/internal/config"
	"github.com/parallel-finance/staking-agent/internal/dispatcher"
	"github.com/parallel-finance/staking-agent/internal/flows"
	"github.com/parallel-finance/staking-agent/internal/monitor"
	"github.com/parallel-finance/staking-agent/internal/services"
	"github.com/parallel-finance/staking-agent/internal/types"
)

var _ services.ReplayRouter = (*dispatcher.Dispatcher)(nil)

// Agent is one member of the threshold group: the monitors of both ledgers
// feeding a single dispatcher.
type Agent struct {
	cfg        *config.Config
	account    types.Address
	parachain  *flows.Flow
	relaychain *flows.Flow
	dispatcher *dispatcher.Dispatcher
	monitors   []monitor.Monitor
}

// New builds the flows, the dispatcher and the monitors. It fails when the
// derived threshold account differs from the configured one.
func New(cfg *config.Config, c *clients.Clients, reporter dispatcher.Reporter) (*Agent, error) {
	flowCfg := flows.Config{
		IsOpener:               cfg.Signer.IsOpener,
		TimepointRetryInterval: cfg.Agent.TimepointRetryInterval,
		TimepointMaxRetries:    cfg.Agent.TimepointMaxRetries,
		ExecutionPollInterval:  cfg.Agent.ExecutionPollInterval,
		ExecutionMaxPolls:      cfg.Agent.ExecutionMaxPolls,
	}
	others := cfg.Signer.Others()

	parachain, err := flows.New(c.Parachain, c.Signer, others, cfg.Signer.Threshold, cfg.Parachain.MaxWeight, flowCfg)
	if err != nil {
		return nil, fmt.Errorf("parachain flow: %w", err)
	}
	relaychain, err := flows.New(c.Relaychain, c.Signer, others, cfg.Signer.Threshold, cfg.Relaychain.MaxWeight, flowCfg)
	if err != nil {
		return nil, fmt.Errorf("relaychain flow: %w", err)
	}

	account := relaychain.Account()
	if expected := cfg.Signer.ExpectedMultisig(); expected != nil && *expected != account {
		return nil, fmt.Errorf(
			"derived threshold account %s does not match configured %s", account.Hex(), expected.Hex(),
		)
	}

	pool := account
	if p := cfg.Parachain.Pool(); p != nil {
		pool = *p
	}

	accumulator := &dispatcher.Accumulator{}
	d := dispatcher.New(dispatcher.Config{
		Pool:             pool,
		Low:              cfg.Agent.Low(),
		BondingDuration:  cfg.Agent.BondingDuration,
		NumSlashingSpans: cfg.Agent.NumSlashingSpans,
		AwaitExecution:   cfg.Agent.AwaitExecution,
	}, dispatcher.Ledgers{
		Parachain:        parachain,
		Relaychain:       relaychain,
		ParachainClient:  c.Parachain,
		RelaychainClient: c.Relaychain,
	}, reporter, accumulator)

	stash := monitor.StashDecoders{Stash: account}
	delay := cfg.Agent.ResubscribeDelay
	monitors := []monitor.Monitor{
		monitor.NewBalanceMonitor(c.Parachain, accumulator, monitor.BalanceConfig{
			Pool:         pool,
			Low:          cfg.Agent.Low(),
			High:         cfg.Agent.High(),
			PollInterval: cfg.Agent.BalancePollInterval,
			Cooldown:     cfg.Agent.StakeCooldown,
		}),
		monitor.NewSubscriptionMonitor("unstaked", c.Parachain, monitor.UnstakedFilter, monitor.DecodeUnstaked, delay),
		monitor.NewSubscriptionMonitor("unbonded", c.Relaychain, monitor.UnbondedFilter, stash.Unbonded, delay),
		monitor.NewSubscriptionMonitor("withdrawn", c.Relaychain, monitor.WithdrawnFilter, stash.Withdrawn, delay),
		monitor.NewSubscriptionMonitor("rewarded", c.Relaychain, monitor.RewardedFilter, stash.Rewarded, delay),
		monitor.NewSubscriptionMonitor("slashed", c.Relaychain, monitor.SlashedFilter, stash.Slashed, delay),
		monitor.NewEraMonitor(c.Relaychain, cfg.Agent.EraPollInterval),
	}

	return &Agent{
		cfg:        cfg,
		account:    account,
		parachain:  parachain,
		relaychain: relaychain,
		dispatcher: d,
		monitors:   monitors,
	}, nil
}

func (a *Agent) Account() types.Address {
	return a.account
}

func (a *Agent) Dispatcher() *dispatcher.Dispatcher {
	return a.dispatcher
}

// Executors returns the flows keyed by ledger, for replaying failed operations.
func (a *Agent) Executors() map[types.Ledger]services.Executor {
	return map[types.Ledger]services.Executor{
		types.Parachain:  a.parachain,
		types.Relaychain: a.relaychain,
	}
}

// Run starts every monitor and the dispatcher. It returns when ctx ends or
// any of them fails.
func (a *Agent) Run(ctx context.Context) error {
	logger := log.Ctx(ctx)
	logger.Info().
		Str("account", a.account.SS58(a.cfg.Signer.NetworkPrefix)).
		Str("role", a.relaychain.Role().String()).
		Int("monitors", len(a.monitors)).
		Msg("starting staking agent")

	events := make(chan monitor.Envelope, a.cfg.Agent.ChannelSize)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.dispatcher.Run(ctx, events)
	})
	for _, m := range a.monitors {
		m := m
		g.Go(func() error {
			if err := m.Run(ctx, events); err != nil && ctx.Err() == nil {
				return fmt.Errorf("monitor %s: %w", m.Name(), err)
			}
			return ctx.Err()
		})
	}
	return g.Wait()
}
