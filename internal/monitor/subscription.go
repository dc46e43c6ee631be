package monitor

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parallel-finance/staking-agent/internal/clients/substrate"
	"github.com/parallel-finance/staking-agent/internal/types"
	"github.com/parallel-finance/staking-agent/internal/utils"
)

// Decoder turns a ledger event into a domain event. A nil event with a nil
// error means the event was filtered out.
type Decoder func(le types.LedgerEvent) (types.Event, error)

// SubscriptionMonitor forwards one kind of finalized ledger event.
type SubscriptionMonitor struct {
	name             string
	ledger           substrate.LedgerClient
	filter           types.EventFilter
	decode           Decoder
	resubscribeDelay time.Duration
}

func NewSubscriptionMonitor(
	name string, ledger substrate.LedgerClient, filter types.EventFilter, decode Decoder, resubscribeDelay time.Duration,
) *SubscriptionMonitor {
	return &SubscriptionMonitor{
		name:             name,
		ledger:           ledger,
		filter:           filter,
		decode:           decode,
		resubscribeDelay: resubscribeDelay,
	}
}

func (m *SubscriptionMonitor) Name() string {
	return m.name
}

func (m *SubscriptionMonitor) Run(ctx context.Context, out chan<- Envelope) error {
	logger := log.Ctx(ctx).With().
		Str("monitor", m.name).
		Str("ledger", m.ledger.Name().String()).
		Str("event", m.filter.String()).
		Logger()

	for {
		events, err := m.ledger.SubscribeEvents(ctx, m.filter)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn().Err(err).Msg("failed to subscribe")
		} else {
			logger.Info().Msg("subscribed")
			if err := m.forward(ctx, events, out); err != nil {
				return err
			}
			logger.Warn().Msg("subscription ended, resubscribing")
		}

		if err := utils.Sleep(ctx, m.resubscribeDelay); err != nil {
			return err
		}
	}
}

// forward drains events until the channel closes. It only returns an error
// when ctx ended.
func (m *SubscriptionMonitor) forward(ctx context.Context, events <-chan types.LedgerEvent, out chan<- Envelope) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case le, ok := <-events:
			if !ok {
				return ctx.Err()
			}
			ev, err := m.decode(le)
			if err != nil {
				recordDrop(m.name, "decode")
				log.Ctx(ctx).Warn().Err(err).
					Str("monitor", m.name).
					Uint64("block", le.BlockNumber).
					Msg("dropping undecodable event")
				continue
			}
			if ev == nil {
				recordDrop(m.name, "filtered")
				continue
			}
			if err := Emit(ctx, out, ev); err != nil {
				return err
			}
		}
	}
}
