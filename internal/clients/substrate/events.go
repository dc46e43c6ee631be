package substrate

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/parallel-finance/staking-agent/internal/types"
)

// SubscribeEvents follows finalized heads and forwards the events of each
// finalized block that match filter.
func (c *SubstrateClient) SubscribeEvents(ctx context.Context, filter types.EventFilter) (<-chan types.LedgerEvent, error) {
	sub, err := c.api.RPC.Chain.SubscribeFinalizedHeads()
	if err != nil {
		return nil, types.WrapError(types.ConnectionError, fmt.Errorf("failed to subscribe to %s finalized heads: %w", c.name, err))
	}

	logger := log.Ctx(ctx).With().Str("ledger", c.name.String()).Str("filter", filter.String()).Logger()
	out := make(chan types.LedgerEvent)

	go func() {
		defer close(out)
		defer sub.Unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return
			case err := <-sub.Err():
				logger.Warn().Err(err).Msg("finalized heads subscription ended")
				return
			case head, ok := <-sub.Chan():
				if !ok {
					return
				}
				number := uint64(head.Number)
				events, err := c.blockEvents(number, filter)
				if err != nil {
					logger.Error().Err(err).Uint64("block", number).Msg("failed to read block events")
					continue
				}
				for _, ev := range events {
					select {
					case out <- ev:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return out, nil
}

func (c *SubstrateClient) blockEvents(number uint64, filter types.EventFilter) ([]types.LedgerEvent, error) {
	hash, err := c.api.RPC.Chain.GetBlockHash(number)
	if err != nil {
		return nil, err
	}
	raw, err := c.events.GetEvents(hash)
	if err != nil {
		return nil, err
	}

	var matched []types.LedgerEvent
	for _, ev := range raw {
		if ev == nil || !filter.Matches(ev.Name) {
			continue
		}
		matched = append(matched, types.LedgerEvent{
			Name:        ev.Name,
			BlockNumber: number,
			Fields:      normalizeFields(ev.Fields),
		})
	}
	return matched, nil
}
