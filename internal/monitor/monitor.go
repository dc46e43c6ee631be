package monitor

import (
	"context"

	"github.com/parallel-finance/staking-agent/internal/types"
)

// Envelope carries one event to the dispatcher together with the channel the
// dispatcher acknowledges it on.
type Envelope struct {
	Event types.Event
	ack   chan struct{}
}

func NewEnvelope(ev types.Event) Envelope {
	return Envelope{Event: ev, ack: make(chan struct{}, 1)}
}

// Ack releases the monitor that emitted the envelope. Extra calls are no-ops.
func (e Envelope) Ack() {
	if e.ack == nil {
		return
	}
	select {
	case e.ack <- struct{}{}:
	default:
	}
}

// Emit sends ev and blocks until the dispatcher acknowledged it, so a monitor
// never runs ahead of the processing of its previous event.
func Emit(ctx context.Context, out chan<- Envelope, ev types.Event) error {
	env := NewEnvelope(ev)
	select {
	case out <- env:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-env.ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Monitor produces domain events until ctx ends.
type Monitor interface {
	Name() string
	Run(ctx context.Context, out chan<- Envelope) error
}
