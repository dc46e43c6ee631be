package dispatcher

import (
	"sync"

	"github.com/parallel-finance/staking-agent/internal/types"
)

// Accumulator tracks funds withdrawn on the relay chain that still belong to
// unstakers. The dispatcher writes it, the balance monitor reads it.
type Accumulator struct {
	mu sync.Mutex
	v  types.Balance
}

func (a *Accumulator) Get() types.Balance {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.v
}

func (a *Accumulator) Add(amount types.Balance) {
	a.mu.Lock()
	a.v = a.v.Add(amount)
	a.mu.Unlock()
}

// Sub saturates at zero.
func (a *Accumulator) Sub(amount types.Balance) {
	a.mu.Lock()
	a.v = a.v.Sub(amount)
	a.mu.Unlock()
}
