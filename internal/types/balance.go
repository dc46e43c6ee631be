package types

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

const maxBalanceBits = 128

// Balance is an unsigned 128 bit ledger amount. Arithmetic saturates at zero
// instead of wrapping.
type Balance struct {
	v uint256.Int
}

func NewBalance(amount uint64) Balance {
	var b Balance
	b.v.SetUint64(amount)
	return b
}

// ParseBalance parses a base 10 amount.
func ParseBalance(s string) (Balance, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return Balance{}, fmt.Errorf("invalid balance %q: %w", s, err)
	}
	if v.BitLen() > maxBalanceBits {
		return Balance{}, fmt.Errorf("balance %q exceeds 128 bits", s)
	}
	return Balance{v: *v}, nil
}

func MustParseBalance(s string) Balance {
	b, err := ParseBalance(s)
	if err != nil {
		panic(err)
	}
	return b
}

func BalanceFromBig(i *big.Int) (Balance, error) {
	if i == nil || i.Sign() < 0 {
		return Balance{}, fmt.Errorf("invalid balance %v", i)
	}
	v, overflow := uint256.FromBig(i)
	if overflow || v.BitLen() > maxBalanceBits {
		return Balance{}, fmt.Errorf("balance %s exceeds 128 bits", i.String())
	}
	return Balance{v: *v}, nil
}

func (b Balance) Big() *big.Int {
	return b.v.ToBig()
}

func (b Balance) Add(o Balance) Balance {
	var r Balance
	r.v.Add(&b.v, &o.v)
	return r
}

// Sub returns b - o, or zero when o is greater than b.
func (b Balance) Sub(o Balance) Balance {
	var r Balance
	if b.v.Lt(&o.v) {
		return r
	}
	r.v.Sub(&b.v, &o.v)
	return r
}

func (b Balance) Cmp(o Balance) int {
	return b.v.Cmp(&o.v)
}

func (b Balance) Lt(o Balance) bool {
	return b.v.Lt(&o.v)
}

func (b Balance) Gte(o Balance) bool {
	return !b.v.Lt(&o.v)
}

func (b Balance) IsZero() bool {
	return b.v.IsZero()
}

func (b Balance) Min(o Balance) Balance {
	if o.v.Lt(&b.v) {
		return o
	}
	return b
}

func (b Balance) String() string {
	return b.v.Dec()
}

// Float64 is lossy and only meant for metrics.
func (b Balance) Float64() float64 {
	f, _ := new(big.Float).SetInt(b.v.ToBig()).Float64()
	return f
}

func (b Balance) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Balance) UnmarshalText(text []byte) error {
	parsed, err := ParseBalance(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// AccountBalance is the part of an account's balance the agent looks at.
type AccountBalance struct {
	Free   Balance
	Frozen Balance
}

// Spendable is free minus frozen.
func (a AccountBalance) Spendable() Balance {
	return a.Free.Sub(a.Frozen)
}
