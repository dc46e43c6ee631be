package types

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceArithmetic(t *testing.T) {
	a := NewBalance(150)
	b := NewBalance(100)

	assert.Equal(t, "250", a.Add(b).String())
	assert.Equal(t, "50", a.Sub(b).String())
	assert.True(t, b.Sub(a).IsZero(), "subtraction should saturate at zero")
	assert.Equal(t, b, a.Min(b))
	assert.True(t, a.Gte(b))
	assert.True(t, b.Lt(a))
}

func TestParseBalanceBounds(t *testing.T) {
	maxU128 := "340282366920938463463374607431768211455"
	b, err := ParseBalance(maxU128)
	require.NoError(t, err)
	assert.Equal(t, maxU128, b.String())

	_, err = ParseBalance("340282366920938463463374607431768211456")
	assert.Error(t, err, "values above u128 should be rejected")

	_, err = ParseBalance("-1")
	assert.Error(t, err)

	_, err = BalanceFromBig(big.NewInt(-5))
	assert.Error(t, err)
}

func TestSpendable(t *testing.T) {
	acc := AccountBalance{Free: NewBalance(1_000), Frozen: NewBalance(300)}
	assert.Equal(t, NewBalance(700), acc.Spendable())

	frozenAboveFree := AccountBalance{Free: NewBalance(10), Frozen: NewBalance(30)}
	assert.True(t, frozenAboveFree.Spendable().IsZero())
}

func TestEraLockRecordMatured(t *testing.T) {
	rec := EraLockRecord{Era: 10, Amount: NewBalance(1)}

	for era := uint32(10); era < 38; era++ {
		assert.False(t, rec.Matured(era, 28), "era %d should not be matured", era)
	}
	assert.True(t, rec.Matured(38, 28))
	assert.False(t, rec.Matured(5, 28), "an era below the recorded one never matures")
}

func TestEventFilterMatches(t *testing.T) {
	f := EventFilter{Pallet: "Staking", Name: "Unbonded"}
	assert.True(t, f.Matches("Staking.Unbonded"))
	assert.False(t, f.Matches("Staking.Withdrawn"))
	assert.False(t, f.Matches("Unbonded"))
}

func TestErrorCodes(t *testing.T) {
	err := Errorf(OperationAlreadyOpen, "operation %s already open", "0x01")
	assert.True(t, IsErrorCode(err, OperationAlreadyOpen))
	assert.False(t, IsErrorCode(err, OperationNotYetOpen))

	wrapped := WrapError(ConnectionError, err)
	assert.Equal(t, OperationAlreadyOpen, CodeOf(wrapped), "wrapping keeps an existing code")
	assert.Equal(t, InternalServiceError, CodeOf(assert.AnError))
}
