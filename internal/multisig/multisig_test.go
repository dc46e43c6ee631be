package multisig

import (
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"

	"github.com/parallel-finance/staking-agent/internal/types"
)

type stubEncoder struct {
	err error
}

func (s stubEncoder) Encode(call types.Call) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte(call.Method() + "/" + call.Action().String()), nil
}

func addr(b byte) types.Address {
	return types.Address{b}
}

func TestSortedInsert(t *testing.T) {
	members, err := SortedInsert([]types.Address{addr(1), addr(3), addr(5)}, addr(4))
	require.NoError(t, err)
	assert.Equal(t, []types.Address{addr(1), addr(3), addr(4), addr(5)}, members)

	members, err = SortedInsert([]types.Address{addr(2)}, addr(9))
	require.NoError(t, err)
	assert.Equal(t, []types.Address{addr(2), addr(9)}, members)

	members, err = SortedInsert(nil, addr(7))
	require.NoError(t, err)
	assert.Equal(t, []types.Address{addr(7)}, members)
}

func TestSortedInsertRejectsSelf(t *testing.T) {
	_, err := SortedInsert([]types.Address{addr(1), addr(4), addr(5)}, addr(4))
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.DuplicateSignatory))

	// self present in an unsorted list is still reported as a duplicate
	_, err = SortedInsert([]types.Address{addr(5), addr(4)}, addr(4))
	assert.True(t, types.IsErrorCode(err, types.DuplicateSignatory))
}

func TestSortedInsertRejectsUnsortedOthers(t *testing.T) {
	_, err := SortedInsert([]types.Address{addr(3), addr(1)}, addr(2))
	assert.True(t, types.IsErrorCode(err, types.UnsortedSignatories))

	_, err = SortedInsert([]types.Address{addr(3), addr(3)}, addr(2))
	assert.True(t, types.IsErrorCode(err, types.UnsortedSignatories), "repeated members are not strictly ascending")
}

func TestDeriveThresholdAccountLayout(t *testing.T) {
	members := []types.Address{addr(1), addr(2), addr(3)}

	account, err := DeriveThresholdAccount(members, 2)
	require.NoError(t, err)

	// prefix ++ compact(3) ++ ids ++ u16le(2)
	preimage := []byte(accountPrefix)
	preimage = append(preimage, 3<<2)
	for _, m := range members {
		preimage = append(preimage, m[:]...)
	}
	preimage = append(preimage, 2, 0)
	assert.Equal(t, types.Address(blake2b.Sum256(preimage)), account)
}

func TestDeriveThresholdAccountIndependentOfInputOrder(t *testing.T) {
	self := addr(50)
	others := []types.Address{addr(10), addr(20), addr(30), addr(60), addr(70)}

	expected, err := NewBuilder(stubEncoder{}, self, others, 3, 0)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]types.Address(nil), others...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		sort.Slice(shuffled, func(a, b int) bool { return shuffled[a].Less(shuffled[b]) })

		b, err := NewBuilder(stubEncoder{}, self, shuffled, 3, 0)
		require.NoError(t, err)
		assert.Equal(t, expected.Account(), b.Account())
	}

	otherThreshold, err := NewBuilder(stubEncoder{}, self, others, 2, 0)
	require.NoError(t, err)
	assert.NotEqual(t, expected.Account(), otherThreshold.Account())
}

func TestBuilderOpenAndClose(t *testing.T) {
	b, err := NewBuilder(stubEncoder{}, addr(2), []types.Address{addr(1), addr(3)}, 2, 1_000_000_000_000)
	require.NoError(t, err)

	call := types.BondExtraCall{Amount: types.NewBalance(10)}
	expectedHash := Fingerprint([]byte("Staking.bond_extra/bond-extra"))

	open, err := b.Open(call)
	require.NoError(t, err)
	assert.Equal(t, types.ThresholdCallOpen, open.Kind)
	assert.Equal(t, expectedHash, open.CallHash)
	assert.Nil(t, open.Timepoint)
	assert.Nil(t, open.InnerCall)
	assert.Equal(t, []types.Address{addr(1), addr(3)}, open.OtherSignatories)
	assert.Equal(t, []types.Address{addr(1), addr(2), addr(3)}, open.Signatories)
	assert.Equal(t, uint16(2), open.Threshold)
	assert.Equal(t, uint64(1_000_000_000_000), open.MaxWeight)

	when := types.Timepoint{Height: 12, Index: 3}
	closing, err := b.Close(call, when)
	require.NoError(t, err)
	assert.Equal(t, types.ThresholdCallClose, closing.Kind)
	assert.Equal(t, expectedHash, closing.CallHash)
	require.NotNil(t, closing.Timepoint)
	assert.Equal(t, when, *closing.Timepoint)
	assert.Equal(t, []byte("Staking.bond_extra/bond-extra"), closing.InnerCall)
	assert.Equal(t, types.ActionBondExtra, closing.Action)
}

func TestBuilderEncodingFailure(t *testing.T) {
	b, err := NewBuilder(stubEncoder{err: errors.New("unknown call")}, addr(2), []types.Address{addr(1)}, 2, 0)
	require.NoError(t, err)

	_, err = b.Open(types.BondExtraCall{})
	assert.True(t, types.IsErrorCode(err, types.EncodingError))
}

func TestNewBuilderRejectsSelfInOthers(t *testing.T) {
	_, err := NewBuilder(stubEncoder{}, addr(2), []types.Address{addr(1), addr(2)}, 2, 0)
	assert.True(t, types.IsErrorCode(err, types.DuplicateSignatory))
}
