package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/parallel-finance/staking-agent/internal/clients"
	"github.com/parallel-finance/staking-agent/internal/config"
	"github.com/parallel-finance/staking-agent/internal/multisig"
	"github.com/parallel-finance/staking-agent/internal/testutil"
	"github.com/parallel-finance/staking-agent/internal/types"
	"github.com/parallel-finance/staking-agent/internal/utils"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	alice = types.MustParseAddress("0xd43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d")
	bob   = types.MustParseAddress("0x8eaf04151687736326c9fea17e25fc5287613693c912909cb226aa4794f26a48")
)

func testConfig(t *testing.T, multisigAddress string) *config.Config {
	cfg := &config.Config{
		Signer: config.SignerConfig{
			Seed:             "//Alice",
			Threshold:        2,
			OtherSignatories: []string{bob.Hex()},
			MultisigAddress:  multisigAddress,
			IsOpener:         true,
		},
		Agent: config.AgentConfig{
			LowWaterMark:           "500",
			HighWaterMark:          "10000",
			BalancePollInterval:    time.Second,
			StakeCooldown:          30 * time.Second,
			EraPollInterval:        6 * time.Second,
			TimepointRetryInterval: time.Second,
			TimepointMaxRetries:    3,
			ExecutionPollInterval:  time.Second,
		},
	}
	require.NoError(t, cfg.Signer.Validate())
	require.NoError(t, cfg.Agent.Validate())
	return cfg
}

func fakeClients() (*clients.Clients, *testutil.FakeLedger, *testutil.FakeLedger) {
	para := testutil.NewFakeLedger(types.Parachain)
	relay := testutil.NewFakeLedger(types.Relaychain)
	return &clients.Clients{Parachain: para, Relaychain: relay, Signer: alice}, para, relay
}

func thresholdAccount(t *testing.T) types.Address {
	members, err := multisig.SortedInsert([]types.Address{bob}, alice)
	require.NoError(t, err)
	account, err := multisig.DeriveThresholdAccount(members, 2)
	require.NoError(t, err)
	return account
}

func TestNewChecksExpectedMultisig(t *testing.T) {
	c, _, _ := fakeClients()

	a, err := New(testConfig(t, thresholdAccount(t).Hex()), c, nil)
	require.NoError(t, err)
	assert.Equal(t, thresholdAccount(t), a.Account())
	assert.Len(t, a.Executors(), 2)

	_, err = New(testConfig(t, bob.Hex()), c, nil)
	assert.ErrorContains(t, err, "does not match")
}

func TestRunOpensStakeAndBond(t *testing.T) {
	c, para, relay := fakeClients()
	para.SetBalance(thresholdAccount(t), types.NewBalance(2_000))

	a, err := New(testConfig(t, ""), c, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	utils.SetSleepFunc(func(time.Duration) {
		if para.PendingCount() > 0 && relay.PendingCount() > 0 {
			cancel()
		}
		time.Sleep(time.Millisecond)
	})
	t.Cleanup(utils.ResetSleepFunc)

	err = a.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	submits := para.Submits()
	require.Len(t, submits, 1)
	assert.Equal(t, types.ThresholdCallOpen, submits[0].Kind)
	assert.Equal(t, types.ActionStake, submits[0].Action)

	submits = relay.Submits()
	require.Len(t, submits, 1)
	assert.Equal(t, types.ActionBond, submits[0].Action)

	state := a.Dispatcher().State()
	assert.Equal(t, types.EventStakeAmount, state.LastEvent)
}
