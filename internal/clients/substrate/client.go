package substrate

import (
	"context"
	"fmt"
	"sync"
	"time"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	"github.com/centrifuge/go-substrate-rpc-client/v4/registry/retriever"
	"github.com/centrifuge/go-substrate-rpc-client/v4/registry/state"
	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	gsrpctypes "github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/rs/zerolog/log"

	"github.com/parallel-finance/staking-agent/internal/config"
	"github.com/parallel-finance/staking-agent/internal/types"
)

type SubstrateClient struct {
	name   types.Ledger
	cfg    *config.LedgerConfig
	api    *gsrpc.SubstrateAPI
	signer signature.KeyringPair
	events retriever.EventRetriever

	mu          sync.RWMutex
	meta        *gsrpctypes.Metadata
	specVersion gsrpctypes.U32
	genesis     gsrpctypes.Hash

	// serializes nonce reads and submissions
	submitMu sync.Mutex
}

// NewSubstrateClient connects to the ledger endpoint and loads its metadata.
// Any failure here is a ConnectionError.
func NewSubstrateClient(
	ctx context.Context, name types.Ledger, cfg *config.LedgerConfig, signer signature.KeyringPair,
) (*SubstrateClient, error) {
	api, err := gsrpc.NewSubstrateAPI(cfg.Endpoint)
	if err != nil {
		return nil, types.WrapError(types.ConnectionError, fmt.Errorf("failed to connect to %s endpoint %s: %w", name, cfg.Endpoint, err))
	}

	meta, err := api.RPC.State.GetMetadataLatest()
	if err != nil {
		return nil, types.WrapError(types.ConnectionError, fmt.Errorf("failed to load %s metadata: %w", name, err))
	}

	genesis, err := api.RPC.Chain.GetBlockHash(0)
	if err != nil {
		return nil, types.WrapError(types.ConnectionError, fmt.Errorf("failed to load %s genesis hash: %w", name, err))
	}

	runtime, err := api.RPC.State.GetRuntimeVersionLatest()
	if err != nil {
		return nil, types.WrapError(types.ConnectionError, fmt.Errorf("failed to load %s runtime version: %w", name, err))
	}

	events, err := retriever.NewDefaultEventRetriever(state.NewEventProvider(api.RPC.State), api.RPC.State)
	if err != nil {
		return nil, types.WrapError(types.ConnectionError, fmt.Errorf("failed to set up %s event retriever: %w", name, err))
	}

	log.Ctx(ctx).Info().
		Str("ledger", name.String()).
		Str("endpoint", cfg.Endpoint).
		Uint32("specVersion", uint32(runtime.SpecVersion)).
		Msg("connected to ledger")

	return &SubstrateClient{
		name:        name,
		cfg:         cfg,
		api:         api,
		signer:      signer,
		events:      events,
		meta:        meta,
		specVersion: runtime.SpecVersion,
		genesis:     genesis,
	}, nil
}

func (c *SubstrateClient) Name() types.Ledger {
	return c.name
}

func (c *SubstrateClient) Ping(ctx context.Context) error {
	_, err := withTimeout(ctx, c.cfg.Timeout, func() (gsrpctypes.Hash, error) {
		return c.api.RPC.Chain.GetBlockHashLatest()
	})
	if err != nil {
		return types.WrapError(types.ConnectionError, fmt.Errorf("%s is not reachable: %w", c.name, err))
	}
	return nil
}

func (c *SubstrateClient) metadata() *gsrpctypes.Metadata {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.meta
}

// refreshRuntime reloads metadata after a runtime upgrade and returns the
// current runtime version.
func (c *SubstrateClient) refreshRuntime(ctx context.Context) (*gsrpctypes.RuntimeVersion, error) {
	runtime, err := c.api.RPC.State.GetRuntimeVersionLatest()
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	current := c.specVersion
	c.mu.RUnlock()
	if runtime.SpecVersion == current {
		return runtime, nil
	}

	meta, err := c.api.RPC.State.GetMetadataLatest()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.meta = meta
	c.specVersion = runtime.SpecVersion
	c.mu.Unlock()

	log.Ctx(ctx).Info().
		Str("ledger", c.name.String()).
		Uint32("specVersion", uint32(runtime.SpecVersion)).
		Msg("runtime upgraded, metadata reloaded")
	return runtime, nil
}

// withTimeout runs a blocking rpc call and gives up once ctx or the timeout ends.
func withTimeout[T any](ctx context.Context, timeout time.Duration, fn func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
