package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/parallel-finance/staking-agent/cmd/staking-agent/cli"
	"github.com/parallel-finance/staking-agent/cmd/staking-agent/scripts"
	"github.com/parallel-finance/staking-agent/internal/agent"
	"github.com/parallel-finance/staking-agent/internal/api"
	"github.com/parallel-finance/staking-agent/internal/clients"
	"github.com/parallel-finance/staking-agent/internal/config"
	"github.com/parallel-finance/staking-agent/internal/db/model"
	"github.com/parallel-finance/staking-agent/internal/observability/healthcheck"
	"github.com/parallel-finance/staking-agent/internal/observability/metrics"
	"github.com/parallel-finance/staking-agent/internal/queue"
	"github.com/parallel-finance/staking-agent/internal/services"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("failed to load .env file")
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.Logger.WithContext(ctx)

	// setup cli commands and flags
	if err := cli.Setup(); err != nil {
		log.Fatal().Err(err).Msg("error while setting up cli")
	}

	// load config
	cfgPath := cli.GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}
	if isOpener, ok := cli.GetOpenerOverride(); ok {
		cfg.Signer.IsOpener = isOpener
	}
	zerolog.SetGlobalLevel(cfg.Server.Level())

	metrics.Init(cfg.Metrics.Address(), cfg.Metrics.Path)

	err = model.Setup(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up staking agent db model")
	}

	queues, err := queue.New(cfg.Queue)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up outcome queue")
	}
	defer queues.Stop()

	ledgers, err := clients.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("error while connecting to ledgers")
	}

	services, err := services.New(ctx, cfg, queues, ledgers.Parachain, ledgers.Relaychain)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up staking agent services layer")
	}

	stakingAgent, err := agent.New(cfg, ledgers, services)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up staking agent")
	}

	// Check if the replay flag is set
	if cli.GetReplayFlag() {
		log.Info().Msg("Replay flag is set. Starting replay of failed operations.")
		if err := scripts.ReplayFailedOperations(ctx, services, stakingAgent.Executors(), stakingAgent.Dispatcher()); err != nil {
			log.Fatal().Err(err).Msg("error while replaying failed operations")
		}
		return
	}

	if err := healthcheck.StartHealthCheckCron(ctx, services, cfg.Server.HealthCheckInterval); err != nil {
		log.Fatal().Err(err).Msg("error while starting health check cron")
	}

	apiServer, err := api.New(ctx, cfg, services)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up status api")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return apiServer.Start(ctx)
	})
	g.Go(func() error {
		return stakingAgent.Run(ctx)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("staking agent stopped")
	}
	log.Info().Msg("staking agent stopped")
}
