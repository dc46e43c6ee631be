package healthcheck

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// MaxConsecutiveFailures is how many failed checks in a row terminate the agent.
const MaxConsecutiveFailures = 3

var logger zerolog.Logger = log.Logger

func SetLogger(customLogger zerolog.Logger) {
	logger = customLogger
}

// Checker reports whether the agent's dependencies are reachable.
type Checker interface {
	DoHealthCheck(ctx context.Context) error
}

type cronCheck struct {
	checker   Checker
	terminate func()

	mu       sync.Mutex
	failures int
}

func StartHealthCheckCron(ctx context.Context, checker Checker, cronTime int) error {
	return startHealthCheckCron(ctx, checker, cronTime, terminateService)
}

func startHealthCheckCron(ctx context.Context, checker Checker, cronTime int, terminate func()) error {
	c := cron.New()
	logger.Info().Msg("Initiated Health Check Cron")

	if cronTime == 0 {
		cronTime = 60
	}

	cronSpec := fmt.Sprintf("@every %ds", cronTime)

	check := &cronCheck{checker: checker, terminate: terminate}
	_, err := c.AddFunc(cronSpec, func() {
		check.run(ctx)
	})

	if err != nil {
		return err
	}

	c.Start()

	go func() {
		<-ctx.Done()
		logger.Info().Msg("Stopping Health Check Cron")
		c.Stop()
	}()

	return nil
}

func (c *cronCheck) run(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checker.DoHealthCheck(ctx); err != nil {
		c.failures++
		logger.Error().Err(err).Int("consecutiveFailures", c.failures).Msg("Health check failed")
		if c.failures >= MaxConsecutiveFailures {
			c.terminate()
		}
		return
	}
	c.failures = 0
}

func terminateService() {
	logger.Fatal().Msg("Terminating service due to health check failure.")
	os.Exit(1)
}
