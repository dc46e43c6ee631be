package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parallel-finance/staking-agent/internal/config"
	"github.com/parallel-finance/staking-agent/internal/queue/client"
)

type Queues struct {
	OutcomeQueueClient client.QueueClient
	publishTimeout     time.Duration
}

func New(cfg config.QueueConfig) (*Queues, error) {
	outcomeQueueClient, err := client.NewQueueClient(cfg.AmqpURI(), cfg.OutcomeQueueName)
	if err != nil {
		return nil, err
	}
	return NewWithClient(outcomeQueueClient, cfg.PublishTimeout), nil
}

func NewWithClient(outcomeQueueClient client.QueueClient, publishTimeout time.Duration) *Queues {
	return &Queues{
		OutcomeQueueClient: outcomeQueueClient,
		publishTimeout:     publishTimeout,
	}
}

// PublishOutcome sends ev to the outcome queue. It is bounded by the publish
// timeout so a stuck broker never stalls the dispatcher.
func (q *Queues) PublishOutcome(ctx context.Context, ev client.OperationOutcomeEvent) error {
	ev.EventType = client.OperationOutcomeEventType
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, q.publishTimeout)
	defer cancel()
	if err := q.OutcomeQueueClient.SendMessage(ctx, string(body)); err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("queueName", q.OutcomeQueueClient.GetQueueName()).
			Msg("error while publishing operation outcome")
		return err
	}
	return nil
}

func (q *Queues) IsConnectionHealthy() error {
	return q.OutcomeQueueClient.IsConnectionHealthy()
}

// Stop closes every queue connection.
func (q *Queues) Stop() {
	if err := q.OutcomeQueueClient.Stop(); err != nil {
		log.Error().Err(err).Str("queueName", q.OutcomeQueueClient.GetQueueName()).Msg("error while closing queue")
	}
}
