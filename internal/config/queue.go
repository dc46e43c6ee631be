package config

import (
	"fmt"
	"time"
)

// QueueConfig configures the rabbitmq queue operation outcomes are published to.
type QueueConfig struct {
	Url               string        `mapstructure:"url"`
	QueueUser         string        `mapstructure:"user"`
	QueuePassword     string        `mapstructure:"password"`
	OutcomeQueueName  string        `mapstructure:"outcome-queue-name"`
	PublishTimeout    time.Duration `mapstructure:"publish-timeout"`
	ReconnectInterval time.Duration `mapstructure:"reconnect-interval"`
}

func (cfg *QueueConfig) Validate() error {
	if cfg.Url == "" {
		return fmt.Errorf("missing queue url")
	}

	if cfg.QueueUser == "" || cfg.QueuePassword == "" {
		return fmt.Errorf("missing queue credentials")
	}

	if cfg.OutcomeQueueName == "" {
		cfg.OutcomeQueueName = "staking_agent_operations"
	}

	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 5 * time.Second
	}

	if cfg.ReconnectInterval <= 0 {
		cfg.ReconnectInterval = 10 * time.Second
	}
	return nil
}

// AmqpURI returns the connection string for amqp091.Dial.
func (cfg *QueueConfig) AmqpURI() string {
	return fmt.Sprintf("amqp://%s:%s@%s", cfg.QueueUser, cfg.QueuePassword, cfg.Url)
}
