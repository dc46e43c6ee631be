package client

import "context"

// A common interface for queue clients regardless if it's a SQS, RabbitMQ, etc.
type QueueClient interface {
	SendMessage(ctx context.Context, messageBody string) error
	IsConnectionHealthy() error
	GetQueueName() string
	Stop() error
}

func NewQueueClient(amqpURI, queueName string) (QueueClient, error) {
	return NewRabbitMqClient(amqpURI, queueName)
}
