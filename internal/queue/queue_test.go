package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/parallel-finance/staking-agent/internal/mocks"
	"github.com/parallel-finance/staking-agent/internal/queue/client"
)

func TestPublishOutcomeSendsJson(t *testing.T) {
	qc := mocks.NewQueueClient(t)
	var body string
	qc.On("SendMessage", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			body = args.String(1)
		}).
		Return(nil)

	q := NewWithClient(qc, time.Second)
	err := q.PublishOutcome(context.Background(), client.OperationOutcomeEvent{
		EventId: "ev-1",
		Action:  "stake",
		Stage:   "opened",
	})
	require.NoError(t, err)

	var ev client.OperationOutcomeEvent
	require.NoError(t, json.Unmarshal([]byte(body), &ev))
	assert.Equal(t, client.OperationOutcomeEventType, ev.EventType)
	assert.Equal(t, "ev-1", ev.EventId)
	assert.Equal(t, "stake", ev.Action)
}

func TestPublishOutcomeReturnsSendError(t *testing.T) {
	qc := mocks.NewQueueClient(t)
	qc.On("SendMessage", mock.Anything, mock.Anything).Return(errors.New("channel closed"))
	qc.On("GetQueueName").Return("operation_outcome_queue")

	q := NewWithClient(qc, time.Second)
	err := q.PublishOutcome(context.Background(), client.OperationOutcomeEvent{EventId: "ev-2"})
	assert.EqualError(t, err, "channel closed")
}
