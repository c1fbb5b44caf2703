package processor

import (
	"context"
	"testing"
	"time"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/kisanpay/kisanpay/internal/queue"
	"github.com/kisanpay/kisanpay/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessorService_BillsPublishedEvents(t *testing.T) {
	_, adapter := setupTestRedis(t)
	bills := repository.NewBillingRepository(repository.NewTestDB(t))

	cfg := queue.QueueConfig{
		Name:              "ledger-events",
		ConsumerGroup:     "billing",
		ConsumerName:      "test",
		MaxRetries:        3,
		VisibilityTimeout: 5 * time.Second,
		PollInterval:      50 * time.Millisecond,
		BatchSize:         10,
	}
	publisherQueue, err := queue.NewQueue(adapter, cfg)
	require.NoError(t, err)
	publisher := queue.NewLedgerPublisher(publisherQueue)

	service := NewProcessorService(adapter, Options{Queue: cfg, Consumers: 2, Workers: 2})
	assert.Error(t, service.Start(), "start without a processor")

	service.RegisterProcessor(NewBillingProcessor(bills, NewIdempotencyService(adapter, DefaultIdempotencyConfig())))
	require.NoError(t, service.Start())
	defer service.Stop()

	ctx := context.Background()
	for id := int64(1); id <= 3; id++ {
		require.NoError(t, publisher.PublishLedgerEvent(ctx, testEvent(id)))
	}

	require.Eventually(t, func() bool {
		got, err := bills.ListByCustomer(ctx, 10)
		return err == nil && len(got) == 3
	}, 5*time.Second, 50*time.Millisecond)

	received, err := bills.ListByCustomer(ctx, 20)
	require.NoError(t, err)
	for _, b := range received {
		assert.Equal(t, model.BillCredit, b.Direction)
	}
	assert.Len(t, received, 3)

	require.Eventually(t, func() bool {
		return service.Metrics().GetStats().Processed == 3
	}, 2*time.Second, 20*time.Millisecond)
}
