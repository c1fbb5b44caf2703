package queue

import (
	"context"
	"testing"
	"time"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerPublisher_RoundTrip(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	defer mr.Close()

	q, err := NewQueue(adapter, QueueConfig{
		Name:          "ledger:events",
		ConsumerGroup: "billing",
		ConsumerName:  "billing-1",
		PollInterval:  50 * time.Millisecond,
	})
	require.NoError(t, err)
	defer q.Stop(time.Second)

	publisher := NewLedgerPublisher(q)
	event := &model.LedgerEvent{
		TransactionID: 42,
		Reference:     "ref-42",
		Kind:          model.KindPurchase,
		SenderID:      1,
		ReceiverID:    2,
		Amount:        decimal.RequireFromString("200.50"),
		OccurredAt:    time.Now().UTC(),
	}
	require.NoError(t, publisher.PublishLedgerEvent(context.Background(), event))

	received := make(chan *model.LedgerEvent, 1)
	require.NoError(t, q.Consume(func(ctx context.Context, msg *Message) error {
		assert.Equal(t, "purchase", msg.Metadata["kind"])
		assert.Equal(t, "42", msg.Metadata["transaction_id"])
		e, err := DecodeLedgerEvent(msg)
		if err != nil {
			return err
		}
		received <- e
		return nil
	}))

	select {
	case got := <-received:
		assert.Equal(t, event.TransactionID, got.TransactionID)
		assert.Equal(t, event.Kind, got.Kind)
		assert.True(t, event.Amount.Equal(got.Amount))
	case <-time.After(2 * time.Second):
		t.Fatal("ledger event not received")
	}
}

func TestDecodeLedgerEvent_Invalid(t *testing.T) {
	_, err := DecodeLedgerEvent(&Message{ID: "1", Data: []byte("not json")})
	assert.Error(t, err)

	_, err = DecodeLedgerEvent(&Message{ID: "2", Data: []byte(`{"kind":"transfer"}`)})
	assert.Error(t, err)
}
