package processor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/kisanpay/kisanpay/internal/queue"
	"github.com/kisanpay/kisanpay/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ledgerMessage(t *testing.T, e *model.LedgerEvent) *queue.Message {
	t.Helper()
	data, err := json.Marshal(e)
	require.NoError(t, err)
	return &queue.Message{ID: "1-0", Data: data, Timestamp: time.Now()}
}

func testEvent(id int64) *model.LedgerEvent {
	return &model.LedgerEvent{
		TransactionID: id,
		Reference:     "ref",
		Kind:          model.KindTransfer,
		SenderID:      10,
		ReceiverID:    20,
		Amount:        decimal.RequireFromString("125.50"),
		OccurredAt:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

type failingBillStore struct{ err error }

func (f failingBillStore) CreateBills(context.Context, []*model.Bill) (int64, error) {
	return 0, f.err
}

func TestBillingProcessor_Process(t *testing.T) {
	_, adapter := setupTestRedis(t)
	bills := repository.NewBillingRepository(repository.NewTestDB(t))
	p := NewBillingProcessor(bills, NewIdempotencyService(adapter, DefaultIdempotencyConfig()))
	ctx := context.Background()

	assert.Equal(t, "billing", p.GetType())

	t.Run("writes a debit and a credit", func(t *testing.T) {
		require.NoError(t, p.Process(ctx, ledgerMessage(t, testEvent(1))))

		sent, err := bills.ListByCustomer(ctx, 10)
		require.NoError(t, err)
		require.Len(t, sent, 1)
		assert.Equal(t, model.BillDebit, sent[0].Direction)
		assert.True(t, decimal.RequireFromString("125.50").Equal(sent[0].Amount))

		received, err := bills.ListByCustomer(ctx, 20)
		require.NoError(t, err)
		require.Len(t, received, 1)
		assert.Equal(t, model.BillCredit, received[0].Direction)
	})

	t.Run("redelivery is absorbed", func(t *testing.T) {
		require.NoError(t, p.Process(ctx, ledgerMessage(t, testEvent(1))))

		sent, err := bills.ListByCustomer(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, sent, 1)
	})

	t.Run("invalid payload is rejected", func(t *testing.T) {
		err := p.Process(ctx, &queue.Message{ID: "2-0", Data: []byte("{not json")})
		assert.Error(t, err)

		err = p.Process(ctx, ledgerMessage(t, &model.LedgerEvent{}))
		assert.Error(t, err)
	})

	t.Run("self transfer bills both sides of one customer", func(t *testing.T) {
		e := testEvent(2)
		e.SenderID, e.ReceiverID = 30, 30
		require.NoError(t, p.Process(ctx, ledgerMessage(t, e)))

		own, err := bills.ListByCustomer(ctx, 30)
		require.NoError(t, err)
		assert.Len(t, own, 2)
	})
}

func TestBillingProcessor_StoreFailure(t *testing.T) {
	_, adapter := setupTestRedis(t)
	idem := NewIdempotencyService(adapter, DefaultIdempotencyConfig())
	p := NewBillingProcessor(failingBillStore{err: errors.New("db down")}, idem)
	ctx := context.Background()

	err := p.Process(ctx, ledgerMessage(t, testEvent(3)))
	require.Error(t, err)

	count, err := idem.GetRetryCount(ctx, "txn:3")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	processed, err := idem.IsProcessed(ctx, "txn:3")
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestBillingProcessor_GivesUpAfterMaxRetries(t *testing.T) {
	_, adapter := setupTestRedis(t)
	cfg := DefaultIdempotencyConfig()
	cfg.MaxRetries = 1
	idem := NewIdempotencyService(adapter, cfg)
	p := NewBillingProcessor(failingBillStore{err: errors.New("db down")}, idem)
	ctx := context.Background()

	assert.Error(t, p.Process(ctx, ledgerMessage(t, testEvent(4))))
	assert.NoError(t, p.Process(ctx, ledgerMessage(t, testEvent(4))))
}
