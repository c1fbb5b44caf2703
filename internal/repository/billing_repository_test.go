package repository

import (
	"context"
	"testing"
	"time"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillingRepository_CreateBills(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewBillingRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	bills := []*model.Bill{
		{TransactionID: 1, CustomerID: 10, Direction: model.BillDebit, Amount: decimal.NewFromInt(300), DateTime: now},
		{TransactionID: 1, CustomerID: 20, Direction: model.BillCredit, Amount: decimal.NewFromInt(300), DateTime: now},
	}

	inserted, err := repo.CreateBills(ctx, bills)
	require.NoError(t, err)
	assert.Equal(t, int64(2), inserted)

	t.Run("redelivery is ignored", func(t *testing.T) {
		inserted, err := repo.CreateBills(ctx, []*model.Bill{
			{TransactionID: 1, CustomerID: 10, Direction: model.BillDebit, Amount: decimal.NewFromInt(300), DateTime: now},
			{TransactionID: 1, CustomerID: 20, Direction: model.BillCredit, Amount: decimal.NewFromInt(300), DateTime: now},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(0), inserted)
	})

	t.Run("list per customer", func(t *testing.T) {
		got, err := repo.ListByCustomer(ctx, 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, model.BillDebit, got[0].Direction)
	})

	t.Run("empty input", func(t *testing.T) {
		inserted, err := repo.CreateBills(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, inserted)
	})
}
