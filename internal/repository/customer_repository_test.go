package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerRepository(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &model.Customer{Name: "Asha", Email: "asha@kisanpay.test", Role: model.RoleSeller})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	t.Run("duplicate email ignores case", func(t *testing.T) {
		_, err := repo.Create(ctx, &model.Customer{Name: "Other", Email: "ASHA@kisanpay.test", Role: model.RoleBuyer})
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RoleSeller, got.Role)

		_, err = repo.GetByID(ctx, 999)
		assert.ErrorIs(t, err, ErrCustomerNotFound)
	})

	t.Run("list", func(t *testing.T) {
		all, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestCustomerRepository_ConcurrentSignupSameEmail(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewCustomerRepository(db)

	const workers = 6
	var (
		wg         sync.WaitGroup
		created    atomic.Int32
		duplicates atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(context.Background(), &model.Customer{Name: "Ravi", Email: "ravi@kisanpay.test", Role: model.RoleBuyer})
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, ErrDuplicateEmail):
				duplicates.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(workers-1), duplicates.Load())
}
