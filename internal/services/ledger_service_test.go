package services

import (
	"context"
	"errors"
	"testing"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerService_Transfer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("moves money and records one transaction", func(t *testing.T) {
		a := env.signup(t, "a1@kisanpay.test", model.RoleBuyer, 1000)
		b := env.signup(t, "b1@kisanpay.test", model.RoleSeller, 0)
		before := env.transactionCount(t)

		txn, err := env.ledger.Transfer(ctx, model.TransferRequest{
			SenderID: a.ID, TransferTo: *b.AccNo, Amount: decimal.NewFromInt(300),
		})
		require.NoError(t, err)

		requireMoney(t, 700, env.balance(t, a.ID))
		requireMoney(t, 300, env.balance(t, b.ID))
		assert.Equal(t, before+1, env.transactionCount(t))

		assert.Equal(t, model.KindTransfer, txn.Kind)
		assert.Equal(t, *a.AccNo, txn.AccNo)
		assert.Equal(t, *b.AccNo, txn.TransferTo)
		assert.Equal(t, a.ID, txn.SenderID)
		assert.Equal(t, b.ID, txn.ReceiverID)
		requireMoney(t, 300, txn.Amount)
		assert.NotEmpty(t, txn.Reference)
	})

	t.Run("insufficient balance changes nothing however often it is retried", func(t *testing.T) {
		a := env.signup(t, "a2@kisanpay.test", model.RoleBuyer, 100)
		b := env.signup(t, "b2@kisanpay.test", model.RoleBuyer, 0)
		before := env.transactionCount(t)

		for i := 0; i < 3; i++ {
			_, err := env.ledger.Transfer(ctx, model.TransferRequest{
				SenderID: a.ID, TransferTo: *b.AccNo, Amount: decimal.NewFromInt(300),
			})
			assert.ErrorIs(t, err, ErrInsufficientBalance)
			assert.Equal(t, KindConflict, KindOf(err))
		}

		requireMoney(t, 100, env.balance(t, a.ID))
		requireMoney(t, 0, env.balance(t, b.ID))
		assert.Equal(t, before, env.transactionCount(t))
	})

	t.Run("precondition order", func(t *testing.T) {
		a := env.signup(t, "a3@kisanpay.test", model.RoleBuyer, 50)
		b := env.signup(t, "b3@kisanpay.test", model.RoleBuyer, 0)

		_, err := env.ledger.Transfer(ctx, model.TransferRequest{SenderID: 9999, TransferTo: 1, Amount: decimal.Zero})
		assert.ErrorIs(t, err, ErrSenderAccountNotFound)

		_, err = env.ledger.Transfer(ctx, model.TransferRequest{SenderID: a.ID, TransferTo: 1, Amount: decimal.Zero})
		assert.ErrorIs(t, err, ErrReceiverAccountNotFound)

		_, err = env.ledger.Transfer(ctx, model.TransferRequest{SenderID: a.ID, TransferTo: *b.AccNo, Amount: decimal.NewFromInt(-5)})
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = env.ledger.Transfer(ctx, model.TransferRequest{SenderID: a.ID, TransferTo: *b.AccNo, Amount: decimal.RequireFromString("0.001")})
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.Equal(t, KindValidation, KindOf(err))

		requireMoney(t, 50, env.balance(t, a.ID))
	})

	t.Run("self transfer keeps balance and is recorded", func(t *testing.T) {
		a := env.signup(t, "a4@kisanpay.test", model.RoleBuyer, 80)
		before := env.transactionCount(t)

		_, err := env.ledger.Transfer(ctx, model.TransferRequest{SenderID: a.ID, TransferTo: *a.AccNo, Amount: decimal.NewFromInt(80)})
		require.NoError(t, err)

		requireMoney(t, 80, env.balance(t, a.ID))
		assert.Equal(t, before+1, env.transactionCount(t))
	})

	t.Run("conservation over a chain of transfers", func(t *testing.T) {
		a := env.signup(t, "a5@kisanpay.test", model.RoleBuyer, 500)
		b := env.signup(t, "b5@kisanpay.test", model.RoleBuyer, 500)

		amounts := []string{"10.25", "499.75", "1", "300"}
		for i, amt := range amounts {
			from, to := a, b
			if i%2 == 1 {
				from, to = b, a
			}
			beforeSum := env.balance(t, a.ID).Add(env.balance(t, b.ID))
			_, _ = env.ledger.Transfer(ctx, model.TransferRequest{SenderID: from.ID, TransferTo: *to.AccNo, Amount: decimal.RequireFromString(amt)})
			afterSum := env.balance(t, a.ID).Add(env.balance(t, b.ID))
			assert.True(t, beforeSum.Equal(afterSum))
			assert.False(t, env.balance(t, a.ID).IsNegative())
			assert.False(t, env.balance(t, b.ID).IsNegative())
		}
	})
}

func TestLedgerService_TransferPublishesAfterCommit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.signup(t, "a@kisanpay.test", model.RoleBuyer, 100)
	b := env.signup(t, "b@kisanpay.test", model.RoleBuyer, 0)

	_, err := env.ledger.Transfer(ctx, model.TransferRequest{SenderID: a.ID, TransferTo: *b.AccNo, Amount: decimal.NewFromInt(500)})
	require.Error(t, err)
	assert.Empty(t, env.events.Events())

	txn, err := env.ledger.Transfer(ctx, model.TransferRequest{SenderID: a.ID, TransferTo: *b.AccNo, Amount: decimal.NewFromInt(40)})
	require.NoError(t, err)

	events := env.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, txn.ID, events[0].TransactionID)
	assert.Equal(t, a.ID, events[0].SenderID)
	assert.Equal(t, b.ID, events[0].ReceiverID)

	t.Run("publish failure keeps the committed transfer", func(t *testing.T) {
		env.events.err = errors.New("redis down")
		_, err := env.ledger.Transfer(ctx, model.TransferRequest{SenderID: a.ID, TransferTo: *b.AccNo, Amount: decimal.NewFromInt(10)})
		require.NoError(t, err)
		requireMoney(t, 50, env.balance(t, a.ID))
	})
}

func TestLedgerService_Accounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("signup opens an account", func(t *testing.T) {
		p, err := env.ledger.Signup(ctx, model.SignupRequest{Name: "Ravi", Email: "ravi@kisanpay.test", Role: "seller"})
		require.NoError(t, err)
		require.NotNil(t, p.AccNo)
		assert.Equal(t, model.RoleSeller, p.Role)

		profile, err := env.ledger.GetProfile(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, *p.AccNo, *profile.AccNo)

		_, err = env.ledger.CreateAccount(ctx, p.ID)
		assert.ErrorIs(t, err, ErrAccountAlreadyExists)
	})

	t.Run("signup validation", func(t *testing.T) {
		_, err := env.ledger.Signup(ctx, model.SignupRequest{Name: "X", Email: "x@kisanpay.test", Role: "manager"})
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = env.ledger.Signup(ctx, model.SignupRequest{Name: "Dup", Email: "ravi@kisanpay.test", Role: "buyer"})
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})

	t.Run("create account for customer without one", func(t *testing.T) {
		c, err := env.customers.Create(ctx, &model.Customer{Name: "Noacc", Email: "noacc@kisanpay.test", Role: model.RoleBuyer})
		require.NoError(t, err)

		_, err = env.ledger.GetBalance(ctx, c.ID)
		assert.ErrorIs(t, err, ErrAccountNotFound)

		acc, err := env.ledger.CreateAccount(ctx, c.ID)
		require.NoError(t, err)
		assert.True(t, acc.Balance.IsZero())

		_, err = env.ledger.CreateAccount(ctx, 424242)
		assert.ErrorIs(t, err, ErrCustomerNotFound)
	})

	t.Run("add money", func(t *testing.T) {
		p := env.signup(t, "topup@kisanpay.test", model.RoleBuyer, 0)
		before := env.transactionCount(t)

		acc, err := env.ledger.AddMoney(ctx, p.ID, decimal.NewFromInt(250))
		require.NoError(t, err)
		requireMoney(t, 250, acc.Balance)
		assert.Equal(t, before, env.transactionCount(t))

		_, err = env.ledger.AddMoney(ctx, p.ID, decimal.Zero)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = env.ledger.AddMoney(ctx, 424242, decimal.NewFromInt(1))
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("transactions list covers both sides", func(t *testing.T) {
		a := env.signup(t, "la@kisanpay.test", model.RoleBuyer, 100)
		b := env.signup(t, "lb@kisanpay.test", model.RoleBuyer, 100)

		_, err := env.ledger.Transfer(ctx, model.TransferRequest{SenderID: a.ID, TransferTo: *b.AccNo, Amount: decimal.NewFromInt(10)})
		require.NoError(t, err)
		_, err = env.ledger.Transfer(ctx, model.TransferRequest{SenderID: b.ID, TransferTo: *a.AccNo, Amount: decimal.NewFromInt(5)})
		require.NoError(t, err)

		txns, err := env.ledger.ListTransactions(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, txns, 2)
		assert.Equal(t, b.ID, txns[0].SenderID)

		_, err = env.ledger.ListTransactions(ctx, 424242)
		assert.ErrorIs(t, err, ErrCustomerNotFound)

		all, err := env.ledger.ListAllTransactions(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(all), 2)

		customers, err := env.ledger.ListCustomers(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, customers)
	})
}
