package services

import (
	"context"
	"testing"
	"time"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoanService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fixed := time.Date(2024, 3, 10, 15, 4, 5, 0, time.UTC)
	env.loanSvc.now = func() time.Time { return fixed }

	farmer := env.signup(t, "farmer@kisanpay.test", model.RoleSeller, 50)
	due := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	newLoan := func(t *testing.T, amt int64) *model.Loan {
		t.Helper()
		loan, err := env.loanSvc.Apply(ctx, model.LoanApplication{AccNo: *farmer.AccNo, LoanAmt: decimal.NewFromInt(amt), DueDate: &due})
		require.NoError(t, err)
		return loan
	}

	t.Run("apply files a pending loan", func(t *testing.T) {
		loan := newLoan(t, 1000)
		assert.Equal(t, model.LoanPending, loan.Status)
		assert.True(t, loan.TotalRepaid.IsZero())
		assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), loan.StartDate.UTC())

		_, err := env.loanSvc.Apply(ctx, model.LoanApplication{AccNo: 1, LoanAmt: decimal.NewFromInt(10)})
		assert.ErrorIs(t, err, ErrAccountNotFound)

		_, err = env.loanSvc.Apply(ctx, model.LoanApplication{AccNo: *farmer.AccNo, LoanAmt: decimal.NewFromInt(-10)})
		assert.ErrorIs(t, err, ErrInvalidAmount)

		past := fixed.AddDate(0, 0, -1)
		_, err = env.loanSvc.Apply(ctx, model.LoanApplication{AccNo: *farmer.AccNo, LoanAmt: decimal.NewFromInt(10), DueDate: &past})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("repayments accumulate up to the loan amount", func(t *testing.T) {
		loan := newLoan(t, 1000)

		repaid, err := env.loanSvc.Repay(ctx, loan.ID, decimal.NewFromInt(400))
		require.NoError(t, err)
		requireMoney(t, 400, repaid.TotalRepaid)
		require.NotNil(t, repaid.LastRepaymentDate)
		assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), repaid.LastRepaymentDate.UTC())

		_, err = env.loanSvc.Repay(ctx, loan.ID, decimal.NewFromInt(700))
		assert.ErrorIs(t, err, ErrInvalidRepaymentAmount)
		assert.Equal(t, KindValidation, KindOf(err))

		after, err := env.loanSvc.Get(ctx, loan.ID)
		require.NoError(t, err)
		requireMoney(t, 400, after.TotalRepaid)

		repaid, err = env.loanSvc.Repay(ctx, loan.ID, decimal.NewFromInt(600))
		require.NoError(t, err)
		requireMoney(t, 1000, repaid.TotalRepaid)
		assert.True(t, repaid.Outstanding().IsZero())

		requireMoney(t, 50, env.balance(t, farmer.ID))
	})

	t.Run("repay rejects bad amounts and unknown loans", func(t *testing.T) {
		loan := newLoan(t, 100)

		_, err := env.loanSvc.Repay(ctx, loan.ID, decimal.Zero)
		assert.ErrorIs(t, err, ErrInvalidRepaymentAmount)
		_, err = env.loanSvc.Repay(ctx, loan.ID, decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, ErrInvalidRepaymentAmount)

		_, err = env.loanSvc.Repay(ctx, 999999, decimal.NewFromInt(1))
		assert.ErrorIs(t, err, ErrLoanNotFound)
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("status transitions", func(t *testing.T) {
		loan := newLoan(t, 100)
		m, err := env.loanSvc.RegisterManager(ctx, model.Manager{FirstName: " Meena ", LastName: "Rao"})
		require.NoError(t, err)
		assert.Equal(t, "Meena", m.FirstName)
		manager := m.ID

		approved, err := env.loanSvc.SetStatus(ctx, loan.ID, model.LoanApproved, &manager)
		require.NoError(t, err)
		assert.Equal(t, model.LoanApproved, approved.Status)
		require.NotNil(t, approved.ManagerID)
		assert.Equal(t, manager, *approved.ManagerID)

		_, err = env.loanSvc.SetStatus(ctx, loan.ID, model.LoanRejected, &manager)
		assert.ErrorIs(t, err, ErrInvalidLoanTransition)

		_, err = env.loanSvc.SetStatus(ctx, loan.ID, model.LoanPending, &manager)
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = env.loanSvc.SetStatus(ctx, 999999, model.LoanApproved, nil)
		assert.ErrorIs(t, err, ErrLoanNotFound)
	})

	t.Run("unknown manager leaves the loan pending", func(t *testing.T) {
		loan := newLoan(t, 100)
		ghost := int64(424242)

		_, err := env.loanSvc.SetStatus(ctx, loan.ID, model.LoanApproved, &ghost)
		assert.ErrorIs(t, err, ErrManagerNotFound)
		assert.Equal(t, KindNotFound, KindOf(err))

		after, err := env.loanSvc.Get(ctx, loan.ID)
		require.NoError(t, err)
		assert.Equal(t, model.LoanPending, after.Status)
		assert.Nil(t, after.ManagerID)

		_, err = env.loanSvc.RegisterManager(ctx, model.Manager{FirstName: "  "})
		assert.ErrorIs(t, err, ErrInvalidInput)

		managers, err := env.loanSvc.ListManagers(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, managers)
	})

	t.Run("listing", func(t *testing.T) {
		loans, err := env.loanSvc.ListByAccount(ctx, *farmer.AccNo)
		require.NoError(t, err)
		assert.Len(t, loans, 5)

		all, err := env.loanSvc.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 5)

		_, err = env.loanSvc.ListByAccount(ctx, 1)
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}
