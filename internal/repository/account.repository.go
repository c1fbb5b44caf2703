package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/kisanpay/kisanpay/pkg/pg"
	pkgerrors "github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	accountNumberMin      = 100_000_000_000
	accountNumberSpan     = 900_000_000_000
	accountNumberAttempts = 5
)

type AccountRepository struct {
	*pg.DB
	// NumberFunc generates candidate account numbers. Tests replace it.
	NumberFunc func() int64
}

func NewAccountRepository(db *pg.DB) *AccountRepository {
	return &AccountRepository{
		DB:         db,
		NumberFunc: randomAccountNumber,
	}
}

func randomAccountNumber() int64 {
	return accountNumberMin + rand.Int64N(accountNumberSpan)
}

// Create opens a zero-balance account with a fresh 12-digit number for the
// customer. The insert skips on any unique conflict; an empty insert is then
// either the customer's existing account or a taken number, which is retried.
func (r *AccountRepository) Create(ctx context.Context, customerID int64) (*model.Account, error) {
	for attempt := 0; attempt < accountNumberAttempts; attempt++ {
		entity := &AccountEntity{
			AccNo:      r.NumberFunc(),
			CustomerID: customerID,
			Balance:    decimal.Zero,
		}
		result := r.Write(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(entity)
		if result.Error != nil {
			return nil, pkgerrors.Wrap(result.Error, "create account")
		}
		if result.RowsAffected == 1 {
			return toAccountModel(entity), nil
		}

		var held int64
		err := r.Write(ctx).
			Model(&AccountEntity{}).
			Where("customer_id = ?", customerID).
			Count(&held).
			Error
		if err != nil {
			return nil, pkgerrors.Wrap(err, "check existing account")
		}
		if held > 0 {
			return nil, ErrAccountExists
		}
	}

	return nil, ErrAccountNumberExhausted
}

func (r *AccountRepository) GetByCustomerID(ctx context.Context, customerID int64) (*model.Account, error) {
	return r.first(ctx, "customer_id = ?", customerID)
}

func (r *AccountRepository) GetByNumber(ctx context.Context, accNo int64) (*model.Account, error) {
	return r.first(ctx, "acc_no = ?", accNo)
}

func (r *AccountRepository) first(ctx context.Context, query string, arg int64) (*model.Account, error) {
	var entity AccountEntity
	err := r.Read(ctx).
		Where(query, arg).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, pkgerrors.Wrap(err, "get account")
	}
	return toAccountModel(&entity), nil
}

// LockInOrder row-locks both accounts, lower account number first. Movements
// touching two accounts lock through here so that opposite transfers between
// the same pair queue behind each other instead of deadlocking.
func (r *AccountRepository) LockInOrder(ctx context.Context, a, b int64) error {
	if a > b {
		a, b = b, a
	}
	for _, accNo := range lo.Uniq([]int64{a, b}) {
		var entity AccountEntity
		err := r.Write(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("acc_no").
			Where("acc_no = ?", accNo).
			First(&entity).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return pkgerrors.Wrap(err, "lock account")
		}
	}
	return nil
}

// Debit subtracts amount from the account in one conditional statement, so the
// balance check and the write cannot be separated by a concurrent debit.
func (r *AccountRepository) Debit(ctx context.Context, accNo int64, amount decimal.Decimal) error {
	result := r.Write(ctx).
		Model(&AccountEntity{}).
		Where("acc_no = ? AND balance >= ?", accNo, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if result.Error != nil {
		return pkgerrors.Wrap(result.Error, "debit account")
	}

	if result.RowsAffected == 0 {
		return r.checkDebitFailureReason(ctx, accNo, amount)
	}
	return nil
}

// checkDebitFailureReason determines why the conditional debit matched no row.
func (r *AccountRepository) checkDebitFailureReason(ctx context.Context, accNo int64, amount decimal.Decimal) error {
	var entity AccountEntity
	err := r.Read(ctx).
		Where("acc_no = ?", accNo).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return pkgerrors.Wrap(err, "read account")
	}

	if entity.Balance.LessThan(amount) {
		return ErrInsufficientBalance
	}

	return ErrConcurrentUpdate
}

func (r *AccountRepository) Credit(ctx context.Context, accNo int64, amount decimal.Decimal) error {
	result := r.Write(ctx).
		Model(&AccountEntity{}).
		Where("acc_no = ?", accNo).
		Update("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return pkgerrors.Wrap(result.Error, "credit account")
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// Deposit credits an account outside of any ledger operation, retrying transient
// failures with exponential backoff.
func (r *AccountRepository) Deposit(ctx context.Context, accNo int64, amount decimal.Decimal) (*model.Account, error) {
	const maxRetries = 3
	const baseDelay = 2 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		account, err := r.depositAttempt(ctx, accNo, amount)
		if err == nil {
			return account, nil
		}

		if errors.Is(err, ErrAccountNotFound) {
			return nil, err
		}

		if attempt < maxRetries {
			delay := baseDelay * time.Duration(1<<attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
				continue
			}
		}
	}

	return nil, fmt.Errorf("%w: failed after %d attempts", ErrMaxRetriesExceeded, maxRetries+1)
}

func (r *AccountRepository) depositAttempt(ctx context.Context, accNo int64, amount decimal.Decimal) (*model.Account, error) {
	var account *model.Account
	err := r.WithinTransaction(ctx, func(ctx context.Context) error {
		var entity AccountEntity
		err := r.Write(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("acc_no = ?", accNo).
			First(&entity).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return err
		}

		if err := r.Credit(ctx, accNo, amount); err != nil {
			return err
		}

		entity.Balance = entity.Balance.Add(amount)
		account = toAccountModel(&entity)
		return nil
	})
	return account, err
}
