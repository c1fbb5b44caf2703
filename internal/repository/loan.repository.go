package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/kisanpay/kisanpay/pkg/pg"
	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LoanRepository struct {
	*pg.DB
}

func NewLoanRepository(db *pg.DB) *LoanRepository {
	return &LoanRepository{
		db,
	}
}

func (r *LoanRepository) Create(ctx context.Context, loan *model.Loan) (*model.Loan, error) {
	entity := toLoanEntity(loan)
	if entity.Status == "" {
		entity.Status = string(model.LoanPending)
	}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "create loan")
	}
	return toLoanModel(entity), nil
}

func (r *LoanRepository) GetByID(ctx context.Context, id int64) (*model.Loan, error) {
	var entity LoanEntity
	err := r.Read(ctx).Where("loan_id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, pkgerrors.Wrap(err, "get loan")
	}
	return toLoanModel(&entity), nil
}

// List returns loans ordered by id; accNo of zero lists every loan.
func (r *LoanRepository) List(ctx context.Context, accNo int64) ([]*model.Loan, error) {
	q := r.Read(ctx).Model(&LoanEntity{})
	if accNo != 0 {
		q = q.Where("acc_no = ?", accNo)
	}
	var entities []*LoanEntity
	if err := q.Order("loan_id ASC").Find(&entities).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "list loans")
	}
	return toLoanModels(entities), nil
}

// ApplyRepayment adds amount to total_repaid unless that would exceed loan_amt.
// The bound is part of the UPDATE so concurrent repayments cannot overshoot.
func (r *LoanRepository) ApplyRepayment(ctx context.Context, id int64, amount decimal.Decimal, on time.Time) error {
	result := r.Write(ctx).
		Model(&LoanEntity{}).
		Where("loan_id = ? AND total_repaid + ? <= loan_amt", id, amount).
		Updates(map[string]any{
			"total_repaid":        gorm.Expr("total_repaid + ?", amount),
			"last_repayment_date": on,
		})
	if result.Error != nil {
		return pkgerrors.Wrap(result.Error, "apply repayment")
	}

	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrRepaymentExceedsLoan
	}
	return nil
}

// SetStatus moves a loan from one status to another, recording the deciding
// manager. It fails with ErrLoanStatusChanged when the loan is not in from.
func (r *LoanRepository) SetStatus(ctx context.Context, id int64, from, to model.LoanStatus, managerID *int64) error {
	updates := map[string]any{"status": string(to)}
	if managerID != nil {
		updates["manager_id"] = *managerID
	}

	result := r.Write(ctx).
		Model(&LoanEntity{}).
		Where("loan_id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if result.Error != nil {
		return pkgerrors.Wrap(result.Error, "set loan status")
	}

	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrLoanStatusChanged
	}
	return nil
}
