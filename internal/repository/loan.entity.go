package repository

import (
	"time"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type LoanEntity struct {
	ID                int64           `db:"loan_id"             gorm:"primaryKey;autoIncrement;column:loan_id"`
	AccNo             int64           `db:"acc_no"              gorm:"column:acc_no;not null;index"`
	ManagerID         *int64          `db:"manager_id"          gorm:"column:manager_id"`
	LoanAmt           decimal.Decimal `db:"loan_amt"            gorm:"column:loan_amt;type:numeric(14,2);not null"`
	StartDate         time.Time       `db:"start_date"          gorm:"column:start_date;not null"`
	DueDate           *time.Time      `db:"due_date"            gorm:"column:due_date"`
	Status            string          `db:"status"              gorm:"column:status;not null;default:pending"`
	TotalRepaid       decimal.Decimal `db:"total_repaid"        gorm:"column:total_repaid;type:numeric(14,2);not null;default:0;check:chk_loans_repaid,total_repaid <= loan_amt"`
	LastRepaymentDate *time.Time      `db:"last_repayment_date" gorm:"column:last_repayment_date"`
}

func (LoanEntity) TableName() string {
	return "loans"
}

func toLoanEntity(m *model.Loan) *LoanEntity {
	if m == nil {
		return nil
	}
	return &LoanEntity{
		ID:                m.ID,
		AccNo:             m.AccNo,
		ManagerID:         m.ManagerID,
		LoanAmt:           m.LoanAmt,
		StartDate:         m.StartDate,
		DueDate:           m.DueDate,
		Status:            string(m.Status),
		TotalRepaid:       m.TotalRepaid,
		LastRepaymentDate: m.LastRepaymentDate,
	}
}

func toLoanModel(e *LoanEntity) *model.Loan {
	if e == nil {
		return nil
	}
	return &model.Loan{
		ID:                e.ID,
		AccNo:             e.AccNo,
		ManagerID:         e.ManagerID,
		LoanAmt:           e.LoanAmt,
		StartDate:         e.StartDate,
		DueDate:           e.DueDate,
		Status:            model.LoanStatus(e.Status),
		TotalRepaid:       e.TotalRepaid,
		LastRepaymentDate: e.LastRepaymentDate,
	}
}

func toLoanModels(entities []*LoanEntity) []*model.Loan {
	return lo.Map(entities, func(e *LoanEntity, _ int) *model.Loan {
		return toLoanModel(e)
	})
}
