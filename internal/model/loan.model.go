package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanStatus string

const (
	LoanPending  LoanStatus = "pending"
	LoanApproved LoanStatus = "approved"
	LoanRejected LoanStatus = "rejected"
)

type Loan struct {
	ID                int64           `json:"loan_id"`
	AccNo             int64           `json:"acc_no"`
	ManagerID         *int64          `json:"manager_id,omitempty"`
	LoanAmt           decimal.Decimal `json:"loan_amt"`
	StartDate         time.Time       `json:"start_date"`
	DueDate           *time.Time      `json:"due_date,omitempty"`
	Status            LoanStatus      `json:"status"`
	TotalRepaid       decimal.Decimal `json:"total_repaid"`
	LastRepaymentDate *time.Time      `json:"last_repayment_date,omitempty"`
}

// Outstanding is the part of the loan not yet repaid.
func (l *Loan) Outstanding() decimal.Decimal {
	return l.LoanAmt.Sub(l.TotalRepaid)
}

type LoanApplication struct {
	AccNo   int64           `json:"acc_no"`
	LoanAmt decimal.Decimal `json:"loan_amt"`
	DueDate *time.Time      `json:"due_date"`
}

// Manager is a back-office employee allowed to decide loans.
type Manager struct {
	ID        int64     `json:"manager_id"`
	FirstName string    `json:"f_name"`
	LastName  string    `json:"l_name"`
	CreatedAt time.Time `json:"created_at"`
}
