package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/kisanpay/kisanpay/internal/repository"
	"github.com/kisanpay/kisanpay/pkg/logger"
	"github.com/shopspring/decimal"
)

type LoanService struct {
	uow      UnitOfWork
	loans    LoanStore
	accounts AccountStore
	managers ManagerStore
	now      func() time.Time
}

func NewLoanService(uow UnitOfWork, loans LoanStore, accounts AccountStore, managers ManagerStore) *LoanService {
	return &LoanService{
		uow:      uow,
		loans:    loans,
		accounts: accounts,
		managers: managers,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *LoanService) today() time.Time {
	n := s.now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// Apply files a pending loan against an account.
func (s *LoanService) Apply(ctx context.Context, app model.LoanApplication) (*model.Loan, error) {
	if _, err := s.accounts.GetByNumber(ctx, app.AccNo); err != nil {
		return nil, notFoundAs(err, repository.ErrAccountNotFound, ErrAccountNotFound)
	}
	if !validMoney(app.LoanAmt) {
		return nil, ErrInvalidAmount
	}

	start := s.today()
	if app.DueDate != nil && app.DueDate.Before(start) {
		return nil, ErrInvalidInput
	}

	loan, err := s.loans.Create(ctx, &model.Loan{
		AccNo:       app.AccNo,
		LoanAmt:     app.LoanAmt,
		StartDate:   start,
		DueDate:     app.DueDate,
		Status:      model.LoanPending,
		TotalRepaid: decimal.Zero,
	})
	if err != nil {
		return nil, internalError("create loan", err)
	}

	logger.Info("loan application filed", "loan_id", loan.ID, "acc_no", loan.AccNo, "loan_amt", loan.LoanAmt.String())
	return loan, nil
}

func (s *LoanService) Get(ctx context.Context, id int64) (*model.Loan, error) {
	loan, err := s.loans.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, repository.ErrLoanNotFound, ErrLoanNotFound)
	}
	return loan, nil
}

func (s *LoanService) ListByAccount(ctx context.Context, accNo int64) ([]*model.Loan, error) {
	if _, err := s.accounts.GetByNumber(ctx, accNo); err != nil {
		return nil, notFoundAs(err, repository.ErrAccountNotFound, ErrAccountNotFound)
	}
	loans, err := s.loans.List(ctx, accNo)
	if err != nil {
		return nil, internalError("list loans", err)
	}
	return loans, nil
}

func (s *LoanService) ListAll(ctx context.Context) ([]*model.Loan, error) {
	loans, err := s.loans.List(ctx, 0)
	if err != nil {
		return nil, internalError("list loans", err)
	}
	return loans, nil
}

// Repay adds amount to the loan's total_repaid and stamps today's date. The
// amount must be positive and no more than what is still outstanding. No
// account is debited; repayment is a standalone adjustment of the loan.
func (s *LoanService) Repay(ctx context.Context, loanID int64, amount decimal.Decimal) (_ *model.Loan, err error) {
	defer observe(opRepay, time.Now(), &err, "loan_id", loanID, "amount", amount.String())

	var updated *model.Loan
	err = s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		loan, err := s.loans.GetByID(ctx, loanID)
		if err != nil {
			return notFoundAs(err, repository.ErrLoanNotFound, ErrLoanNotFound)
		}

		if !validMoney(amount) || amount.GreaterThan(loan.Outstanding()) {
			return ErrInvalidRepaymentAmount
		}

		if err := s.loans.ApplyRepayment(ctx, loanID, amount, s.today()); err != nil {
			switch {
			case errors.Is(err, repository.ErrRepaymentExceedsLoan):
				return ErrInvalidRepaymentAmount
			case errors.Is(err, repository.ErrLoanNotFound):
				return ErrLoanNotFound
			}
			return internalError("apply repayment", err)
		}

		updated, err = s.loans.GetByID(ctx, loanID)
		if err != nil {
			return internalError("reload loan", err)
		}
		return nil
	})
	if err != nil {
		return nil, asServiceError("repay loan", err)
	}
	return updated, nil
}

// RegisterManager adds a back-office employee who may decide loans.
func (s *LoanService) RegisterManager(ctx context.Context, m model.Manager) (*model.Manager, error) {
	m.FirstName = strings.TrimSpace(m.FirstName)
	m.LastName = strings.TrimSpace(m.LastName)
	if m.FirstName == "" {
		return nil, ErrInvalidInput
	}

	created, err := s.managers.Create(ctx, &m)
	if err != nil {
		return nil, internalError("create manager", err)
	}
	logger.Info("manager registered", "manager_id", created.ID)
	return created, nil
}

func (s *LoanService) ListManagers(ctx context.Context) ([]*model.Manager, error) {
	managers, err := s.managers.List(ctx)
	if err != nil {
		return nil, internalError("list managers", err)
	}
	return managers, nil
}

// SetStatus approves or rejects a pending loan on behalf of a manager. A
// manager id, when given, must name a registered manager.
func (s *LoanService) SetStatus(ctx context.Context, loanID int64, status model.LoanStatus, managerID *int64) (*model.Loan, error) {
	if status != model.LoanApproved && status != model.LoanRejected {
		return nil, ErrInvalidInput
	}

	var updated *model.Loan
	err := s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		if managerID != nil {
			if _, err := s.managers.GetByID(ctx, *managerID); err != nil {
				return notFoundAs(err, repository.ErrManagerNotFound, ErrManagerNotFound)
			}
		}

		err := s.loans.SetStatus(ctx, loanID, model.LoanPending, status, managerID)
		switch {
		case errors.Is(err, repository.ErrLoanStatusChanged):
			return ErrInvalidLoanTransition
		case errors.Is(err, repository.ErrLoanNotFound):
			return ErrLoanNotFound
		case err != nil:
			return internalError("set loan status", err)
		}

		updated, err = s.loans.GetByID(ctx, loanID)
		if err != nil {
			return internalError("reload loan", err)
		}
		return nil
	})
	if err != nil {
		return nil, asServiceError("set loan status", err)
	}

	logger.Info("loan status changed", "loan_id", loanID, "status", status)
	return updated, nil
}
