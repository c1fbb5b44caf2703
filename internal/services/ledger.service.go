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

// LedgerService owns customers, their accounts and peer to peer transfers.
type LedgerService struct {
	uow          UnitOfWork
	customers    CustomerStore
	accounts     AccountStore
	transactions TransactionStore
	events       EventPublisher
	now          func() time.Time
}

func NewLedgerService(uow UnitOfWork, customers CustomerStore, accounts AccountStore, transactions TransactionStore, events EventPublisher) *LedgerService {
	return &LedgerService{
		uow:          uow,
		customers:    customers,
		accounts:     accounts,
		transactions: transactions,
		events:       events,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Transfer moves req.Amount from the sender's account to the account numbered
// req.TransferTo and records one transaction. Either all three writes commit
// or none do. Transfers to one's own account are allowed.
func (s *LedgerService) Transfer(ctx context.Context, req model.TransferRequest) (_ *model.Transaction, err error) {
	defer observe(opTransfer, time.Now(), &err, "sender_id", req.SenderID, "transfer_to", req.TransferTo)

	var created *model.Transaction
	err = s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		sender, err := s.accounts.GetByCustomerID(ctx, req.SenderID)
		if err != nil {
			return notFoundAs(err, repository.ErrAccountNotFound, ErrSenderAccountNotFound)
		}

		receiver, err := s.accounts.GetByNumber(ctx, req.TransferTo)
		if err != nil {
			return notFoundAs(err, repository.ErrAccountNotFound, ErrReceiverAccountNotFound)
		}

		if !validMoney(req.Amount) {
			return ErrInvalidAmount
		}

		if err := s.accounts.LockInOrder(ctx, sender.AccNo, receiver.AccNo); err != nil {
			return internalError("lock accounts", err)
		}

		if err := s.accounts.Debit(ctx, sender.AccNo, req.Amount); err != nil {
			switch {
			case errors.Is(err, repository.ErrInsufficientBalance):
				return ErrInsufficientBalance
			case errors.Is(err, repository.ErrAccountNotFound):
				return ErrSenderAccountNotFound
			}
			return internalError("debit sender", err)
		}

		if err := s.accounts.Credit(ctx, receiver.AccNo, req.Amount); err != nil {
			return notFoundAs(err, repository.ErrAccountNotFound, ErrReceiverAccountNotFound)
		}

		created, err = s.transactions.Create(ctx, &model.Transaction{
			Kind:       model.KindTransfer,
			AccNo:      sender.AccNo,
			TransferTo: receiver.AccNo,
			Amount:     req.Amount,
			SenderID:   sender.CustomerID,
			ReceiverID: receiver.CustomerID,
			DateTime:   s.now(),
		})
		if err != nil {
			return internalError("record transfer", err)
		}
		return nil
	})
	if err != nil {
		return nil, asServiceError("transfer", err)
	}

	publishAfterCommit(ctx, s.events, created)
	return created, nil
}

// Signup registers a Buyer or Seller and opens their account in one transaction.
func (s *LedgerService) Signup(ctx context.Context, req model.SignupRequest) (*model.Profile, error) {
	role, ok := model.ParseRole(req.Role)
	if !ok || strings.TrimSpace(req.Name) == "" || !strings.Contains(req.Email, "@") {
		return nil, ErrInvalidInput
	}

	var profile *model.Profile
	err := s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		customer, err := s.customers.Create(ctx, &model.Customer{
			Name:        strings.TrimSpace(req.Name),
			Email:       strings.TrimSpace(req.Email),
			Phone:       req.Phone,
			Address:     req.Address,
			DateOfBirth: req.DateOfBirth,
			Role:        role,
		})
		if err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				return ErrEmailAlreadyExists
			}
			return internalError("create customer", err)
		}

		account, err := s.accounts.Create(ctx, customer.ID)
		if err != nil {
			return internalError("open account", err)
		}

		profile = &model.Profile{Customer: *customer, AccNo: &account.AccNo}
		return nil
	})
	if err != nil {
		return nil, asServiceError("signup", err)
	}

	logger.Info("customer signed up", "customer_id", profile.ID, "role", profile.Role, "acc_no", *profile.AccNo)
	return profile, nil
}

// CreateAccount opens an account for an existing customer that has none.
func (s *LedgerService) CreateAccount(ctx context.Context, customerID int64) (*model.Account, error) {
	var account *model.Account
	err := s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.customers.GetByID(ctx, customerID); err != nil {
			return notFoundAs(err, repository.ErrCustomerNotFound, ErrCustomerNotFound)
		}

		var err error
		account, err = s.accounts.Create(ctx, customerID)
		if err != nil {
			if errors.Is(err, repository.ErrAccountExists) {
				return ErrAccountAlreadyExists
			}
			return internalError("open account", err)
		}
		return nil
	})
	if err != nil {
		return nil, asServiceError("create account", err)
	}
	return account, nil
}

func (s *LedgerService) GetBalance(ctx context.Context, customerID int64) (*model.Account, error) {
	account, err := s.accounts.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, notFoundAs(err, repository.ErrAccountNotFound, ErrAccountNotFound)
	}
	return account, nil
}

func (s *LedgerService) GetProfile(ctx context.Context, customerID int64) (*model.Profile, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, notFoundAs(err, repository.ErrCustomerNotFound, ErrCustomerNotFound)
	}

	profile := &model.Profile{Customer: *customer}
	account, err := s.accounts.GetByCustomerID(ctx, customerID)
	switch {
	case err == nil:
		profile.AccNo = &account.AccNo
	case !errors.Is(err, repository.ErrAccountNotFound):
		return nil, internalError("get account", err)
	}
	return profile, nil
}

// ListTransactions returns every movement the customer sent or received, newest first.
func (s *LedgerService) ListTransactions(ctx context.Context, customerID int64) ([]*model.Transaction, error) {
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return nil, notFoundAs(err, repository.ErrCustomerNotFound, ErrCustomerNotFound)
	}
	txns, err := s.transactions.List(ctx, repository.TransactionFilter{CustomerID: &customerID})
	if err != nil {
		return nil, internalError("list transactions", err)
	}
	return txns, nil
}

func (s *LedgerService) ListAllTransactions(ctx context.Context) ([]*model.Transaction, error) {
	txns, err := s.transactions.List(ctx, repository.TransactionFilter{})
	if err != nil {
		return nil, internalError("list transactions", err)
	}
	return txns, nil
}

func (s *LedgerService) ListCustomers(ctx context.Context) ([]*model.Customer, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, internalError("list customers", err)
	}
	return customers, nil
}

// AddMoney credits a customer's account. It is an administrative top-up and
// writes no transaction record.
func (s *LedgerService) AddMoney(ctx context.Context, customerID int64, amount decimal.Decimal) (_ *model.Account, err error) {
	defer observe(opDeposit, time.Now(), &err, "customer_id", customerID)

	if !validMoney(amount) {
		return nil, ErrInvalidAmount
	}

	account, err := s.accounts.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, notFoundAs(err, repository.ErrAccountNotFound, ErrAccountNotFound)
	}

	updated, err := s.accounts.Deposit(ctx, account.AccNo, amount)
	if err != nil {
		return nil, notFoundAs(err, repository.ErrAccountNotFound, ErrAccountNotFound)
	}
	return updated, nil
}

// notFoundAs maps the repository's not-found sentinel to the given service error
// and classifies every other failure as internal.
func notFoundAs(err, sentinel error, mapped *Error) error {
	if errors.Is(err, sentinel) {
		return mapped
	}
	return internalError(mapped.Code, err)
}

func publishAfterCommit(ctx context.Context, events EventPublisher, txn *model.Transaction) {
	if events == nil || txn == nil {
		return
	}
	if err := events.PublishLedgerEvent(context.WithoutCancel(ctx), model.NewLedgerEvent(txn)); err != nil {
		logger.Error("failed to publish ledger event", "transaction_id", txn.ID, "reference", txn.Reference, "error", err)
	}
}
