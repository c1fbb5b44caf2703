package services

import (
	"context"
	"time"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/kisanpay/kisanpay/internal/repository"
	"github.com/shopspring/decimal"
)

// UnitOfWork runs fn in one database transaction. Stores called with the ctx
// handed to fn take part in that transaction.
type UnitOfWork interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type CustomerStore interface {
	Create(ctx context.Context, c *model.Customer) (*model.Customer, error)
	GetByID(ctx context.Context, id int64) (*model.Customer, error)
	List(ctx context.Context) ([]*model.Customer, error)
}

type AccountStore interface {
	Create(ctx context.Context, customerID int64) (*model.Account, error)
	GetByCustomerID(ctx context.Context, customerID int64) (*model.Account, error)
	GetByNumber(ctx context.Context, accNo int64) (*model.Account, error)
	LockInOrder(ctx context.Context, a, b int64) error
	Debit(ctx context.Context, accNo int64, amount decimal.Decimal) error
	Credit(ctx context.Context, accNo int64, amount decimal.Decimal) error
	Deposit(ctx context.Context, accNo int64, amount decimal.Decimal) (*model.Account, error)
}

type TransactionStore interface {
	Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
	List(ctx context.Context, f repository.TransactionFilter) ([]*model.Transaction, error)
}

type ProductStore interface {
	Create(ctx context.Context, p *model.Product) (*model.Product, error)
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetByName(ctx context.Context, name string) (*model.Product, error)
	List(ctx context.Context) ([]*model.Product, error)
}

type InventoryStore interface {
	GetByID(ctx context.Context, id int64) (*model.InventoryItem, error)
	Decrement(ctx context.Context, id int64, quantity int64) error
	Upsert(ctx context.Context, item *model.InventoryItem) (*model.InventoryItem, error)
	List(ctx context.Context, f repository.InventoryFilter) ([]*model.InventoryItem, error)
}

type OrderStore interface {
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	List(ctx context.Context, f repository.OrderFilter) ([]*model.Order, error)
}

type LoanStore interface {
	Create(ctx context.Context, loan *model.Loan) (*model.Loan, error)
	GetByID(ctx context.Context, id int64) (*model.Loan, error)
	List(ctx context.Context, accNo int64) ([]*model.Loan, error)
	ApplyRepayment(ctx context.Context, id int64, amount decimal.Decimal, on time.Time) error
	SetStatus(ctx context.Context, id int64, from, to model.LoanStatus, managerID *int64) error
}

// EventPublisher receives ledger events once the movement has committed.
type ManagerStore interface {
	Create(ctx context.Context, m *model.Manager) (*model.Manager, error)
	GetByID(ctx context.Context, id int64) (*model.Manager, error)
	List(ctx context.Context) ([]*model.Manager, error)
}

type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, e *model.LedgerEvent) error
}

// validMoney reports whether v is positive and has at most two decimal places.
func validMoney(v decimal.Decimal) bool {
	return v.IsPositive() && v.Equal(v.Round(2))
}
