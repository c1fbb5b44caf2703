package services

import (
	"context"
	"sync"
	"testing"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/kisanpay/kisanpay/internal/repository"
	"github.com/kisanpay/kisanpay/pkg/pg"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*model.LedgerEvent
	err    error
}

func (p *recordingPublisher) PublishLedgerEvent(_ context.Context, e *model.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Events() []*model.LedgerEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*model.LedgerEvent(nil), p.events...)
}

type testEnv struct {
	db           *pg.DB
	events       *recordingPublisher
	customers    *repository.CustomerRepository
	accounts     *repository.AccountRepository
	transactions *repository.TransactionRepository
	products     *repository.ProductRepository
	inventory    *repository.InventoryRepository
	orders       *repository.OrderRepository
	loans        *repository.LoanRepository
	managers     *repository.ManagerRepository
	ledger       *LedgerService
	market       *MarketplaceService
	loanSvc      *LoanService
}

func newTestEnv(t *testing.T) *testEnv {
	db := repository.NewTestDB(t)
	env := &testEnv{
		db:           db,
		events:       &recordingPublisher{},
		customers:    repository.NewCustomerRepository(db),
		accounts:     repository.NewAccountRepository(db),
		transactions: repository.NewTransactionRepository(db),
		products:     repository.NewProductRepository(db),
		inventory:    repository.NewInventoryRepository(db),
		orders:       repository.NewOrderRepository(db),
		loans:        repository.NewLoanRepository(db),
		managers:     repository.NewManagerRepository(db),
	}
	env.ledger = NewLedgerService(db, env.customers, env.accounts, env.transactions, env.events)
	env.market = NewMarketplaceService(MarketplaceDeps{
		UnitOfWork:   db,
		Customers:    env.customers,
		Accounts:     env.accounts,
		Transactions: env.transactions,
		Products:     env.products,
		Inventory:    env.inventory,
		Orders:       env.orders,
		Events:       env.events,
	})
	env.loanSvc = NewLoanService(db, env.loans, env.accounts, env.managers)
	return env
}

// signup registers a customer with an account funded with balance.
func (e *testEnv) signup(t *testing.T, email string, role model.Role, balance int64) *model.Profile {
	t.Helper()
	ctx := context.Background()
	p, err := e.ledger.Signup(ctx, model.SignupRequest{Name: email, Email: email, Role: string(role)})
	require.NoError(t, err)
	if balance > 0 {
		_, err = e.ledger.AddMoney(ctx, p.ID, decimal.NewFromInt(balance))
		require.NoError(t, err)
	}
	return p
}

func (e *testEnv) balance(t *testing.T, customerID int64) decimal.Decimal {
	t.Helper()
	acc, err := e.ledger.GetBalance(context.Background(), customerID)
	require.NoError(t, err)
	return acc.Balance
}

func (e *testEnv) transactionCount(t *testing.T) int64 {
	t.Helper()
	n, err := e.transactions.Count(context.Background())
	require.NoError(t, err)
	return n
}

func (e *testEnv) stock(t *testing.T, sellerID int64, product string, qty int64, price int64) *model.InventoryItem {
	t.Helper()
	ctx := context.Background()
	if _, err := e.products.GetByName(ctx, product); err != nil {
		_, err = e.market.AddProduct(ctx, model.Product{Name: product, BasePrice: decimal.NewFromInt(price)})
		require.NoError(t, err)
	}
	item, err := e.market.StockInventory(ctx, model.StockRequest{
		SellerID: sellerID, ProductName: product, Quantity: qty, Price: decimal.NewFromInt(price),
	})
	require.NoError(t, err)
	return item
}

func requireMoney(t *testing.T, expected int64, actual decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.NewFromInt(expected).Equal(actual), "expected %d, got %s", expected, actual)
}
