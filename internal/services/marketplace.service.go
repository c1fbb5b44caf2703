package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/kisanpay/kisanpay/internal/repository"
	"github.com/shopspring/decimal"
)

// MarketplaceService covers the product catalog, seller inventory and purchases.
type MarketplaceService struct {
	uow          UnitOfWork
	customers    CustomerStore
	accounts     AccountStore
	transactions TransactionStore
	products     ProductStore
	inventory    InventoryStore
	orders       OrderStore
	events       EventPublisher
	now          func() time.Time
}

type MarketplaceDeps struct {
	UnitOfWork   UnitOfWork
	Customers    CustomerStore
	Accounts     AccountStore
	Transactions TransactionStore
	Products     ProductStore
	Inventory    InventoryStore
	Orders       OrderStore
	Events       EventPublisher
}

func NewMarketplaceService(d MarketplaceDeps) *MarketplaceService {
	return &MarketplaceService{
		uow:          d.UnitOfWork,
		customers:    d.Customers,
		accounts:     d.Accounts,
		transactions: d.Transactions,
		products:     d.Products,
		inventory:    d.Inventory,
		orders:       d.Orders,
		events:       d.Events,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Purchase buys req.Quantity units of an inventory item. The buyer pays
// quantity times the unit price to the seller, stock is decremented and an
// order, its line item and a transaction are recorded, all in one transaction.
// Preconditions are checked in a fixed order and the first failure wins.
func (s *MarketplaceService) Purchase(ctx context.Context, req model.PurchaseRequest) (_ *model.Order, err error) {
	defer observe(opPurchase, time.Now(), &err, "buyer_id", req.BuyerID, "inventory_id", req.InventoryID, "quantity", req.Quantity)

	if req.BuyerID <= 0 || req.InventoryID <= 0 || req.Quantity <= 0 {
		return nil, ErrInvalidInput
	}

	var order *model.Order
	err = s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		buyer, err := s.accounts.GetByCustomerID(ctx, req.BuyerID)
		if err != nil {
			return notFoundAs(err, repository.ErrAccountNotFound, ErrBuyerAccountNotFound)
		}

		item, err := s.inventory.GetByID(ctx, req.InventoryID)
		if err != nil {
			return notFoundAs(err, repository.ErrInventoryNotFound, ErrInventoryItemNotFound)
		}

		if req.Quantity > item.Quantity {
			return ErrInsufficientStock
		}

		total := item.Price.Mul(decimal.NewFromInt(req.Quantity))
		if buyer.Balance.LessThan(total) {
			return ErrInsufficientFunds
		}

		supplier, err := s.accounts.GetByCustomerID(ctx, item.SupplierID)
		if err != nil {
			return notFoundAs(err, repository.ErrAccountNotFound, ErrSupplierAccountNotFound)
		}

		if err := s.accounts.LockInOrder(ctx, buyer.AccNo, supplier.AccNo); err != nil {
			return internalError("lock accounts", err)
		}

		// The reads above may be stale under concurrency; these conditional
		// writes are what actually guard stock and balance.
		if err := s.inventory.Decrement(ctx, item.ID, req.Quantity); err != nil {
			switch {
			case errors.Is(err, repository.ErrInsufficientStock):
				return ErrInsufficientStock
			case errors.Is(err, repository.ErrInventoryNotFound):
				return ErrInventoryItemNotFound
			}
			return internalError("decrement stock", err)
		}

		if err := s.accounts.Debit(ctx, buyer.AccNo, total); err != nil {
			switch {
			case errors.Is(err, repository.ErrInsufficientBalance):
				return ErrInsufficientFunds
			case errors.Is(err, repository.ErrAccountNotFound):
				return ErrBuyerAccountNotFound
			}
			return internalError("debit buyer", err)
		}

		if err := s.accounts.Credit(ctx, supplier.AccNo, total); err != nil {
			return notFoundAs(err, repository.ErrAccountNotFound, ErrSupplierAccountNotFound)
		}

		now := s.now()
		order, err = s.orders.Create(ctx, &model.Order{
			BuyerID:    req.BuyerID,
			TotalPrice: total,
			OrderDate:  now,
			Details: []*model.OrderDetail{{
				BuyerID:     req.BuyerID,
				SupplierID:  item.SupplierID,
				InventoryID: item.ID,
				Quantity:    req.Quantity,
				Price:       item.Price,
				TotalPrice:  total,
			}},
		})
		if err != nil {
			return internalError("record order", err)
		}

		order.Transaction, err = s.transactions.Create(ctx, &model.Transaction{
			Kind:       model.KindPurchase,
			AccNo:      buyer.AccNo,
			TransferTo: supplier.AccNo,
			Amount:     total,
			SenderID:   req.BuyerID,
			ReceiverID: item.SupplierID,
			OrderID:    &order.ID,
			DateTime:   now,
		})
		if err != nil {
			return internalError("record purchase transaction", err)
		}
		return nil
	})
	if err != nil {
		return nil, asServiceError("purchase", err)
	}

	publishAfterCommit(ctx, s.events, order.Transaction)
	return order, nil
}

// StockInventory creates or overwrites the seller's stock of one product.
// The product is looked up by id when given, otherwise by name.
func (s *MarketplaceService) StockInventory(ctx context.Context, req model.StockRequest) (_ *model.InventoryItem, err error) {
	defer observe(opStock, time.Now(), &err, "seller_id", req.SellerID, "product_id", req.ProductID, "product_name", req.ProductName)

	req.ProductName = strings.TrimSpace(req.ProductName)
	if req.SellerID <= 0 || (req.ProductID <= 0 && req.ProductName == "") || req.Quantity <= 0 || !validMoney(req.Price) {
		return nil, ErrInvalidInput
	}

	var item *model.InventoryItem
	err = s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.requireSeller(ctx, req.SellerID); err != nil {
			return err
		}

		var (
			product *model.Product
			err     error
		)
		if req.ProductID > 0 {
			product, err = s.products.GetByID(ctx, req.ProductID)
		} else {
			product, err = s.products.GetByName(ctx, req.ProductName)
		}
		if err != nil {
			return notFoundAs(err, repository.ErrProductNotFound, ErrProductNotFound)
		}

		item, err = s.inventory.Upsert(ctx, &model.InventoryItem{
			SupplierID: req.SellerID,
			ProductID:  product.ID,
			Quantity:   req.Quantity,
			Price:      req.Price,
		})
		if err != nil {
			return internalError("upsert inventory", err)
		}
		item.ProductName = product.Name
		return nil
	})
	if err != nil {
		return nil, asServiceError("stock inventory", err)
	}
	return item, nil
}

func (s *MarketplaceService) requireSeller(ctx context.Context, customerID int64) error {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return notFoundAs(err, repository.ErrCustomerNotFound, ErrCustomerNotFound)
	}
	if customer.Role != model.RoleSeller {
		return ErrNotAuthorized
	}
	return nil
}

func (s *MarketplaceService) ListSellerInventory(ctx context.Context, sellerID int64) ([]*model.InventoryItem, error) {
	if err := s.requireSeller(ctx, sellerID); err != nil {
		return nil, err
	}
	return s.listInventory(ctx, repository.InventoryFilter{SupplierID: &sellerID})
}

// ListAvailableInventory returns the items buyers can currently order.
func (s *MarketplaceService) ListAvailableInventory(ctx context.Context) ([]*model.InventoryItem, error) {
	return s.listInventory(ctx, repository.InventoryFilter{OnlyAvailable: true})
}

func (s *MarketplaceService) ListAllInventory(ctx context.Context) ([]*model.InventoryItem, error) {
	return s.listInventory(ctx, repository.InventoryFilter{})
}

func (s *MarketplaceService) listInventory(ctx context.Context, f repository.InventoryFilter) ([]*model.InventoryItem, error) {
	items, err := s.inventory.List(ctx, f)
	if err != nil {
		return nil, internalError("list inventory", err)
	}
	return items, nil
}

func (s *MarketplaceService) ListBuyerOrders(ctx context.Context, buyerID int64) ([]*model.Order, error) {
	if _, err := s.customers.GetByID(ctx, buyerID); err != nil {
		return nil, notFoundAs(err, repository.ErrCustomerNotFound, ErrCustomerNotFound)
	}
	return s.listOrders(ctx, repository.OrderFilter{BuyerID: &buyerID})
}

func (s *MarketplaceService) ListSellerOrders(ctx context.Context, sellerID int64) ([]*model.Order, error) {
	if err := s.requireSeller(ctx, sellerID); err != nil {
		return nil, err
	}
	return s.listOrders(ctx, repository.OrderFilter{SupplierID: &sellerID})
}

func (s *MarketplaceService) ListAllOrders(ctx context.Context) ([]*model.Order, error) {
	return s.listOrders(ctx, repository.OrderFilter{})
}

func (s *MarketplaceService) listOrders(ctx context.Context, f repository.OrderFilter) ([]*model.Order, error) {
	orders, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, internalError("list orders", err)
	}
	return orders, nil
}

// AddProduct adds an entry to the catalog sellers stock from.
func (s *MarketplaceService) AddProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" || p.BasePrice.IsNegative() {
		return nil, ErrInvalidInput
	}
	created, err := s.products.Create(ctx, &p)
	if err != nil {
		return nil, internalError("add product", err)
	}
	return created, nil
}

func (s *MarketplaceService) ListProducts(ctx context.Context) ([]*model.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, internalError("list products", err)
	}
	return products, nil
}
