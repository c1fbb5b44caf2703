package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	BasePrice   decimal.Decimal `json:"base_price"`
}

type InventoryItem struct {
	ID          int64           `json:"inventory_id"`
	SupplierID  int64           `json:"supplier_id"`
	ProductID   int64           `json:"product_id"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	ProductName string          `json:"product_name,omitempty"`
	SellerName  string          `json:"seller_name,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// StockRequest identifies the product either by id or by catalog name.
type StockRequest struct {
	SellerID    int64           `json:"seller_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type PurchaseRequest struct {
	BuyerID     int64 `json:"buyer_id"`
	InventoryID int64 `json:"inventory_id"`
	Quantity    int64 `json:"quantity"`
}

type Order struct {
	ID          int64           `json:"order_id"`
	BuyerID     int64           `json:"buyer_id"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	OrderDate   time.Time       `json:"order_date"`
	Details     []*OrderDetail  `json:"details"`
	Transaction *Transaction    `json:"transaction,omitempty"`
}

type OrderDetail struct {
	ID          int64           `json:"order_detail_id"`
	OrderID     int64           `json:"order_id"`
	BuyerID     int64           `json:"buyer_id"`
	SupplierID  int64           `json:"supplier_id"`
	InventoryID int64           `json:"inventory_id"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}
