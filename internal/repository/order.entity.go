package repository

import (
	"time"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/shopspring/decimal"
)

type OrderEntity struct {
	ID         int64           `db:"order_id"    gorm:"primaryKey;autoIncrement;column:order_id"`
	BuyerID    int64           `db:"buyer_id"    gorm:"column:buyer_id;not null;index"`
	TotalPrice decimal.Decimal `db:"total_price" gorm:"column:total_price;type:numeric(14,2);not null"`
	OrderDate  time.Time       `db:"order_date"  gorm:"column:order_date;not null"`
}

func (OrderEntity) TableName() string {
	return "orders"
}

type OrderDetailEntity struct {
	ID          int64           `db:"order_detail_id" gorm:"primaryKey;autoIncrement;column:order_detail_id"`
	OrderID     int64           `db:"order_id"        gorm:"column:order_id;not null;index"`
	BuyerID     int64           `db:"buyer_id"        gorm:"column:buyer_id;not null"`
	SupplierID  int64           `db:"supplier_id"     gorm:"column:supplier_id;not null;index"`
	InventoryID int64           `db:"inventory_id"    gorm:"column:inventory_id;not null"`
	Quantity    int64           `db:"quantity"        gorm:"column:quantity;not null"`
	Price       decimal.Decimal `db:"price"           gorm:"column:price;type:numeric(14,2);not null"`
	TotalPrice  decimal.Decimal `db:"total_price"     gorm:"column:total_price;type:numeric(14,2);not null"`
}

func (OrderDetailEntity) TableName() string {
	return "order_details"
}

func toOrderModel(e *OrderEntity) *model.Order {
	if e == nil {
		return nil
	}
	return &model.Order{
		ID:         e.ID,
		BuyerID:    e.BuyerID,
		TotalPrice: e.TotalPrice,
		OrderDate:  e.OrderDate,
	}
}

func toOrderDetailEntity(m *model.OrderDetail) *OrderDetailEntity {
	return &OrderDetailEntity{
		ID:          m.ID,
		OrderID:     m.OrderID,
		BuyerID:     m.BuyerID,
		SupplierID:  m.SupplierID,
		InventoryID: m.InventoryID,
		Quantity:    m.Quantity,
		Price:       m.Price,
		TotalPrice:  m.TotalPrice,
	}
}

func toOrderDetailModel(e *OrderDetailEntity) *model.OrderDetail {
	return &model.OrderDetail{
		ID:          e.ID,
		OrderID:     e.OrderID,
		BuyerID:     e.BuyerID,
		SupplierID:  e.SupplierID,
		InventoryID: e.InventoryID,
		Quantity:    e.Quantity,
		Price:       e.Price,
		TotalPrice:  e.TotalPrice,
	}
}
