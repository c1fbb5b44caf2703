package repository

import (
	"time"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type InventoryEntity struct {
	ID         int64           `db:"inventory_id" gorm:"primaryKey;autoIncrement;column:inventory_id"`
	SupplierID int64           `db:"supplier_id"  gorm:"column:supplier_id;not null;uniqueIndex:idx_inventory_supplier_product"`
	ProductID  int64           `db:"product_id"   gorm:"column:product_id;not null;uniqueIndex:idx_inventory_supplier_product"`
	Quantity   int64           `db:"quantity"     gorm:"column:quantity;not null;default:0;check:chk_inventory_quantity,quantity >= 0"`
	Price      decimal.Decimal `db:"price"        gorm:"column:price;type:numeric(14,2);not null"`
	UpdatedAt  time.Time       `db:"updated_at"   gorm:"column:updated_at;autoUpdateTime"`
}

func (InventoryEntity) TableName() string {
	return "inventory"
}

// inventoryRow is an inventory entity joined with its product and seller names.
type inventoryRow struct {
	InventoryEntity `gorm:"embedded"`
	ProductName     string `gorm:"column:product_name"`
	SellerName      string `gorm:"column:seller_name"`
}

func toInventoryModel(e *InventoryEntity) *model.InventoryItem {
	if e == nil {
		return nil
	}
	return &model.InventoryItem{
		ID:         e.ID,
		SupplierID: e.SupplierID,
		ProductID:  e.ProductID,
		Quantity:   e.Quantity,
		Price:      e.Price,
		UpdatedAt:  e.UpdatedAt,
	}
}

func toInventoryModels(rows []*inventoryRow) []*model.InventoryItem {
	return lo.Map(rows, func(row *inventoryRow, _ int) *model.InventoryItem {
		m := toInventoryModel(&row.InventoryEntity)
		m.ProductName = row.ProductName
		m.SellerName = row.SellerName
		return m
	})
}
