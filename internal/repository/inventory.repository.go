package repository

import (
	"context"
	"errors"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/kisanpay/kisanpay/pkg/pg"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepository struct {
	*pg.DB
}

func NewInventoryRepository(db *pg.DB) *InventoryRepository {
	return &InventoryRepository{
		db,
	}
}

func (r *InventoryRepository) GetByID(ctx context.Context, id int64) (*model.InventoryItem, error) {
	var entity InventoryEntity
	err := r.Read(ctx).Where("inventory_id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInventoryNotFound
		}
		return nil, pkgerrors.Wrap(err, "get inventory item")
	}
	return toInventoryModel(&entity), nil
}

// Decrement removes quantity units from stock only if that many are available.
// Two concurrent purchases can never both pass the check and oversell the row.
func (r *InventoryRepository) Decrement(ctx context.Context, id int64, quantity int64) error {
	result := r.Write(ctx).
		Model(&InventoryEntity{}).
		Where("inventory_id = ? AND quantity >= ?", id, quantity).
		Update("quantity", gorm.Expr("quantity - ?", quantity))
	if result.Error != nil {
		return pkgerrors.Wrap(result.Error, "decrement inventory")
	}

	if result.RowsAffected == 0 {
		var count int64
		err := r.Read(ctx).Model(&InventoryEntity{}).Where("inventory_id = ?", id).Count(&count).Error
		if err != nil {
			return pkgerrors.Wrap(err, "read inventory item")
		}
		if count == 0 {
			return ErrInventoryNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}

// Upsert stores the seller's stock for a product in a single statement keyed on
// (supplier_id, product_id). An existing row has its quantity and price overwritten.
func (r *InventoryRepository) Upsert(ctx context.Context, item *model.InventoryItem) (*model.InventoryItem, error) {
	entity := &InventoryEntity{
		SupplierID: item.SupplierID,
		ProductID:  item.ProductID,
		Quantity:   item.Quantity,
		Price:      item.Price,
	}

	err := r.Write(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "supplier_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "price", "updated_at"}),
		}).
		Create(entity).
		Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "upsert inventory")
	}

	var stored InventoryEntity
	err = r.Write(ctx).
		Where("supplier_id = ? AND product_id = ?", item.SupplierID, item.ProductID).
		First(&stored).
		Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "reload inventory")
	}
	return toInventoryModel(&stored), nil
}

type InventoryFilter struct {
	SupplierID    *int64
	OnlyAvailable bool
}

// List returns inventory joined with product and seller names, ordered by id.
func (r *InventoryRepository) List(ctx context.Context, f InventoryFilter) ([]*model.InventoryItem, error) {
	q := r.Read(ctx).
		Table("inventory").
		Select("inventory.*, products.name AS product_name, customers.name AS seller_name").
		Joins("JOIN products ON products.id = inventory.product_id").
		Joins("JOIN customers ON customers.id = inventory.supplier_id")
	if f.SupplierID != nil {
		q = q.Where("inventory.supplier_id = ?", *f.SupplierID)
	}
	if f.OnlyAvailable {
		q = q.Where("inventory.quantity > 0")
	}

	var rows []*inventoryRow
	if err := q.Order("inventory.inventory_id ASC").Scan(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "list inventory")
	}
	return toInventoryModels(rows), nil
}
