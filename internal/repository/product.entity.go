package repository

import (
	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type ProductEntity struct {
	ID          int64           `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	Name        string          `db:"name"        gorm:"column:name;not null;uniqueIndex"`
	Description string          `db:"description" gorm:"column:description"`
	BasePrice   decimal.Decimal `db:"base_price"  gorm:"column:base_price;type:numeric(14,2);not null;default:0"`
}

func (ProductEntity) TableName() string {
	return "products"
}

func toProductModel(e *ProductEntity) *model.Product {
	if e == nil {
		return nil
	}
	return &model.Product{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		BasePrice:   e.BasePrice,
	}
}

func toProductModels(entities []*ProductEntity) []*model.Product {
	return lo.Map(entities, func(e *ProductEntity, _ int) *model.Product {
		return toProductModel(e)
	})
}
