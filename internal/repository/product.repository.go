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

type ProductRepository struct {
	*pg.DB
}

func NewProductRepository(db *pg.DB) *ProductRepository {
	return &ProductRepository{
		db,
	}
}

func (r *ProductRepository) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	entity := &ProductEntity{
		Name:        p.Name,
		Description: p.Description,
		BasePrice:   p.BasePrice,
	}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "create product")
	}
	return toProductModel(entity), nil
}

// EnsureByName inserts the catalog entry unless a product with that name exists.
func (r *ProductRepository) EnsureByName(ctx context.Context, p *model.Product) error {
	entity := &ProductEntity{
		Name:        p.Name,
		Description: p.Description,
		BasePrice:   p.BasePrice,
	}
	err := r.Write(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(entity).
		Error
	return pkgerrors.Wrap(err, "ensure product")
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *ProductRepository) GetByName(ctx context.Context, name string) (*model.Product, error) {
	return r.first(ctx, "name = ?", name)
}

func (r *ProductRepository) first(ctx context.Context, query string, arg any) (*model.Product, error) {
	var entity ProductEntity
	err := r.Read(ctx).Where(query, arg).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, pkgerrors.Wrap(err, "get product")
	}
	return toProductModel(&entity), nil
}

func (r *ProductRepository) List(ctx context.Context) ([]*model.Product, error) {
	var entities []*ProductEntity
	if err := r.Read(ctx).Order("name ASC").Find(&entities).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "list products")
	}
	return toProductModels(entities), nil
}
