package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/kisanpay/kisanpay/pkg/pg"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerRepository struct {
	*pg.DB
}

func NewCustomerRepository(db *pg.DB) *CustomerRepository {
	return &CustomerRepository{
		db,
	}
}

func (r *CustomerRepository) Create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	var count int64
	err := r.Write(ctx).
		Model(&CustomerEntity{}).
		Where("LOWER(email) = ?", strings.ToLower(c.Email)).
		Count(&count).
		Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "check email")
	}
	if count > 0 {
		return nil, ErrDuplicateEmail
	}

	// The check above catches case variants; the unique index catches a
	// concurrent signup with the same address.
	entity := toCustomerEntity(c)
	result := r.Write(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(entity)
	if result.Error != nil {
		return nil, pkgerrors.Wrap(result.Error, "create customer")
	}
	if result.RowsAffected == 0 {
		return nil, ErrDuplicateEmail
	}
	return toCustomerModel(entity), nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	var entity CustomerEntity
	err := r.Read(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, pkgerrors.Wrap(err, "get customer")
	}
	return toCustomerModel(&entity), nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]*model.Customer, error) {
	var entities []*CustomerEntity
	if err := r.Read(ctx).Order("id ASC").Find(&entities).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "list customers")
	}
	return toCustomerModels(entities), nil
}
