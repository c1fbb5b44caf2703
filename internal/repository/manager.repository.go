package repository

import (
	"context"
	"errors"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/kisanpay/kisanpay/pkg/pg"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

type ManagerRepository struct {
	*pg.DB
}

func NewManagerRepository(db *pg.DB) *ManagerRepository {
	return &ManagerRepository{
		db,
	}
}

func (r *ManagerRepository) Create(ctx context.Context, m *model.Manager) (*model.Manager, error) {
	entity := &ManagerEntity{
		FirstName: m.FirstName,
		LastName:  m.LastName,
	}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "create manager")
	}
	return toManagerModel(entity), nil
}

func (r *ManagerRepository) GetByID(ctx context.Context, id int64) (*model.Manager, error) {
	var entity ManagerEntity
	err := r.Read(ctx).Where("manager_id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrManagerNotFound
		}
		return nil, pkgerrors.Wrap(err, "get manager")
	}
	return toManagerModel(&entity), nil
}

func (r *ManagerRepository) List(ctx context.Context) ([]*model.Manager, error) {
	var entities []*ManagerEntity
	if err := r.Read(ctx).Order("manager_id").Find(&entities).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "list managers")
	}
	return toManagerModels(entities), nil
}
