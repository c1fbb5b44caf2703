package repository

import (
	"context"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/kisanpay/kisanpay/pkg/pg"
	pkgerrors "github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/gorm/clause"
)

type BillingRepository struct {
	*pg.DB
}

func NewBillingRepository(db *pg.DB) *BillingRepository {
	return &BillingRepository{
		db,
	}
}

// CreateBills inserts the bills, skipping any already recorded for the same
// transaction, customer and direction. It returns how many rows were new.
func (r *BillingRepository) CreateBills(ctx context.Context, bills []*model.Bill) (int64, error) {
	if len(bills) == 0 {
		return 0, nil
	}
	entities := lo.Map(bills, func(b *model.Bill, _ int) *BillEntity {
		return toBillEntity(b)
	})

	result := r.Write(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transaction_id"}, {Name: "cust_id"}, {Name: "direction"}},
			DoNothing: true,
		}).
		Create(&entities)
	if result.Error != nil {
		return 0, pkgerrors.Wrap(result.Error, "create bills")
	}
	return result.RowsAffected, nil
}

func (r *BillingRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*model.Bill, error) {
	var entities []*BillEntity
	err := r.Read(ctx).
		Where("cust_id = ?", customerID).
		Order("date_time DESC").
		Order("bill_id DESC").
		Find(&entities).
		Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list bills")
	}
	return lo.Map(entities, func(e *BillEntity, _ int) *model.Bill {
		return toBillModel(e)
	}), nil
}
