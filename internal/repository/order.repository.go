package repository

import (
	"context"
	"time"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/kisanpay/kisanpay/pkg/pg"
	pkgerrors "github.com/pkg/errors"
	"github.com/samber/lo"
)

type OrderRepository struct {
	*pg.DB
}

func NewOrderRepository(db *pg.DB) *OrderRepository {
	return &OrderRepository{
		db,
	}
}

// Create inserts the order and its line items. Callers run it inside the
// purchase transaction so both land or neither does.
func (r *OrderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	var created *model.Order
	err := r.WithinTransaction(ctx, func(ctx context.Context) error {
		entity := &OrderEntity{
			BuyerID:    order.BuyerID,
			TotalPrice: order.TotalPrice,
			OrderDate:  order.OrderDate,
		}
		if entity.OrderDate.IsZero() {
			entity.OrderDate = time.Now().UTC()
		}
		if err := r.Write(ctx).Create(entity).Error; err != nil {
			return pkgerrors.Wrap(err, "create order")
		}

		details := lo.Map(order.Details, func(d *model.OrderDetail, _ int) *OrderDetailEntity {
			e := toOrderDetailEntity(d)
			e.OrderID = entity.ID
			return e
		})
		if len(details) > 0 {
			if err := r.Write(ctx).Create(&details).Error; err != nil {
				return pkgerrors.Wrap(err, "create order details")
			}
		}

		created = toOrderModel(entity)
		created.Details = lo.Map(details, func(e *OrderDetailEntity, _ int) *model.OrderDetail {
			return toOrderDetailModel(e)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

type OrderFilter struct {
	BuyerID    *int64
	SupplierID *int64
}

// List returns orders with their line items, newest first. SupplierID selects
// orders that contain at least one line item sold by that seller.
func (r *OrderRepository) List(ctx context.Context, f OrderFilter) ([]*model.Order, error) {
	q := r.Read(ctx).Model(&OrderEntity{})
	if f.BuyerID != nil {
		q = q.Where("buyer_id = ?", *f.BuyerID)
	}
	if f.SupplierID != nil {
		sub := r.Read(ctx).Model(&OrderDetailEntity{}).Select("order_id").Where("supplier_id = ?", *f.SupplierID)
		q = q.Where("order_id IN (?)", sub)
	}

	var entities []*OrderEntity
	if err := q.Order("order_date DESC").Order("order_id DESC").Find(&entities).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "list orders")
	}
	if len(entities) == 0 {
		return []*model.Order{}, nil
	}

	ids := lo.Map(entities, func(e *OrderEntity, _ int) int64 { return e.ID })
	dq := r.Read(ctx).Where("order_id IN ?", ids)
	if f.SupplierID != nil {
		dq = dq.Where("supplier_id = ?", *f.SupplierID)
	}
	var details []*OrderDetailEntity
	if err := dq.Order("order_detail_id ASC").Find(&details).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "list order details")
	}
	byOrder := lo.GroupBy(details, func(d *OrderDetailEntity) int64 { return d.OrderID })

	return lo.Map(entities, func(e *OrderEntity, _ int) *model.Order {
		m := toOrderModel(e)
		m.Details = lo.Map(byOrder[e.ID], func(d *OrderDetailEntity, _ int) *model.OrderDetail {
			return toOrderDetailModel(d)
		})
		return m
	}), nil
}

func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.Read(ctx).Model(&OrderEntity{}).Count(&count).Error; err != nil {
		return 0, pkgerrors.Wrap(err, "count orders")
	}
	return count, nil
}
