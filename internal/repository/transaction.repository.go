package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/kisanpay/kisanpay/pkg/pg"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

type TransactionRepository struct {
	*pg.DB
}

func NewTransactionRepository(db *pg.DB) *TransactionRepository {
	return &TransactionRepository{
		db,
	}
}

// Create appends a ledger record. Reference and DateTime are filled in when empty.
func (r *TransactionRepository) Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	entity := toTransactionEntity(txn)
	if entity.Reference == "" {
		entity.Reference = uuid.NewString()
	}
	if entity.DateTime.IsZero() {
		entity.DateTime = time.Now().UTC()
	}

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "create transaction")
	}

	return toTransactionModel(entity), nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*model.Transaction, error) {
	var entity TransactionEntity
	err := r.Read(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, pkgerrors.Wrap(err, "get transaction")
	}
	return toTransactionModel(&entity), nil
}

type TransactionFilter struct {
	CustomerID *int64
	Kind       *model.TransactionKind
	Limit      int
	Offset     int
}

// List returns transactions newest first. CustomerID matches either side of the movement.
func (r *TransactionRepository) List(ctx context.Context, f TransactionFilter) ([]*model.Transaction, error) {
	q := r.Read(ctx).Model(&TransactionEntity{})
	if f.CustomerID != nil {
		q = q.Where("sender_id = ? OR receiver_id = ?", *f.CustomerID, *f.CustomerID)
	}
	if f.Kind != nil {
		q = q.Where("kind = ?", string(*f.Kind))
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var entities []*TransactionEntity
	if err := q.Order("date_time DESC").Order("id DESC").Find(&entities).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "list transactions")
	}
	return toTransactionModels(entities), nil
}

func (r *TransactionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.Read(ctx).Model(&TransactionEntity{}).Count(&count).Error; err != nil {
		return 0, pkgerrors.Wrap(err, "count transactions")
	}
	return count, nil
}
