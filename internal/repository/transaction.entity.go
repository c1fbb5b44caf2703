package repository

import (
	"time"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type TransactionEntity struct {
	ID         int64           `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	Reference  string          `db:"reference"   gorm:"column:reference;not null;uniqueIndex"`
	Kind       string          `db:"kind"        gorm:"column:kind;not null"`
	AccNo      int64           `db:"acc_no"      gorm:"column:acc_no;not null;index"`
	TransferTo int64           `db:"transfer_to" gorm:"column:transfer_to;not null;index"`
	Amount     decimal.Decimal `db:"amount"      gorm:"column:amount;type:numeric(14,2);not null"`
	SenderID   int64           `db:"sender_id"   gorm:"column:sender_id;not null;index"`
	ReceiverID int64           `db:"receiver_id" gorm:"column:receiver_id;not null;index"`
	OrderID    *int64          `db:"order_id"    gorm:"column:order_id"`
	DateTime   time.Time       `db:"date_time"   gorm:"column:date_time;not null"`
}

func (TransactionEntity) TableName() string {
	return "transactions"
}

func toTransactionEntity(m *model.Transaction) *TransactionEntity {
	if m == nil {
		return nil
	}
	return &TransactionEntity{
		ID:         m.ID,
		Reference:  m.Reference,
		Kind:       string(m.Kind),
		AccNo:      m.AccNo,
		TransferTo: m.TransferTo,
		Amount:     m.Amount,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		OrderID:    m.OrderID,
		DateTime:   m.DateTime,
	}
}

func toTransactionModel(e *TransactionEntity) *model.Transaction {
	if e == nil {
		return nil
	}
	return &model.Transaction{
		ID:         e.ID,
		Reference:  e.Reference,
		Kind:       model.TransactionKind(e.Kind),
		AccNo:      e.AccNo,
		TransferTo: e.TransferTo,
		Amount:     e.Amount,
		SenderID:   e.SenderID,
		ReceiverID: e.ReceiverID,
		OrderID:    e.OrderID,
		DateTime:   e.DateTime,
	}
}

func toTransactionModels(entities []*TransactionEntity) []*model.Transaction {
	return lo.Map(entities, func(e *TransactionEntity, _ int) *model.Transaction {
		return toTransactionModel(e)
	})
}
