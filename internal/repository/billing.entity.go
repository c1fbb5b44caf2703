package repository

import (
	"time"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/shopspring/decimal"
)

type BillEntity struct {
	ID            int64           `db:"bill_id"        gorm:"primaryKey;autoIncrement;column:bill_id"`
	TransactionID int64           `db:"transaction_id" gorm:"column:transaction_id;not null;uniqueIndex:idx_billing_txn_customer_dir"`
	CustomerID    int64           `db:"cust_id"        gorm:"column:cust_id;not null;index;uniqueIndex:idx_billing_txn_customer_dir"`
	Direction     string          `db:"direction"      gorm:"column:direction;not null;uniqueIndex:idx_billing_txn_customer_dir"`
	Amount        decimal.Decimal `db:"amount"         gorm:"column:amount;type:numeric(14,2);not null"`
	DateTime      time.Time       `db:"date_time"      gorm:"column:date_time;not null"`
}

func (BillEntity) TableName() string {
	return "billing"
}

func toBillEntity(m *model.Bill) *BillEntity {
	return &BillEntity{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		CustomerID:    m.CustomerID,
		Direction:     string(m.Direction),
		Amount:        m.Amount,
		DateTime:      m.DateTime,
	}
}

func toBillModel(e *BillEntity) *model.Bill {
	return &model.Bill{
		ID:            e.ID,
		TransactionID: e.TransactionID,
		CustomerID:    e.CustomerID,
		Direction:     model.BillDirection(e.Direction),
		Amount:        e.Amount,
		DateTime:      e.DateTime,
	}
}
