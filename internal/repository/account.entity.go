package repository

import (
	"time"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/shopspring/decimal"
)

type AccountEntity struct {
	AccNo      int64           `db:"acc_no"      gorm:"primaryKey;autoIncrement:false;column:acc_no"`
	CustomerID int64           `db:"customer_id" gorm:"column:customer_id;not null;uniqueIndex"`
	Balance    decimal.Decimal `db:"balance"     gorm:"column:balance;type:numeric(14,2);not null;default:0;check:chk_accounts_balance,balance >= 0"`
	CreatedAt  time.Time       `db:"created_at"  gorm:"column:created_at;autoCreateTime"`
}

func (AccountEntity) TableName() string {
	return "accounts"
}

func toAccountModel(e *AccountEntity) *model.Account {
	if e == nil {
		return nil
	}
	return &model.Account{
		AccNo:      e.AccNo,
		CustomerID: e.CustomerID,
		Balance:    e.Balance,
		CreatedAt:  e.CreatedAt,
	}
}
