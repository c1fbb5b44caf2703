package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	AccNo      int64           `json:"acc_no"`
	CustomerID int64           `json:"customer_id"`
	Balance    decimal.Decimal `json:"balance"`
	CreatedAt  time.Time       `json:"created_at"`
}
