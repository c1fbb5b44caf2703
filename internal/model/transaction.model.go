package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	KindTransfer TransactionKind = "transfer"
	KindPurchase TransactionKind = "purchase"
)

// Transaction is the append-only record of one balance movement.
type Transaction struct {
	ID         int64           `json:"id"`
	Reference  string          `json:"reference"`
	Kind       TransactionKind `json:"kind"`
	AccNo      int64           `json:"acc_no"`
	TransferTo int64           `json:"transfer_to"`
	Amount     decimal.Decimal `json:"amount"`
	SenderID   int64           `json:"sender_id"`
	ReceiverID int64           `json:"receiver_id"`
	OrderID    *int64          `json:"order_id,omitempty"`
	DateTime   time.Time       `json:"date_time"`
}

type TransferRequest struct {
	SenderID   int64           `json:"sender_id"`
	TransferTo int64           `json:"transfer_to"`
	Amount     decimal.Decimal `json:"amount"`
}
