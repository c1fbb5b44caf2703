package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type BillDirection string

const (
	BillDebit  BillDirection = "debit"
	BillCredit BillDirection = "credit"
)

// Bill is the per-customer statement line derived from a committed transaction.
type Bill struct {
	ID            int64           `json:"bill_id"`
	TransactionID int64           `json:"transaction_id"`
	CustomerID    int64           `json:"cust_id"`
	Direction     BillDirection   `json:"direction"`
	Amount        decimal.Decimal `json:"amount"`
	DateTime      time.Time       `json:"date_time"`
}

// LedgerEvent is published on the ledger stream after a money movement commits.
type LedgerEvent struct {
	TransactionID int64           `json:"transaction_id"`
	Reference     string          `json:"reference"`
	Kind          TransactionKind `json:"kind"`
	SenderID      int64           `json:"sender_id"`
	ReceiverID    int64           `json:"receiver_id"`
	Amount        decimal.Decimal `json:"amount"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

func NewLedgerEvent(t *Transaction) *LedgerEvent {
	return &LedgerEvent{
		TransactionID: t.ID,
		Reference:     t.Reference,
		Kind:          t.Kind,
		SenderID:      t.SenderID,
		ReceiverID:    t.ReceiverID,
		Amount:        t.Amount,
		OccurredAt:    t.DateTime,
	}
}
