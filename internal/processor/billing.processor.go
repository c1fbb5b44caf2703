package processor

import (
	"context"
	"errors"
	"strconv"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/kisanpay/kisanpay/internal/queue"
	"github.com/kisanpay/kisanpay/pkg/logger"
	"github.com/kisanpay/kisanpay/pkg/prom"
)

type BillStore interface {
	CreateBills(ctx context.Context, bills []*model.Bill) (int64, error)
}

// BillingProcessor turns committed ledger events into statement lines: a
// debit for the sender and a credit for the receiver.
type BillingProcessor struct {
	bills       BillStore
	idempotency *IdempotencyService
}

func NewBillingProcessor(bills BillStore, idempotency *IdempotencyService) *BillingProcessor {
	return &BillingProcessor{
		bills:       bills,
		idempotency: idempotency,
	}
}

func (p *BillingProcessor) GetType() string {
	return "billing"
}

// BillsFor returns the bills a ledger event produces.
func BillsFor(e *model.LedgerEvent) []*model.Bill {
	return []*model.Bill{
		{
			TransactionID: e.TransactionID,
			CustomerID:    e.SenderID,
			Direction:     model.BillDebit,
			Amount:        e.Amount,
			DateTime:      e.OccurredAt,
		},
		{
			TransactionID: e.TransactionID,
			CustomerID:    e.ReceiverID,
			Direction:     model.BillCredit,
			Amount:        e.Amount,
			DateTime:      e.OccurredAt,
		},
	}
}

// Process bills one ledger event. A nil return acks the message; an error
// leaves it pending for redelivery.
func (p *BillingProcessor) Process(ctx context.Context, msg *queue.Message) error {
	event, err := queue.DecodeLedgerEvent(msg)
	if err != nil {
		// retried until the queue moves it to the dead letter stream
		logger.Error("invalid ledger event", "id", msg.ID, "error", err)
		prom.IncBillingEventFailed()
		return err
	}

	key := "txn:" + strconv.FormatInt(event.TransactionID, 10)

	pc, err := p.idempotency.AcquireProcessingLock(ctx, key)
	switch {
	case errors.Is(err, ErrAlreadyProcessed):
		logger.Debug("ledger event already billed", "transaction_id", event.TransactionID)
		return nil
	case errors.Is(err, ErrMaxRetriesExceeded):
		logger.Error("giving up on ledger event", "transaction_id", event.TransactionID, "error", err)
		prom.IncBillingEventFailed()
		return nil
	case err != nil:
		return err
	}
	defer func() {
		_ = p.idempotency.ReleaseLock(ctx, pc)
	}()

	for _, bill := range BillsFor(event) {
		inserted, err := p.bills.CreateBills(ctx, []*model.Bill{bill})
		if err != nil {
			prom.IncBillingEventFailed()
			if markErr := p.idempotency.MarkFailure(ctx, pc, err); markErr != nil {
				logger.Error("failed to mark failure", "transaction_id", event.TransactionID, "error", markErr)
			}
			return err
		}
		if inserted > 0 {
			prom.AddBills(string(bill.Direction), float64(inserted))
		}
	}

	if err := p.idempotency.MarkSuccess(ctx, pc); err != nil {
		// the bills are in; a redelivery is absorbed by the unique index
		logger.Error("failed to mark success", "transaction_id", event.TransactionID, "error", err)
	}

	logger.Info("ledger event billed",
		"transaction_id", event.TransactionID,
		"kind", event.Kind,
		"retry_count", pc.RetryCount)
	return nil
}
