package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kisanpay/kisanpay/internal/model"
)

const (
	metaEventKind     = "kind"
	metaTransactionID = "transaction_id"
)

// LedgerPublisher puts committed ledger movements on a stream for the
// billing processor.
type LedgerPublisher struct {
	queue *Queue
}

func NewLedgerPublisher(q *Queue) *LedgerPublisher {
	return &LedgerPublisher{queue: q}
}

func (p *LedgerPublisher) PublishLedgerEvent(ctx context.Context, e *model.LedgerEvent) error {
	_, err := p.queue.PublishJSON(ctx, e, map[string]string{
		metaEventKind:     string(e.Kind),
		metaTransactionID: strconv.FormatInt(e.TransactionID, 10),
	})
	return err
}

// DecodeLedgerEvent reads a ledger event published by LedgerPublisher.
func DecodeLedgerEvent(msg *Message) (*model.LedgerEvent, error) {
	var e model.LedgerEvent
	if err := json.Unmarshal(msg.Data, &e); err != nil {
		return nil, fmt.Errorf("decode ledger event %s: %w", msg.ID, err)
	}
	if e.TransactionID == 0 {
		return nil, fmt.Errorf("ledger event %s has no transaction id", msg.ID)
	}
	return &e, nil
}
