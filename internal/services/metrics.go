package services

import (
	"errors"
	"time"

	"github.com/kisanpay/kisanpay/pkg/logger"
	"github.com/kisanpay/kisanpay/pkg/prom"
)

const (
	opTransfer = "transfer"
	opPurchase = "purchase"
	opRepay    = "repay_loan"
	opStock    = "stock_inventory"
	opDeposit  = "add_money"
)

// observe records the outcome and latency of a ledger operation and logs it.
// Call it deferred with a pointer to the named error result.
func observe(op string, start time.Time, errp *error, kv ...any) {
	var err error
	if errp != nil {
		err = *errp
	}

	outcome := "success"
	fields := append([]any{"operation", op, "duration", time.Since(start).String()}, kv...)
	switch {
	case err == nil:
		logger.Info("ledger operation completed", fields...)
	case KindOf(err) == KindTimeout:
		outcome = "timeout"
		logger.Warn("ledger operation timed out, rolled back", append(fields, "error", err)...)
	case KindOf(err) == KindInternal:
		outcome = "error"
		logger.Error("ledger operation failed", append(fields, "error", err)...)
	default:
		outcome = "rejected"
		var se *Error
		if errors.As(err, &se) {
			fields = append(fields, "code", se.Code)
		}
		logger.Warn("ledger operation rejected", fields...)
	}

	prom.ObserveLedgerOperation(op, outcome, time.Since(start).Seconds())
}
