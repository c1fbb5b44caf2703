package services

import (
	"context"
	"errors"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies a failure so callers can map it to a response class
// without knowing every individual error.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindForbidden  Kind = "forbidden"
	KindTimeout    Kind = "timeout"
	KindInternal   Kind = "internal"
)

// HTTPStatus is the response status both HTTP surfaces use for k.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindTimeout:
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}

// Error is a business failure with a stable code and a message safe to show
// to callers. Infrastructure causes are kept for logging only.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches on the code, so a wrapped internal error still equals ErrInternal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrInvalidAmount          = newError(KindValidation, "InvalidAmount", "amount must be greater than zero")
	ErrInvalidInput           = newError(KindValidation, "InvalidInput", "invalid input")
	ErrInvalidRepaymentAmount = newError(KindValidation, "InvalidRepaymentAmount", "repayment must be positive and no more than the outstanding amount")

	ErrSenderAccountNotFound   = newError(KindNotFound, "SenderAccountNotFound", "sender account not found")
	ErrReceiverAccountNotFound = newError(KindNotFound, "ReceiverAccountNotFound", "receiver account not found")
	ErrBuyerAccountNotFound    = newError(KindNotFound, "BuyerAccountNotFound", "buyer account not found")
	ErrSupplierAccountNotFound = newError(KindNotFound, "SupplierAccountNotFound", "supplier account not found")
	ErrInventoryItemNotFound   = newError(KindNotFound, "InventoryItemNotFound", "inventory item not found")
	ErrLoanNotFound            = newError(KindNotFound, "LoanNotFound", "loan not found")
	ErrProductNotFound         = newError(KindNotFound, "ProductNotFound", "product not found")
	ErrCustomerNotFound        = newError(KindNotFound, "CustomerNotFound", "customer not found")
	ErrAccountNotFound         = newError(KindNotFound, "AccountNotFound", "account not found")
	ErrManagerNotFound         = newError(KindNotFound, "ManagerNotFound", "manager not found")

	ErrInsufficientBalance   = newError(KindConflict, "InsufficientBalance", "insufficient balance")
	ErrInsufficientFunds     = newError(KindConflict, "InsufficientFunds", "insufficient funds")
	ErrInsufficientStock     = newError(KindConflict, "InsufficientStock", "insufficient stock")
	ErrAccountAlreadyExists  = newError(KindConflict, "AccountAlreadyExists", "customer already has an account")
	ErrEmailAlreadyExists    = newError(KindConflict, "EmailAlreadyExists", "email already registered")
	ErrInvalidLoanTransition = newError(KindConflict, "InvalidLoanTransition", "loan status cannot change from its current state")

	ErrNotAuthorized = newError(KindForbidden, "NotAuthorized", "not authorized")

	ErrRequestTimeout = newError(KindTimeout, "RequestTimeout", "request timed out; no changes were applied")

	ErrInternal = newError(KindInternal, "Internal", "internal error")
)

// internalError hides err behind ErrInternal while keeping it for logs. A
// cancelled or expired context becomes ErrRequestTimeout: the unit of work
// rolled back, so the caller may retry.
func internalError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{
			Kind:    KindTimeout,
			Code:    ErrRequestTimeout.Code,
			Message: ErrRequestTimeout.Message,
			cause:   pkgerrors.Wrap(err, op),
		}
	}
	return &Error{
		Kind:    KindInternal,
		Code:    ErrInternal.Code,
		Message: ErrInternal.Message,
		cause:   pkgerrors.Wrap(err, op),
	}
}

// asServiceError passes service errors through and classifies anything else as internal.
func asServiceError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return internalError(op, err)
}

// KindOf reports the kind of err, treating unknown errors as internal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// Public returns the code and message that may be shown to callers.
func Public(err error) (code, message string) {
	var se *Error
	if errors.As(err, &se) {
		return se.Code, se.Message
	}
	return ErrInternal.Code, ErrInternal.Message
}
