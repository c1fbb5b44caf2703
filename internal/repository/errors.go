package repository

import "errors"

var (
	ErrCustomerNotFound       = errors.New("customer not found")
	ErrDuplicateEmail         = errors.New("email already registered")
	ErrAccountNotFound        = errors.New("account not found")
	ErrAccountExists          = errors.New("customer already has an account")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrProductNotFound        = errors.New("product not found")
	ErrInventoryNotFound      = errors.New("inventory item not found")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrLoanNotFound           = errors.New("loan not found")
	ErrManagerNotFound        = errors.New("manager not found")
	ErrRepaymentExceedsLoan   = errors.New("repayment exceeds outstanding loan amount")
	ErrLoanStatusChanged      = errors.New("loan is no longer in the expected status")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrConcurrentUpdate       = errors.New("concurrent update detected")
	ErrMaxRetriesExceeded     = errors.New("max retries exceeded")
	ErrAccountNumberExhausted = errors.New("could not allocate a free account number")
)
