package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInsufficientBalance     = 4001
	CodeInvalidAmount           = 4002
	CodeInvalidUserID           = 4003
	CodeDuplicateTransaction    = 4004
	CodeConstraintViolation     = 4005
	CodeInvalidInput            = 4006
	CodePackageInactive         = 4007
	CodePaymentMethodInactive   = 4008
	CodePackageProductMismatch  = 4009
	CodeMissingProviderCodes    = 4010
	CodeUnauthorized            = 4011
	CodeTransactionNotFound     = 4040
	CodeProductNotFound         = 4041
	CodePackageNotFound         = 4042
	CodePaymentMethodNotFound   = 4043
	CodeTransactionInProgress   = 4090
	CodeFundsChanged            = 4091
	CodeDuplicateSettlementEvnt = 4092

	// 5xxx - Server errors
	CodeInternalServer      = 5000
	CodeProviderError       = 5020
	CodeProviderTimeout     = 5021
	CodeProviderRejected    = 5022
	CodeProviderUnavailable = 5023
	CodeDatabaseConnection  = 5030
)

// Base error types
var (
	// ErrInvalidInput is the parent of every request validation failure
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientBalance is returned when a user cannot cover the purchase price
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidAmount is returned when an amount is negative or zero where a positive value is required
	ErrInvalidAmount = fmt.Errorf("%w: invalid amount", ErrInvalidInput)

	// ErrInvalidUserID is returned when the user ID is empty
	ErrInvalidUserID = fmt.Errorf("%w: user ID cannot be empty", ErrInvalidInput)

	// ErrInvalidFeePercent is returned when a fee percent is outside 0..100
	ErrInvalidFeePercent = fmt.Errorf("%w: fee percent must be between 0 and 100", ErrInvalidInput)

	// ErrInvalidTransactionID is returned when the transaction ID is empty
	ErrInvalidTransactionID = fmt.Errorf("%w: transaction ID cannot be empty", ErrInvalidInput)

	ErrProductNotFound        = fmt.Errorf("%w: product not found", ErrInvalidInput)
	ErrPackageNotFound        = fmt.Errorf("%w: package not found", ErrInvalidInput)
	ErrPackageInactive        = fmt.Errorf("%w: package is not active", ErrInvalidInput)
	ErrPackageProductMismatch = fmt.Errorf("%w: package does not belong to product", ErrInvalidInput)
	ErrPaymentMethodNotFound  = fmt.Errorf("%w: payment method not found", ErrInvalidInput)
	ErrPaymentMethodInactive  = fmt.Errorf("%w: payment method is not active", ErrInvalidInput)

	// ErrMissingProviderCodes is returned when a confirmable purchase targets a package with no provider codes
	ErrMissingProviderCodes = fmt.Errorf("%w: package has no provider product codes", ErrInvalidInput)

	// ErrTransactionNotFound is returned when the requested transaction doesn't exist
	ErrTransactionNotFound = fmt.Errorf("%w: transaction not found", ErrInvalidInput)

	// ErrDuplicateTransaction is returned when a transaction with the same ID already exists
	ErrDuplicateTransaction = errors.New("transaction with this ID already exists")

	// ErrDuplicateSettlementEvent is returned when a second settlement event is written for a transaction
	ErrDuplicateSettlementEvent = errors.New("settlement event already recorded for transaction")

	// ErrTransactionInProgress is returned when another confirmation holds the transaction
	ErrTransactionInProgress = errors.New("transaction confirmation already in progress")

	// ErrFundsChanged is returned when the balance no longer covers the price at confirmation time
	ErrFundsChanged = errors.New("balance changed before confirmation")

	// ErrProviderError is the parent of every fulfillment provider failure
	ErrProviderError = errors.New("fulfillment provider error")

	// ErrProviderTimeout is returned when the provider did not answer within the deadline
	ErrProviderTimeout = fmt.Errorf("%w: timeout", ErrProviderError)

	// ErrProviderRejected is returned when the provider explicitly refused the order
	ErrProviderRejected = fmt.Errorf("%w: order rejected", ErrProviderError)

	// ErrProviderUnavailable is returned on transport failures or provider 5xx answers
	ErrProviderUnavailable = fmt.Errorf("%w: unavailable", ErrProviderError)

	// ErrUnauthorized is returned when the caller identity cannot be established
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")

	// ErrDatabaseConnection is returned when there's a problem talking to the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrConstraintViolation is returned when a database constraint is violated
	ErrConstraintViolation = errors.New("database constraint violation")

	// ErrNotFound is returned when a generic resource is not found
	ErrNotFound = errors.New("resource not found")
)

// ErrorCode returns standardized error codes for known errors.
// Specific errors are checked before their parents.
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInsufficientBalance):
		return CodeInsufficientBalance
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidFeePercent):
		return CodeInvalidAmount
	case errors.Is(err, ErrInvalidUserID):
		return CodeInvalidUserID
	case errors.Is(err, ErrTransactionNotFound):
		return CodeTransactionNotFound
	case errors.Is(err, ErrProductNotFound):
		return CodeProductNotFound
	case errors.Is(err, ErrPackageNotFound):
		return CodePackageNotFound
	case errors.Is(err, ErrPaymentMethodNotFound):
		return CodePaymentMethodNotFound
	case errors.Is(err, ErrPackageInactive):
		return CodePackageInactive
	case errors.Is(err, ErrPaymentMethodInactive):
		return CodePaymentMethodInactive
	case errors.Is(err, ErrPackageProductMismatch):
		return CodePackageProductMismatch
	case errors.Is(err, ErrMissingProviderCodes):
		return CodeMissingProviderCodes
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrDuplicateTransaction):
		return CodeDuplicateTransaction
	case errors.Is(err, ErrDuplicateSettlementEvent):
		return CodeDuplicateSettlementEvnt
	case errors.Is(err, ErrTransactionInProgress):
		return CodeTransactionInProgress
	case errors.Is(err, ErrFundsChanged):
		return CodeFundsChanged
	case errors.Is(err, ErrProviderTimeout):
		return CodeProviderTimeout
	case errors.Is(err, ErrProviderRejected):
		return CodeProviderRejected
	case errors.Is(err, ErrProviderUnavailable):
		return CodeProviderUnavailable
	case errors.Is(err, ErrProviderError):
		return CodeProviderError
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrConstraintViolation):
		return CodeConstraintViolation
	case errors.Is(err, ErrDatabaseConnection):
		return CodeDatabaseConnection
	default:
		return CodeInternalServer
	}
}

// InsufficientBalanceError provides detailed error information for insufficient balance
type InsufficientBalanceError struct {
	UserID   string
	Balance  int64
	Required int64
}

// Error implements the error interface
func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for user %s: required %d, available %d, missing %d",
		e.UserID, e.Required, e.Balance, e.Missing())
}

// Missing returns how much the user is short
func (e *InsufficientBalanceError) Missing() int64 {
	if e.Required <= e.Balance {
		return 0
	}
	return e.Required - e.Balance
}

// Is checks if the target error is an ErrInsufficientBalance
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// LogFields returns a map of fields for structured logging
func (e *InsufficientBalanceError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "insufficient_balance",
		"user_id":    e.UserID,
		"balance":    e.Balance,
		"required":   e.Required,
		"missing":    e.Missing(),
		"error_code": CodeInsufficientBalance,
	}
}

// NewInsufficientBalanceError creates a new detailed insufficient balance error
func NewInsufficientBalanceError(userID string, balance, required int64) error {
	return &InsufficientBalanceError{
		UserID:   userID,
		Balance:  balance,
		Required: required,
	}
}

// ProviderError describes a failed call to the fulfillment provider
type ProviderError struct {
	RefID      string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface for ProviderError
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider order %s failed with status %d: %s: %v", e.RefID, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("provider order %s failed: %s: %v", e.RefID, e.Message, e.Err)
}

// Unwrap returns the underlying error
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *ProviderError) LogFields() map[string]any {
	return map[string]any{
		"error_type":  "provider_error",
		"ref_id":      e.RefID,
		"status_code": e.StatusCode,
		"message":     e.Message,
		"error":       e.Err.Error(),
		"error_code":  ErrorCode(e.Err),
	}
}

// NewProviderError creates a provider error wrapping one of the ErrProvider* sentinels
func NewProviderError(refID string, statusCode int, message string, err error) error {
	return &ProviderError{
		RefID:      refID,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// TransactionError represents an error related to transaction processing
type TransactionError struct {
	TransactionID string
	UserID        string
	Status        string
	Reason        string
	Err           error
}

// Error implements the error interface for TransactionError
func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction error for ID %s (user: %s, status: %s): %s - %v",
		e.TransactionID, e.UserID, e.Status, e.Reason, e.Err)
}

// Unwrap returns the underlying error
func (e *TransactionError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *TransactionError) LogFields() map[string]any {
	return map[string]any{
		"error_type":     "transaction_error",
		"transaction_id": e.TransactionID,
		"user_id":        e.UserID,
		"status":         e.Status,
		"reason":         e.Reason,
		"error":          e.Err.Error(),
		"error_code":     ErrorCode(e.Err),
	}
}

// NewTransactionError creates a detailed transaction error
func NewTransactionError(transactionID, userID, status, reason string, err error) error {
	return &TransactionError{
		TransactionID: transactionID,
		UserID:        userID,
		Status:        status,
		Reason:        reason,
		Err:           err,
	}
}

// IsInvalidInputError checks if the error is any validation failure
func IsInvalidInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsInsufficientBalanceError checks if the error is related to insufficient balance
func IsInsufficientBalanceError(err error) bool {
	return errors.Is(err, ErrInsufficientBalance)
}

// IsProviderError checks if the error came from the fulfillment provider
func IsProviderError(err error) bool {
	return errors.Is(err, ErrProviderError)
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrPackageNotFound) ||
		errors.Is(err, ErrPaymentMethodNotFound)
}
