package error

import (
	"errors"
	"fmt"
	"testing"
)

func TestBaseErrorTypes(t *testing.T) {
	if ErrInsufficientBalance.Error() != "insufficient balance" {
		t.Errorf("ErrInsufficientBalance has unexpected message: %s", ErrInsufficientBalance.Error())
	}
	if ErrPackageInactive.Error() != "invalid input: package is not active" {
		t.Errorf("ErrPackageInactive has unexpected message: %s", ErrPackageInactive.Error())
	}
	if !errors.Is(ErrProductNotFound, ErrInvalidInput) {
		t.Errorf("ErrProductNotFound should be an ErrInvalidInput")
	}
	if !errors.Is(ErrProviderTimeout, ErrProviderError) {
		t.Errorf("ErrProviderTimeout should be an ErrProviderError")
	}
	if errors.Is(ErrProviderTimeout, ErrProviderRejected) {
		t.Errorf("timeout and rejection must stay distinguishable")
	}
}

func TestErrorCode(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"InsufficientBalance", ErrInsufficientBalance, 4001},
		{"InvalidAmount", ErrInvalidAmount, 4002},
		{"InvalidFeePercent", ErrInvalidFeePercent, 4002},
		{"InvalidUserID", ErrInvalidUserID, 4003},
		{"DuplicateTransaction", ErrDuplicateTransaction, 4004},
		{"ConstraintViolation", ErrConstraintViolation, 4005},
		{"GenericInvalidInput", ErrInvalidInput, 4006},
		{"PackageInactive", ErrPackageInactive, 4007},
		{"PaymentMethodInactive", ErrPaymentMethodInactive, 4008},
		{"PackageProductMismatch", ErrPackageProductMismatch, 4009},
		{"MissingProviderCodes", ErrMissingProviderCodes, 4010},
		{"Unauthorized", ErrUnauthorized, 4011},
		{"TransactionNotFound", ErrTransactionNotFound, 4040},
		{"ProductNotFound", ErrProductNotFound, 4041},
		{"PackageNotFound", ErrPackageNotFound, 4042},
		{"PaymentMethodNotFound", ErrPaymentMethodNotFound, 4043},
		{"InProgress", ErrTransactionInProgress, 4090},
		{"FundsChanged", ErrFundsChanged, 4091},
		{"ProviderTimeout", ErrProviderTimeout, 5021},
		{"ProviderRejected", ErrProviderRejected, 5022},
		{"ProviderUnavailable", ErrProviderUnavailable, 5023},
		{"DatabaseConnection", ErrDatabaseConnection, 5030},
		{"UnknownError", errors.New("unknown error"), 5000},
		{"WrappedError", fmt.Errorf("wrapped: %w", ErrInvalidUserID), 4003},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code := ErrorCode(tc.err)
			if code != tc.expected {
				t.Errorf("ErrorCode(%v) = %d, want %d", tc.err, code, tc.expected)
			}
		})
	}
}

func TestInsufficientBalanceError(t *testing.T) {
	err := NewInsufficientBalanceError("user-1", 5000, 10000)

	if !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("errors.Is(err, ErrInsufficientBalance) = false, want true")
	}
	if ErrorCode(err) != CodeInsufficientBalance {
		t.Errorf("ErrorCode(err) = %d, want %d", ErrorCode(err), CodeInsufficientBalance)
	}

	var detailed *InsufficientBalanceError
	if !errors.As(err, &detailed) {
		t.Fatalf("errors.As should extract InsufficientBalanceError")
	}
	if detailed.Missing() != 5000 {
		t.Errorf("Missing() = %d, want 5000", detailed.Missing())
	}

	expected := "insufficient balance for user user-1: required 10000, available 5000, missing 5000"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	fields := detailed.LogFields()
	if fields["missing"] != int64(5000) {
		t.Errorf("LogFields()[missing] = %v, want 5000", fields["missing"])
	}
}

func TestProviderError(t *testing.T) {
	err := NewProviderError("tx-1", 422, "denomination unavailable", ErrProviderRejected)

	if !errors.Is(err, ErrProviderRejected) {
		t.Errorf("errors.Is(err, ErrProviderRejected) = false, want true")
	}
	if !IsProviderError(err) {
		t.Errorf("IsProviderError(err) = false, want true")
	}
	if ErrorCode(err) != CodeProviderRejected {
		t.Errorf("ErrorCode(err) = %d, want %d", ErrorCode(err), CodeProviderRejected)
	}

	var detailed *ProviderError
	if !errors.As(err, &detailed) {
		t.Fatalf("errors.As should extract ProviderError")
	}
	if detailed.LogFields()["status_code"] != 422 {
		t.Errorf("LogFields()[status_code] = %v, want 422", detailed.LogFields()["status_code"])
	}
}

func TestTransactionError(t *testing.T) {
	txError := NewTransactionError("tx123", "user-9", "pending", "finalize failed", ErrDatabaseConnection)

	expectedErrMsg := "transaction error for ID tx123 (user: user-9, status: pending): finalize failed - database connection error"
	if txError.Error() != expectedErrMsg {
		t.Errorf("TransactionError.Error() = %s, want %s", txError.Error(), expectedErrMsg)
	}

	if !errors.Is(txError, ErrDatabaseConnection) {
		t.Errorf("errors.Is(txError, ErrDatabaseConnection) = false, want true")
	}
}

func TestHelperFunctions(t *testing.T) {
	if !IsInvalidInputError(ErrPackageNotFound) {
		t.Errorf("IsInvalidInputError(ErrPackageNotFound) = false, want true")
	}
	if IsInvalidInputError(ErrFundsChanged) {
		t.Errorf("IsInvalidInputError(ErrFundsChanged) = true, want false")
	}
	if !IsNotFoundError(fmt.Errorf("lookup: %w", ErrTransactionNotFound)) {
		t.Errorf("IsNotFoundError(wrapped ErrTransactionNotFound) = false, want true")
	}
	if IsNotFoundError(ErrPackageInactive) {
		t.Errorf("IsNotFoundError(ErrPackageInactive) = true, want false")
	}
	if !IsInsufficientBalanceError(NewInsufficientBalanceError("u", 1, 2)) {
		t.Errorf("IsInsufficientBalanceError = false, want true")
	}
}
