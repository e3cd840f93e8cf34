package dto

import (
	"time"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/usecase"
)

// CreatePurchaseRequest represents the API request for buying a package
type CreatePurchaseRequest struct {
	ProductID             string `json:"productId" binding:"required"`
	PackageID             string `json:"packageId" binding:"required"`
	PaymentMethodID       string `json:"paymentMethodId" binding:"required"`
	GameAccountID         string `json:"gameAccountId"`
	ConfirmationRequested bool   `json:"confirmationRequested"`
}

// TransactionResponse is the API view of a transaction
type TransactionResponse struct {
	TransactionID    string     `json:"transactionId"`
	UserID           string     `json:"userId"`
	ProductID        string     `json:"productId"`
	PackageID        string     `json:"packageId"`
	PaymentMethodID  string     `json:"paymentMethodId"`
	GameAccountID    string     `json:"gameAccountId,omitempty"`
	ProductLabel     string     `json:"productLabel"`
	Price            int64      `json:"price"`
	Fee              int64      `json:"fee"`
	Total            int64      `json:"total"`
	Status           string     `json:"status"`
	ProviderOrderID  *string    `json:"providerOrderId,omitempty"`
	FulfillmentError string     `json:"fulfillmentError,omitempty"`
	FailureReason    string     `json:"failureReason,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	FinalizedAt      *time.Time `json:"finalizedAt,omitempty"`
}

// ShortfallResponse explains why a balance could not cover a price
type ShortfallResponse struct {
	Balance  int64 `json:"balance"`
	Required int64 `json:"required"`
	Missing  int64 `json:"missing"`
}

// PurchaseResponse represents the API response of create and confirm calls
type PurchaseResponse struct {
	Outcome            string               `json:"outcome"`
	Code               int                  `json:"code,omitempty"`
	Message            string               `json:"message,omitempty"`
	FulfillmentPending bool                 `json:"fulfillmentPending,omitempty"`
	Transaction        *TransactionResponse `json:"transaction,omitempty"`
	Shortfall          *ShortfallResponse   `json:"shortfall,omitempty"`
}

// TransactionListResponse represents a page of a user's transactions
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}

// NewTransactionResponse maps a domain transaction to its API view
func NewTransactionResponse(txn *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:    txn.TransactionID,
		UserID:           txn.UserID,
		ProductID:        txn.ProductID,
		PackageID:        txn.PackageID,
		PaymentMethodID:  txn.PaymentMethodID,
		GameAccountID:    txn.GameAccountID,
		ProductLabel:     txn.ProductLabel,
		Price:            txn.Price,
		Fee:              txn.Fee,
		Total:            txn.Total,
		Status:           string(txn.Status),
		ProviderOrderID:  txn.ProviderOrderID,
		FulfillmentError: txn.FulfillmentError,
		FailureReason:    txn.FailureReason,
		CreatedAt:        txn.CreatedAt,
		FinalizedAt:      txn.FinalizedAt,
	}
}

// NewPurchaseResponse maps a purchase result to its API view
func NewPurchaseResponse(result *usecase.PurchaseResult) PurchaseResponse {
	resp := PurchaseResponse{
		Outcome:            string(result.Outcome),
		Message:            result.Message,
		FulfillmentPending: result.FulfillmentPending,
	}
	if result.Transaction != nil {
		txn := NewTransactionResponse(result.Transaction)
		resp.Transaction = &txn
	}
	if result.Shortfall != nil {
		resp.Shortfall = &ShortfallResponse{
			Balance:  result.Shortfall.Balance,
			Required: result.Shortfall.Required,
			Missing:  result.Shortfall.Missing,
		}
	}
	return resp
}
