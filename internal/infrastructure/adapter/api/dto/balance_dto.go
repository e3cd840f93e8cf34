package dto

// BalanceResponse represents the API response for a user's balance
type BalanceResponse struct {
	UserID  string `json:"userId"`
	Balance int64  `json:"balance"`
}

// CreditRequest represents an administrative top-up of a user's balance
type CreditRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}
