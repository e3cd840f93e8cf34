package handler

import (
	"net/http"
	"strconv"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// PurchaseHandler handles purchase-related HTTP requests
type PurchaseHandler struct {
	purchases usecase.PurchaseUseCase
	logger    core.Logger
}

// NewPurchaseHandler creates a new purchase handler instance
func NewPurchaseHandler(purchases usecase.PurchaseUseCase, logger core.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		purchases: purchases,
		logger:    logger,
	}
}

// CreatePurchase handles POST /v1/purchases
func (h *PurchaseHandler) CreatePurchase(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	var req dto.CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	result, err := h.purchases.CreateTransaction(c.Request.Context(), usecase.CreatePurchaseRequest{
		ProductID:             req.ProductID,
		PackageID:             req.PackageID,
		PaymentMethodID:       req.PaymentMethodID,
		UserID:                userID,
		GameAccountID:         req.GameAccountID,
		ConfirmationRequested: req.ConfirmationRequested,
	})
	if err != nil {
		respondError(c, h.logger, "create_purchase", err)
		return
	}

	respondPurchase(c, result, http.StatusCreated)
}

// ConfirmPurchase handles POST /v1/purchases/:transactionId/confirm.
// Transactions of other users are reported as not found.
func (h *PurchaseHandler) ConfirmPurchase(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}
	transactionID := c.Param("transactionId")

	if _, err := h.purchases.GetTransaction(c.Request.Context(), transactionID, userID); err != nil {
		respondError(c, h.logger, "confirm_purchase", err)
		return
	}

	result, err := h.purchases.ConfirmTransaction(c.Request.Context(), transactionID)
	if err != nil {
		respondError(c, h.logger, "confirm_purchase", err)
		return
	}

	respondPurchase(c, result, http.StatusOK)
}

// GetPurchase handles GET /v1/purchases/:transactionId
func (h *PurchaseHandler) GetPurchase(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	txn, err := h.purchases.GetTransaction(c.Request.Context(), c.Param("transactionId"), userID)
	if err != nil {
		respondError(c, h.logger, "get_purchase", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTransactionResponse(txn))
}

// ListPurchases handles GET /v1/purchases?limit=&offset=
func (h *PurchaseHandler) ListPurchases(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	limit, err := queryInt(c, "limit", defaultPageLimit)
	if err != nil || limit <= 0 {
		respondBadRequest(c, "limit must be a positive integer")
		return
	}
	limit = min(limit, maxPageLimit)

	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		respondBadRequest(c, "offset must be a non-negative integer")
		return
	}

	txns, err := h.purchases.ListTransactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, h.logger, "list_purchases", err)
		return
	}

	resp := dto.TransactionListResponse{
		Transactions: make([]dto.TransactionResponse, 0, len(txns)),
		Limit:        limit,
		Offset:       offset,
	}
	for _, txn := range txns {
		resp.Transactions = append(resp.Transactions, dto.NewTransactionResponse(txn))
	}
	c.JSON(http.StatusOK, resp)
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
