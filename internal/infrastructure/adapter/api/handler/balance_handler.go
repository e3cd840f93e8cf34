package handler

import (
	"net/http"
	"strings"

	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// BalanceHandler handles balance-related HTTP requests
type BalanceHandler struct {
	ledger usecase.LedgerUseCase
	logger core.Logger
}

// NewBalanceHandler creates a new balance handler instance
func NewBalanceHandler(ledger usecase.LedgerUseCase, logger core.Logger) *BalanceHandler {
	return &BalanceHandler{
		ledger: ledger,
		logger: logger,
	}
}

// GetBalance handles GET /v1/balance for the authenticated user
func (h *BalanceHandler) GetBalance(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	balance, err := h.ledger.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, "get_balance", err)
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		UserID:  userID,
		Balance: balance,
	})
}

// Credit handles POST /v1/admin/balances/:userId/credit
func (h *BalanceHandler) Credit(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userId"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    errs.CodeInvalidUserID,
			Message: errs.ErrInvalidUserID.Error(),
		})
		return
	}

	var req dto.CreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    errs.CodeInvalidAmount,
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	balance, err := h.ledger.Credit(c.Request.Context(), userID, req.Amount)
	if err != nil {
		respondError(c, h.logger, "credit_balance", err)
		return
	}

	h.logger.Info("Balance credited by admin", map[string]any{
		"user_id":     userID,
		"amount":      req.Amount,
		"new_balance": balance,
		"request_id":  c.GetHeader(middleware.RequestIDHeader),
	})

	c.JSON(http.StatusOK, dto.BalanceResponse{
		UserID:  userID,
		Balance: balance,
	})
}
