package handler

import (
	"errors"
	"net/http"

	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// outcomeStatus maps a business outcome to its HTTP status.
// acceptedStatus differs between creating and confirming.
func outcomeStatus(result *usecase.PurchaseResult, acceptedStatus int) int {
	switch result.Outcome {
	case usecase.OutcomeAccepted:
		return acceptedStatus
	case usecase.OutcomeAlreadyFinal:
		return http.StatusOK
	case usecase.OutcomeInvalidInput:
		if errors.Is(result.Reason, errs.ErrTransactionNotFound) {
			return http.StatusNotFound
		}
		return http.StatusBadRequest
	case usecase.OutcomeInsufficientFunds:
		return http.StatusPaymentRequired
	case usecase.OutcomeProviderError:
		return http.StatusBadGateway
	case usecase.OutcomeFundsChanged, usecase.OutcomeInProgress:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondPurchase(c *gin.Context, result *usecase.PurchaseResult, acceptedStatus int) {
	resp := dto.NewPurchaseResponse(result)
	if result.Reason != nil && result.Outcome != usecase.OutcomeAccepted {
		resp.Code = errs.ErrorCode(result.Reason)
	}
	if resp.Message == "" && result.Reason != nil && result.Outcome != usecase.OutcomeAccepted {
		resp.Message = result.Reason.Error()
	}
	c.JSON(outcomeStatus(result, acceptedStatus), resp)
}

// respondError writes the response for an error returned by a use case.
// Validation and lookup errors keep their message; faults are logged and hidden.
func respondError(c *gin.Context, logger core.Logger, operation string, err error) {
	code := errs.ErrorCode(err)

	switch {
	case errs.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Code: code, Message: err.Error()})
		return
	case errs.IsInvalidInputError(err):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: code, Message: err.Error()})
		return
	}

	logger.Error("Request failed", map[string]any{
		"operation":  operation,
		"path":       c.Request.URL.Path,
		"request_id": c.GetHeader(middleware.RequestIDHeader),
		"error":      err.Error(),
		"error_code": code,
	})

	if errors.Is(err, errs.ErrDatabaseConnection) {
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
			Code:    code,
			Message: "Service temporarily unavailable",
		})
		return
	}
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Code:    errs.CodeInternalServer,
		Message: "Internal server error",
	})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Code:    errs.CodeInvalidInput,
		Message: message,
	})
}

func respondUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
		Code:    errs.CodeUnauthorized,
		Message: "unauthorized",
	})
}
