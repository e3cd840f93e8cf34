package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/httpclient"
)

const ordersPath = "/v1/orders"

// maxErrorBody caps how much of a failed response is kept in the error
const maxErrorBody = 512

type orderRequest struct {
	ProductCode   productCode `json:"productCode"`
	UserID        string      `json:"userId"`
	GameAccountID string      `json:"gameAccountId"`
	RefID         string      `json:"refId"`
}

type productCode struct {
	EntityID string `json:"entityId"`
	DenomID  string `json:"denomId"`
}

type orderResponse struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Config holds the provider endpoint settings
type Config struct {
	BaseURL string
	APIKey  string
}

// HTTPGateway places orders with the provider's JSON API
type HTTPGateway struct {
	client httpclient.HTTPClient
	cfg    Config
	logger core.Logger
}

var _ gateway.FulfillmentGateway = (*HTTPGateway)(nil)

// NewHTTPGateway creates a new HTTPGateway
func NewHTTPGateway(client httpclient.HTTPClient, cfg Config, logger core.Logger) *HTTPGateway {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &HTTPGateway{client: client, cfg: cfg, logger: logger}
}

// PlaceOrder posts the order with RefID as the idempotency key
func (g *HTTPGateway) PlaceOrder(ctx context.Context, req gateway.OrderRequest) (gateway.OrderResult, error) {
	body, err := json.Marshal(orderRequest{
		ProductCode:   productCode{EntityID: req.ProductCode.EntityID, DenomID: req.ProductCode.DenomID},
		UserID:        req.UserID,
		GameAccountID: req.GameAccountID,
		RefID:         req.RefID,
	})
	if err != nil {
		return gateway.OrderResult{}, fmt.Errorf("failed to encode order %s: %w", req.RefID, err)
	}

	resp, err := g.client.Post(ctx, g.cfg.BaseURL+ordersPath, bytes.NewReader(body), map[string]string{
		"Content-Type":    "application/json",
		"Accept":          "application/json",
		"Authorization":   "Bearer " + g.cfg.APIKey,
		"Idempotency-Key": req.RefID,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return gateway.OrderResult{}, errs.NewProviderError(req.RefID, 0, "request timed out", errs.ErrProviderTimeout)
		}
		return gateway.OrderResult{}, errs.NewProviderError(req.RefID, 0, err.Error(), errs.ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return gateway.OrderResult{}, errs.NewProviderError(req.RefID, resp.StatusCode, "failed to read response", errs.ErrProviderUnavailable)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.logger.Warn("Provider refused order", map[string]any{
			"ref_id":      req.RefID,
			"status_code": resp.StatusCode,
		})
		return gateway.OrderResult{}, MapStatusToError(req.RefID, resp.StatusCode, truncate(raw))
	}

	var out orderResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return gateway.OrderResult{}, errs.NewProviderError(req.RefID, resp.StatusCode, "malformed response body", errs.ErrProviderUnavailable)
	}

	switch strings.ToLower(out.Status) {
	case "failed", "rejected", "error":
		return gateway.OrderResult{}, errs.NewProviderError(req.RefID, resp.StatusCode, out.Message, errs.ErrProviderRejected)
	}
	if out.OrderID == "" {
		return gateway.OrderResult{}, errs.NewProviderError(req.RefID, resp.StatusCode, "response without order id", errs.ErrProviderRejected)
	}

	return gateway.OrderResult{OrderID: out.OrderID, ProviderStatus: out.Status}, nil
}

// MapStatusToError classifies a non-2xx provider answer.
// 408 and 504 are timeouts, other 4xx are rejections and everything else is unavailability.
func MapStatusToError(refID string, statusCode int, body string) error {
	switch {
	case statusCode == http.StatusRequestTimeout || statusCode == http.StatusGatewayTimeout:
		return errs.NewProviderError(refID, statusCode, body, errs.ErrProviderTimeout)
	case statusCode == http.StatusTooManyRequests:
		return errs.NewProviderError(refID, statusCode, body, errs.ErrProviderUnavailable)
	case statusCode >= 400 && statusCode < 500:
		return errs.NewProviderError(refID, statusCode, body, errs.ErrProviderRejected)
	default:
		return errs.NewProviderError(refID, statusCode, body, errs.ErrProviderUnavailable)
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func truncate(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody]
	}
	return s
}
