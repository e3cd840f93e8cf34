package purchase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/usecase"
)

// selection is the validated catalog snapshot of a purchase request
type selection struct {
	product *entity.Product
	pkg     *entity.Package
	method  *entity.PaymentMethod
	quote   entity.Quote
}

// validateRequest checks request fields and resolves the catalog entries.
// Validation failures are returned wrapped in ErrInvalidInput; anything else is a fault.
func (s *Service) validateRequest(ctx context.Context, req usecase.CreatePurchaseRequest) (*selection, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, errs.ErrInvalidUserID
	}
	if req.ProductID == "" || req.PackageID == "" || req.PaymentMethodID == "" {
		return nil, fmt.Errorf("%w: product, package and payment method are required", errs.ErrInvalidInput)
	}

	catalog := s.uow.GetCatalogRepository(ctx)

	pkg, err := catalog.GetPackage(ctx, req.PackageID)
	if err != nil {
		return nil, err
	}
	if pkg.ProductID != req.ProductID {
		return nil, errs.ErrPackageProductMismatch
	}
	if !pkg.IsActive {
		return nil, errs.ErrPackageInactive
	}

	product, err := catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	method, err := catalog.GetPaymentMethod(ctx, req.PaymentMethodID)
	if err != nil {
		return nil, err
	}
	if !method.IsActive {
		return nil, errs.ErrPaymentMethodInactive
	}

	quote, err := entity.NewQuote(pkg, method)
	if err != nil {
		return nil, err
	}

	if req.ConfirmationRequested && !pkg.HasProviderCodes() {
		return nil, errs.ErrMissingProviderCodes
	}

	return &selection{product: product, pkg: pkg, method: method, quote: quote}, nil
}

// invalidInput converts a validation failure into a result, passing faults through
func invalidInput(err error) (*usecase.PurchaseResult, error) {
	if !errors.Is(err, errs.ErrInvalidInput) {
		return nil, err
	}
	return &usecase.PurchaseResult{
		Outcome: usecase.OutcomeInvalidInput,
		Reason:  err,
		Message: err.Error(),
	}, nil
}
