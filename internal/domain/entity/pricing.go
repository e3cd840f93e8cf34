package entity

import (
	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ValidatePricingInput checks the arguments accepted by ComputeFee
func ValidatePricingInput(price int64, feePercent decimal.Decimal, feeFixed int64) error {
	if price < 0 || feeFixed < 0 {
		return errs.ErrInvalidAmount
	}
	if feePercent.IsNegative() || feePercent.GreaterThan(hundred) {
		return errs.ErrInvalidFeePercent
	}
	return nil
}

// ComputeFee returns round_half_up(price * feePercent / 100) + feeFixed.
// Callers validate inputs with ValidatePricingInput first.
func ComputeFee(price int64, feePercent decimal.Decimal, feeFixed int64) int64 {
	percentPart := decimal.NewFromInt(price).Mul(feePercent).Div(hundred)
	// decimal.Round rounds half away from zero, which is half-up for non-negative values
	return percentPart.Round(0).IntPart() + feeFixed
}

// ComputeTotal returns the amount the user is charged in total
func ComputeTotal(price, fee int64) int64 {
	return price + fee
}

// Quote is the priced snapshot of a package under a payment method
type Quote struct {
	Price int64
	Fee   int64
	Total int64
}

// NewQuote validates inputs and computes fee and total for a package
func NewQuote(pkg *Package, method *PaymentMethod) (Quote, error) {
	if err := ValidatePricingInput(pkg.Price, method.FeePercent, method.FeeFixed); err != nil {
		return Quote{}, err
	}
	fee := ComputeFee(pkg.Price, method.FeePercent, method.FeeFixed)
	return Quote{
		Price: pkg.Price,
		Fee:   fee,
		Total: ComputeTotal(pkg.Price, fee),
	}, nil
}
