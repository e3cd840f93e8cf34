package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product is a purchasable game or voucher title
type Product struct {
	ID       string
	Name     string
	IsActive bool
}

// ProductCode identifies a package on the fulfillment provider side
type ProductCode struct {
	EntityID string
	DenomID  string
}

// IsZero reports whether both provider identifiers are missing
func (c ProductCode) IsZero() bool {
	return c.EntityID == "" && c.DenomID == ""
}

// Complete reports whether the code can be sent to the provider
func (c ProductCode) Complete() bool {
	return strings.TrimSpace(c.EntityID) != "" && strings.TrimSpace(c.DenomID) != ""
}

// Package is a priced denomination of a product
type Package struct {
	ID               string
	ProductID        string
	Name             string
	Price            int64 // minor currency units
	Amount           int64 // in-game quantity delivered
	Unit             string
	IsActive         bool
	ProviderEntityID string
	ProviderDenomID  string
}

// ProductCode returns the provider identifiers of the package
func (p *Package) ProductCode() ProductCode {
	return ProductCode{EntityID: p.ProviderEntityID, DenomID: p.ProviderDenomID}
}

// HasProviderCodes reports whether the package can be fulfilled automatically
func (p *Package) HasProviderCodes() bool {
	return p.ProductCode().Complete()
}

// Label builds the human readable name used in settlement notifications
func (p *Package) Label(product *Product) string {
	if product == nil || product.Name == "" {
		return p.Name
	}
	return product.Name + " - " + p.Name
}

// PaymentMethod carries the fee schedule applied on top of the package price
type PaymentMethod struct {
	ID         string
	Name       string
	FeePercent decimal.Decimal // 0..100, fractional values allowed
	FeeFixed   int64
	IsActive   bool
}
