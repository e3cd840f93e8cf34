package model

import (
	"github.com/shopspring/decimal"
)

// Product represents the database model for catalog products
type Product struct {
	ID       string `gorm:"primaryKey;size:64"`
	Name     string `gorm:"not null;size:255"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName specifies the table name for Product
func (Product) TableName() string {
	return "products"
}

// Package represents the database model for priced product denominations
type Package struct {
	ID               string `gorm:"primaryKey;size:64"`
	ProductID        string `gorm:"not null;size:64;index"`
	Name             string `gorm:"not null;size:255"`
	Price            int64  `gorm:"not null"`
	Amount           int64  `gorm:"not null;default:0"`
	Unit             string `gorm:"size:50"`
	IsActive         bool   `gorm:"not null;default:true"`
	ProviderEntityID string `gorm:"size:100"`
	ProviderDenomID  string `gorm:"size:100"`

	Product Product `gorm:"foreignKey:ProductID;references:ID"`
}

// TableName specifies the table name for Package
func (Package) TableName() string {
	return "packages"
}

// PaymentMethod represents the database model for payment methods and their fees
type PaymentMethod struct {
	ID         string          `gorm:"primaryKey;size:64"`
	Name       string          `gorm:"not null;size:255"`
	FeePercent decimal.Decimal `gorm:"type:numeric(7,4);not null;default:0"`
	FeeFixed   int64           `gorm:"not null;default:0"`
	IsActive   bool            `gorm:"not null;default:true"`
}

// TableName specifies the table name for PaymentMethod
func (PaymentMethod) TableName() string {
	return "payment_methods"
}
