package persistence

import (
	"context"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
)

// CatalogRepository reads products, packages and payment methods.
// Catalog administration lives elsewhere; the Save methods exist for seeding.
type CatalogRepository interface {
	// Possible errors: ErrProductNotFound, ErrDatabaseConnection
	GetProduct(ctx context.Context, id string) (*entity.Product, error)

	// Possible errors: ErrPackageNotFound, ErrDatabaseConnection
	GetPackage(ctx context.Context, id string) (*entity.Package, error)

	// Possible errors: ErrPaymentMethodNotFound, ErrDatabaseConnection
	GetPaymentMethod(ctx context.Context, id string) (*entity.PaymentMethod, error)

	SaveProduct(ctx context.Context, product *entity.Product) error
	SavePackage(ctx context.Context, pkg *entity.Package) error
	SavePaymentMethod(ctx context.Context, method *entity.PaymentMethod) error
}
