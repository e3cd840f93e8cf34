package repository

import (
	"context"
	"errors"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogRepository implements persistence.CatalogRepository using GORM
type CatalogRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewCatalogRepository creates a new CatalogRepository instance
func NewCatalogRepository(db *gorm.DB, logger coreport.Logger) *CatalogRepository {
	return &CatalogRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func (r *CatalogRepository) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	var row model.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, r.mapLookupError(err, errs.ErrProductNotFound, "get product", id)
	}
	return &entity.Product{ID: row.ID, Name: row.Name, IsActive: row.IsActive}, nil
}

func (r *CatalogRepository) GetPackage(ctx context.Context, id string) (*entity.Package, error) {
	var row model.Package
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, r.mapLookupError(err, errs.ErrPackageNotFound, "get package", id)
	}
	return &entity.Package{
		ID:               row.ID,
		ProductID:        row.ProductID,
		Name:             row.Name,
		Price:            row.Price,
		Amount:           row.Amount,
		Unit:             row.Unit,
		IsActive:         row.IsActive,
		ProviderEntityID: row.ProviderEntityID,
		ProviderDenomID:  row.ProviderDenomID,
	}, nil
}

func (r *CatalogRepository) GetPaymentMethod(ctx context.Context, id string) (*entity.PaymentMethod, error) {
	var row model.PaymentMethod
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, r.mapLookupError(err, errs.ErrPaymentMethodNotFound, "get payment method", id)
	}
	return &entity.PaymentMethod{
		ID:         row.ID,
		Name:       row.Name,
		FeePercent: row.FeePercent,
		FeeFixed:   row.FeeFixed,
		IsActive:   row.IsActive,
	}, nil
}

// SaveProduct inserts or replaces a product
func (r *CatalogRepository) SaveProduct(ctx context.Context, product *entity.Product) error {
	row := model.Product{ID: product.ID, Name: product.Name, IsActive: product.IsActive}
	return r.upsert(ctx, &row, "save product", product.ID)
}

// SavePackage inserts or replaces a package
func (r *CatalogRepository) SavePackage(ctx context.Context, pkg *entity.Package) error {
	row := model.Package{
		ID:               pkg.ID,
		ProductID:        pkg.ProductID,
		Name:             pkg.Name,
		Price:            pkg.Price,
		Amount:           pkg.Amount,
		Unit:             pkg.Unit,
		IsActive:         pkg.IsActive,
		ProviderEntityID: pkg.ProviderEntityID,
		ProviderDenomID:  pkg.ProviderDenomID,
	}
	return r.upsert(ctx, &row, "save package", pkg.ID)
}

// SavePaymentMethod inserts or replaces a payment method
func (r *CatalogRepository) SavePaymentMethod(ctx context.Context, method *entity.PaymentMethod) error {
	row := model.PaymentMethod{
		ID:         method.ID,
		Name:       method.Name,
		FeePercent: method.FeePercent,
		FeeFixed:   method.FeeFixed,
		IsActive:   method.IsActive,
	}
	return r.upsert(ctx, &row, "save payment method", method.ID)
}

func (r *CatalogRepository) upsert(ctx context.Context, row any, operation, id string) error {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(row).Error
	if err != nil {
		return wrapDatabaseError(r.logger, r.errorClassifier, operation, err, map[string]any{"id": id})
	}
	return nil
}

func (r *CatalogRepository) mapLookupError(err error, notFound error, operation, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return wrapDatabaseError(r.logger, r.errorClassifier, operation, err, map[string]any{"id": id})
}
