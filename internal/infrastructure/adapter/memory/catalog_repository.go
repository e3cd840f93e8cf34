package memory

import (
	"context"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
)

type catalogRepository struct {
	store *Store
}

func (r *catalogRepository) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	var product *entity.Product
	err := r.store.access(ctx, func(func(func())) error {
		p, ok := r.store.products[id]
		if !ok {
			return errs.ErrProductNotFound
		}
		product = &p
		return nil
	})
	return product, err
}

func (r *catalogRepository) GetPackage(ctx context.Context, id string) (*entity.Package, error) {
	var pkg *entity.Package
	err := r.store.access(ctx, func(func(func())) error {
		p, ok := r.store.packages[id]
		if !ok {
			return errs.ErrPackageNotFound
		}
		pkg = &p
		return nil
	})
	return pkg, err
}

func (r *catalogRepository) GetPaymentMethod(ctx context.Context, id string) (*entity.PaymentMethod, error) {
	var method *entity.PaymentMethod
	err := r.store.access(ctx, func(func(func())) error {
		m, ok := r.store.methods[id]
		if !ok {
			return errs.ErrPaymentMethodNotFound
		}
		method = &m
		return nil
	})
	return method, err
}

func (r *catalogRepository) SaveProduct(ctx context.Context, product *entity.Product) error {
	return r.store.access(ctx, func(record func(func())) error {
		prev, existed := r.store.products[product.ID]
		r.store.products[product.ID] = *product
		record(func() {
			if existed {
				r.store.products[product.ID] = prev
			} else {
				delete(r.store.products, product.ID)
			}
		})
		return nil
	})
}

func (r *catalogRepository) SavePackage(ctx context.Context, pkg *entity.Package) error {
	return r.store.access(ctx, func(record func(func())) error {
		prev, existed := r.store.packages[pkg.ID]
		r.store.packages[pkg.ID] = *pkg
		record(func() {
			if existed {
				r.store.packages[pkg.ID] = prev
			} else {
				delete(r.store.packages, pkg.ID)
			}
		})
		return nil
	})
}

func (r *catalogRepository) SavePaymentMethod(ctx context.Context, method *entity.PaymentMethod) error {
	return r.store.access(ctx, func(record func(func())) error {
		prev, existed := r.store.methods[method.ID]
		r.store.methods[method.ID] = *method
		record(func() {
			if existed {
				r.store.methods[method.ID] = prev
			} else {
				delete(r.store.methods, method.ID)
			}
		})
		return nil
	})
}
