package migration

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/usecase"
	"github.com/shopspring/decimal"
)

var demoProducts = []*entity.Product{
	{ID: "prod-mlbb", Name: "Mobile Legends", IsActive: true},
	{ID: "prod-ff", Name: "Free Fire", IsActive: true},
	{ID: "prod-gplay", Name: "Google Play Voucher", IsActive: true},
}

var demoPackages = []*entity.Package{
	{ID: "pkg-mlbb-86", ProductID: "prod-mlbb", Name: "86 Diamonds", Price: 10000, Amount: 86, Unit: "diamond", IsActive: true, ProviderEntityID: "MLBB", ProviderDenomID: "MLBB-86"},
	{ID: "pkg-mlbb-172", ProductID: "prod-mlbb", Name: "172 Diamonds", Price: 20000, Amount: 172, Unit: "diamond", IsActive: true, ProviderEntityID: "MLBB", ProviderDenomID: "MLBB-172"},
	{ID: "pkg-ff-100", ProductID: "prod-ff", Name: "100 Diamonds", Price: 15000, Amount: 100, Unit: "diamond", IsActive: true, ProviderEntityID: "FF", ProviderDenomID: "FF-100"},
	{ID: "pkg-gplay-50k", ProductID: "prod-gplay", Name: "Voucher 50K", Price: 50000, Amount: 1, Unit: "voucher", IsActive: true},
}

var demoPaymentMethods = []*entity.PaymentMethod{
	{ID: "pm-wallet", Name: "Wallet Balance", FeePercent: decimal.Zero, FeeFixed: 0, IsActive: true},
	{ID: "pm-ewallet", Name: "E-Wallet", FeePercent: decimal.RequireFromString("2.5"), FeeFixed: 500, IsActive: true},
	{ID: "pm-va", Name: "Bank Virtual Account", FeePercent: decimal.NewFromInt(1), FeeFixed: 1000, IsActive: true},
}

// demoBalances are credited only to users that have no balance yet
var demoBalances = map[string]int64{
	"demo-user-1": 100000,
	"demo-user-2": 25000,
}

// SeedDemoCatalog writes a small catalog and funds demo users.
// Running it again leaves existing balances untouched.
func SeedDemoCatalog(ctx context.Context, uow persistence.UnitOfWork, ledger usecase.LedgerUseCase, logger coreport.Logger) error {
	catalog := uow.GetCatalogRepository(ctx)

	for _, product := range demoProducts {
		if err := catalog.SaveProduct(ctx, product); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", product.ID, err)
		}
	}
	for _, pkg := range demoPackages {
		if err := catalog.SavePackage(ctx, pkg); err != nil {
			return fmt.Errorf("failed to seed package %s: %w", pkg.ID, err)
		}
	}
	for _, method := range demoPaymentMethods {
		if err := catalog.SavePaymentMethod(ctx, method); err != nil {
			return fmt.Errorf("failed to seed payment method %s: %w", method.ID, err)
		}
	}

	funded := 0
	for userID, amount := range demoBalances {
		balance, err := ledger.GetBalance(ctx, userID)
		if err != nil {
			return err
		}
		if balance > 0 {
			continue
		}
		if _, err := ledger.Credit(ctx, userID, amount); err != nil {
			return fmt.Errorf("failed to fund demo user %s: %w", userID, err)
		}
		funded++
	}

	logger.Info("Demo catalog seeded", map[string]any{
		"products":        len(demoProducts),
		"packages":        len(demoPackages),
		"payment_methods": len(demoPaymentMethods),
		"funded_users":    funded,
	})
	return nil
}
