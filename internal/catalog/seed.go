package catalog

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopmasterhq/shopmaster-backend/pkg/enums"
	"github.com/shopmasterhq/shopmaster-backend/pkg/errors"
)

// Categories lists the selectable product categories per shop profile.
var Categories = map[enums.ShopType][]string{
	enums.ShopTypeStationery:   {"Pen", "Copy", "Marker", "Register", "File", "Eraser", "Pencil"},
	enums.ShopTypeGeneralStore: {"Grains", "Dairy", "Snacks", "Beverages", "Spices", "Soap", "Oil"},
}

// SeedDefaultCatalog inserts the starter catalog on first boot. A non-empty
// catalog is left alone, so re-running it is safe.
func (s *service) SeedDefaultCatalog(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "counting catalog entries")
	}
	if count > 0 {
		return nil
	}

	defaults := []CreateProductInput{
		{
			ShopType:          enums.ShopTypeStationery,
			Name:              "Blue Gel Pen",
			Category:          "Pen",
			SKU:               "PEN001",
			PurchasePrice:     decimal.NewFromInt(5),
			SellingPrice:      decimal.NewFromInt(10),
			UnitType:          enums.UnitTypeUnit,
			Stock:             decimal.NewFromInt(100),
			LowStockThreshold: decimal.NewFromInt(20),
		},
		{
			ShopType:          enums.ShopTypeStationery,
			Name:              "A4 Register 200pg",
			Category:          "Register",
			SKU:               "REG001",
			PurchasePrice:     decimal.NewFromInt(40),
			SellingPrice:      decimal.NewFromInt(75),
			UnitType:          enums.UnitTypeUnit,
			Stock:             decimal.NewFromInt(50),
			LowStockThreshold: decimal.NewFromInt(10),
		},
		{
			ShopType:          enums.ShopTypeGeneralStore,
			Name:              "Basmati Rice",
			Category:          "Grains",
			SKU:               "RIC001",
			PurchasePrice:     decimal.NewFromInt(80),
			SellingPrice:      decimal.NewFromInt(120),
			UnitType:          enums.UnitTypeKG,
			Stock:             decimal.NewFromInt(50),
			LowStockThreshold: decimal.NewFromInt(5),
		},
		{
			ShopType:          enums.ShopTypeGeneralStore,
			Name:              "Milk Chocolate Bar",
			Category:          "Snacks",
			SKU:               "SNK001",
			PurchasePrice:     decimal.NewFromInt(15),
			SellingPrice:      decimal.NewFromInt(20),
			UnitType:          enums.UnitTypeUnit,
			Stock:             decimal.NewFromInt(30),
			LowStockThreshold: decimal.NewFromInt(5),
		},
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, input := range defaults {
			product, buildErr := buildProduct(input)
			if buildErr != nil {
				return buildErr
			}
			if _, createErr := repo.Create(ctx, product); createErr != nil {
				return errors.Wrap(errors.CodeInternal, createErr, "seeding catalog")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info(s.logger.WithField(ctx, "count", len(defaults)), "seeded default catalog")
	}
	return nil
}
