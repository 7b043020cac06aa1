package catalog

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopmasterhq/shopmaster-backend/pkg/db"
	"github.com/shopmasterhq/shopmaster-backend/pkg/db/models"
	"github.com/shopmasterhq/shopmaster-backend/pkg/enums"
	pkgerrors "github.com/shopmasterhq/shopmaster-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("failed to get sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.AutoMigrate(&models.Product{}, &models.StockMovement{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	repo := NewRepository(conn)
	svc, err := NewService(repo, db.NewFromConn(conn), nil)
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return svc, repo
}

func penInput() CreateProductInput {
	return CreateProductInput{
		ShopType:          enums.ShopTypeStationery,
		Name:              "Blue Gel Pen",
		Category:          "Pen",
		SKU:               "PEN001",
		PurchasePrice:     decimal.NewFromInt(5),
		SellingPrice:      decimal.NewFromInt(10),
		UnitType:          enums.UnitTypeUnit,
		Stock:             decimal.NewFromInt(100),
		LowStockThreshold: decimal.NewFromInt(20),
	}
}

func TestCreateProductPersistsAndRecordsOpeningStock(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, penInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatalf("expected a generated id")
	}

	loaded, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if !loaded.Stock.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected stock 100, got %s", loaded.Stock)
	}

	movements, err := repo.ListMovements(ctx, created.ID)
	if err != nil {
		t.Fatalf("listing movements failed: %v", err)
	}
	if len(movements) != 1 || movements[0].Type != enums.StockMovementAdd {
		t.Fatalf("expected one ADD movement, got %+v", movements)
	}
}

func TestCreateProductRejectsDuplicateSKU(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateProduct(ctx, penInput()); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	input := penInput()
	input.Name = "Black Gel Pen"
	_, err := svc.CreateProduct(ctx, input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CreateProductInput)
	}{
		{"blank name", func(in *CreateProductInput) { in.Name = "  " }},
		{"blank sku", func(in *CreateProductInput) { in.SKU = "" }},
		{"negative price", func(in *CreateProductInput) { in.SellingPrice = decimal.NewFromInt(-1) }},
		{"negative stock", func(in *CreateProductInput) { in.Stock = decimal.NewFromInt(-5) }},
		{"fractional unit stock", func(in *CreateProductInput) { in.Stock = decimal.RequireFromString("2.5") }},
		{"bad shop type", func(in *CreateProductInput) { in.ShopType = enums.ShopType("MALL") }},
		{"bad unit type", func(in *CreateProductInput) { in.UnitType = enums.UnitType("LITRE") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := penInput()
			tc.mutate(&input)
			_, err := svc.CreateProduct(ctx, input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestUpdateProductAppliesPatch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, penInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	name := "Blue Gel Pen 0.5mm"
	price := decimal.RequireFromString("12.50")
	updated, err := svc.UpdateProduct(ctx, created.ID, UpdateProductInput{
		Name:         &name,
		SellingPrice: &price,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != name {
		t.Fatalf("expected name %q, got %q", name, updated.Name)
	}
	if !updated.SellingPrice.Equal(price) {
		t.Fatalf("expected price %s, got %s", price, updated.SellingPrice)
	}
	if !updated.PurchasePrice.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("untouched field changed: %s", updated.PurchasePrice)
	}
}

func TestUpdateProductUnknownID(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UpdateProduct(context.Background(), uuid.New(), UpdateProductInput{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeProductNotFound {
		t.Fatalf("expected product not found, got %v", err)
	}
}

func TestAdjustStockAddAndAudit(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, penInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.AdjustStock(ctx, created.ID, AdjustStockInput{
		Delta: decimal.NewFromInt(25),
		Type:  enums.StockMovementAdd,
	})
	if err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if !updated.Stock.Equal(decimal.NewFromInt(125)) {
		t.Fatalf("expected stock 125, got %s", updated.Stock)
	}

	movements, err := repo.ListMovements(ctx, created.ID)
	if err != nil {
		t.Fatalf("listing movements failed: %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("expected opening plus adjustment, got %d movements", len(movements))
	}
}

func TestAdjustStockNeverGoesNegative(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, penInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = svc.AdjustStock(ctx, created.ID, AdjustStockInput{
		Delta: decimal.NewFromInt(-101),
		Type:  enums.StockMovementAdjust,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	loaded, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if !loaded.Stock.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("stock changed after rejected adjustment: %s", loaded.Stock)
	}
}

func TestAdjustStockRejectsFractionalUnits(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, penInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = svc.AdjustStock(ctx, created.ID, AdjustStockInput{
		Delta: decimal.RequireFromString("1.5"),
		Type:  enums.StockMovementAdd,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAdjustStockAllowsFractionalKG(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	input := penInput()
	input.Name = "Basmati Rice"
	input.SKU = "RIC001"
	input.ShopType = enums.ShopTypeGeneralStore
	input.UnitType = enums.UnitTypeKG
	input.Stock = decimal.NewFromInt(50)
	created, err := svc.CreateProduct(ctx, input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.AdjustStock(ctx, created.ID, AdjustStockInput{
		Delta: decimal.RequireFromString("-2.250"),
		Type:  enums.StockMovementAdjust,
	})
	if err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if !updated.Stock.Equal(decimal.RequireFromString("47.75")) {
		t.Fatalf("expected stock 47.75, got %s", updated.Stock)
	}
}

func TestListProductsFiltersByShopAndSearch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.SeedDefaultCatalog(ctx); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	stationery, err := svc.ListProducts(ctx, enums.ShopTypeStationery, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(stationery) != 2 {
		t.Fatalf("expected 2 stationery products, got %d", len(stationery))
	}

	matches, err := svc.ListProducts(ctx, enums.ShopTypeGeneralStore, "rice")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(matches) != 1 || matches[0].Name != "Basmati Rice" {
		t.Fatalf("expected Basmati Rice, got %+v", matches)
	}
}

func TestListLowStock(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.SeedDefaultCatalog(ctx); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	products, err := svc.ListProducts(ctx, enums.ShopTypeGeneralStore, "chocolate")
	if err != nil || len(products) != 1 {
		t.Fatalf("expected chocolate bar, got %v (err %v)", products, err)
	}

	// 30 on hand, threshold 5. Drop to the threshold exactly.
	if _, err := svc.AdjustStock(ctx, products[0].ID, AdjustStockInput{
		Delta: decimal.NewFromInt(-25),
		Type:  enums.StockMovementAdjust,
	}); err != nil {
		t.Fatalf("adjust failed: %v", err)
	}

	low, err := svc.ListLowStock(ctx, enums.ShopTypeGeneralStore)
	if err != nil {
		t.Fatalf("low stock failed: %v", err)
	}
	if len(low) != 1 || low[0].Name != "Milk Chocolate Bar" {
		t.Fatalf("expected chocolate bar at threshold, got %+v", low)
	}
}

func TestAsProductNotFoundKeepsFaultsInternal(t *testing.T) {
	t.Parallel()

	missing := asProductNotFound(gorm.ErrRecordNotFound)
	if typed := pkgerrors.As(missing); typed == nil || typed.Code() != pkgerrors.CodeProductNotFound {
		t.Fatalf("expected PRODUCT_NOT_FOUND for a missing row, got %v", missing)
	}

	fault := asProductNotFound(stderrors.New("driver: bad connection"))
	if typed := pkgerrors.As(fault); typed == nil || typed.Code() != pkgerrors.CodeInternal {
		t.Fatalf("expected INTERNAL_ERROR for a repository fault, got %v", fault)
	}
}

func TestSeedDefaultCatalogIsIdempotent(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	if err := svc.SeedDefaultCatalog(ctx); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := svc.SeedDefaultCatalog(ctx); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 seeded products, got %d", count)
	}
}
