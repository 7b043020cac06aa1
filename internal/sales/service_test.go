package sales

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopmasterhq/shopmaster-backend/internal/catalog"
	"github.com/shopmasterhq/shopmaster-backend/pkg/db"
	"github.com/shopmasterhq/shopmaster-backend/pkg/db/models"
	"github.com/shopmasterhq/shopmaster-backend/pkg/enums"
	pkgerrors "github.com/shopmasterhq/shopmaster-backend/pkg/errors"
)

type fixture struct {
	svc      Service
	products *catalog.Repository
	sales    *Repository
}

func newFixture(t *testing.T) *fixture {
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

	if err := conn.AutoMigrate(
		&models.Product{}, &models.Sale{}, &models.SaleLineItem{}, &models.StockMovement{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	products := catalog.NewRepository(conn)
	salesRepo := NewRepository(conn)
	svc, err := NewService(db.NewFromConn(conn), salesRepo, products, nil, nil)
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return &fixture{svc: svc, products: products, sales: salesRepo}
}

func (f *fixture) seedProduct(t *testing.T, p *models.Product) *models.Product {
	t.Helper()
	created, err := f.products.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("seeding product failed: %v", err)
	}
	return created
}

func basmatiRice() *models.Product {
	return &models.Product{
		ShopType:          enums.ShopTypeGeneralStore,
		Name:              "Basmati Rice",
		Category:          "Grains",
		SKU:               "RIC001",
		PurchasePrice:     decimal.NewFromInt(80),
		SellingPrice:      decimal.NewFromInt(120),
		UnitType:          enums.UnitTypeKG,
		Stock:             decimal.NewFromInt(50),
		LowStockThreshold: decimal.NewFromInt(5),
	}
}

func bluePen() *models.Product {
	return &models.Product{
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

func TestCommitDerivesTotalsAndDecrementsStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rice := f.seedProduct(t, basmatiRice())

	sale, err := f.svc.Commit(ctx, CommitSaleInput{
		ShopType:    enums.ShopTypeGeneralStore,
		PaymentMode: enums.PaymentModeCash,
		Lines: []CommitLineInput{
			{ProductID: rice.ID, Quantity: decimal.NewFromInt(10)},
		},
	})
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if !sale.TotalAmount.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("expected total 1200, got %s", sale.TotalAmount)
	}
	if !sale.TotalProfit.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("expected profit 400, got %s", sale.TotalProfit)
	}

	after, err := f.products.FindByID(ctx, rice.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !after.Stock.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected stock 40, got %s", after.Stock)
	}

	movements, err := f.products.ListMovements(ctx, rice.ID)
	if err != nil {
		t.Fatalf("listing movements failed: %v", err)
	}
	if len(movements) != 1 || movements[0].Type != enums.StockMovementSale {
		t.Fatalf("expected one SALE movement, got %+v", movements)
	}
	if movements[0].SaleID == nil || *movements[0].SaleID != sale.ID {
		t.Fatalf("movement not linked to sale")
	}
}

func TestCommitRoundsWeighedSubtotals(t *testing.T) {
	f := newFixture(t)
	rice := f.seedProduct(t, basmatiRice())

	sale, err := f.svc.Commit(context.Background(), CommitSaleInput{
		ShopType:    enums.ShopTypeGeneralStore,
		PaymentMode: enums.PaymentModeDigital,
		Lines: []CommitLineInput{
			{ProductID: rice.ID, Quantity: decimal.RequireFromString("0.256")},
		},
	})
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if !sale.Items[0].Subtotal.Equal(decimal.RequireFromString("30.72")) {
		t.Fatalf("expected subtotal 30.72, got %s", sale.Items[0].Subtotal)
	}
}

func TestCommitUnknownProductLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pen := f.seedProduct(t, bluePen())

	_, err := f.svc.Commit(ctx, CommitSaleInput{
		ShopType:    enums.ShopTypeStationery,
		PaymentMode: enums.PaymentModeCash,
		Lines: []CommitLineInput{
			{ProductID: pen.ID, Quantity: decimal.NewFromInt(2)},
			{ProductID: uuid.New(), Quantity: decimal.NewFromInt(1)},
		},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeProductNotFound {
		t.Fatalf("expected product not found, got %v", err)
	}

	after, err := f.products.FindByID(ctx, pen.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !after.Stock.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("stock moved on failed commit: %s", after.Stock)
	}

	count, err := f.sales.Count(ctx, enums.ShopTypeStationery)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no recorded sales, got %d", count)
	}
}

func TestCommitAggregatesQuantitiesAcrossLines(t *testing.T) {
	f := newFixture(t)
	rice := basmatiRice()
	rice.Stock = decimal.NewFromInt(5)
	seeded := f.seedProduct(t, rice)

	// Two weighed lines of the same product must clear stock together.
	_, err := f.svc.Commit(context.Background(), CommitSaleInput{
		ShopType:    enums.ShopTypeGeneralStore,
		PaymentMode: enums.PaymentModeCash,
		Lines: []CommitLineInput{
			{ProductID: seeded.ID, Quantity: decimal.NewFromInt(3)},
			{ProductID: seeded.ID, Quantity: decimal.NewFromInt(3)},
		},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	shortage, ok := typed.Details().(pkgerrors.StockShortage)
	if !ok {
		t.Fatalf("expected shortage details, got %T", typed.Details())
	}
	if shortage.Requested != "6" || shortage.Available != "5" {
		t.Fatalf("unexpected shortage %+v", shortage)
	}
}

func TestCommitRejectsFractionalUnitQuantity(t *testing.T) {
	f := newFixture(t)
	pen := f.seedProduct(t, bluePen())

	_, err := f.svc.Commit(context.Background(), CommitSaleInput{
		ShopType:    enums.ShopTypeStationery,
		PaymentMode: enums.PaymentModeCash,
		Lines: []CommitLineInput{
			{ProductID: pen.ID, Quantity: decimal.RequireFromString("2.5")},
		},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInvalidQuantity {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
}

func TestCommitRejectsShopMismatch(t *testing.T) {
	f := newFixture(t)
	pen := f.seedProduct(t, bluePen())

	_, err := f.svc.Commit(context.Background(), CommitSaleInput{
		ShopType:    enums.ShopTypeGeneralStore,
		PaymentMode: enums.PaymentModeCash,
		Lines: []CommitLineInput{
			{ProductID: pen.ID, Quantity: decimal.NewFromInt(1)},
		},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCommitCrossChecksDeclaredTotal(t *testing.T) {
	f := newFixture(t)
	pen := f.seedProduct(t, bluePen())

	declared := decimal.NewFromInt(999)
	_, err := f.svc.Commit(context.Background(), CommitSaleInput{
		ShopType:      enums.ShopTypeStationery,
		PaymentMode:   enums.PaymentModeCash,
		DeclaredTotal: &declared,
		Lines: []CommitLineInput{
			{ProductID: pen.ID, Quantity: decimal.NewFromInt(2)},
		},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	matching := decimal.NewFromInt(20)
	if _, err := f.svc.Commit(context.Background(), CommitSaleInput{
		ShopType:      enums.ShopTypeStationery,
		PaymentMode:   enums.PaymentModeCash,
		DeclaredTotal: &matching,
		Lines: []CommitLineInput{
			{ProductID: pen.ID, Quantity: decimal.NewFromInt(2)},
		},
	}); err != nil {
		t.Fatalf("matching declared total rejected: %v", err)
	}
}

func TestCommitValidatesInputShape(t *testing.T) {
	f := newFixture(t)
	pen := f.seedProduct(t, bluePen())

	cases := []struct {
		name string
		in   CommitSaleInput
		code pkgerrors.Code
	}{
		{
			"no lines",
			CommitSaleInput{ShopType: enums.ShopTypeStationery, PaymentMode: enums.PaymentModeCash},
			pkgerrors.CodeValidation,
		},
		{
			"bad payment mode",
			CommitSaleInput{
				ShopType:    enums.ShopTypeStationery,
				PaymentMode: enums.PaymentMode("CHEQUE"),
				Lines:       []CommitLineInput{{ProductID: pen.ID, Quantity: decimal.NewFromInt(1)}},
			},
			pkgerrors.CodeValidation,
		},
		{
			"zero quantity",
			CommitSaleInput{
				ShopType:    enums.ShopTypeStationery,
				PaymentMode: enums.PaymentModeCash,
				Lines:       []CommitLineInput{{ProductID: pen.ID, Quantity: decimal.Zero}},
			},
			pkgerrors.CodeInvalidQuantity,
		},
		{
			"too precise weight",
			CommitSaleInput{
				ShopType:    enums.ShopTypeStationery,
				PaymentMode: enums.PaymentModeCash,
				Lines:       []CommitLineInput{{ProductID: pen.ID, Quantity: decimal.RequireFromString("0.1234")}},
			},
			pkgerrors.CodeInvalidQuantity,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Commit(context.Background(), tc.in)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != tc.code {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestHistoryIsMostRecentFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pen := f.seedProduct(t, bluePen())

	first, err := f.svc.Commit(ctx, CommitSaleInput{
		ShopType:    enums.ShopTypeStationery,
		PaymentMode: enums.PaymentModeCash,
		Lines:       []CommitLineInput{{ProductID: pen.ID, Quantity: decimal.NewFromInt(1)}},
	})
	if err != nil {
		t.Fatalf("first commit failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	second, err := f.svc.Commit(ctx, CommitSaleInput{
		ShopType:    enums.ShopTypeStationery,
		PaymentMode: enums.PaymentModeDigital,
		Lines:       []CommitLineInput{{ProductID: pen.ID, Quantity: decimal.NewFromInt(2)}},
	})
	if err != nil {
		t.Fatalf("second commit failed: %v", err)
	}

	page, err := f.svc.History(ctx, enums.ShopTypeStationery, 1, 10)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if page.Total != 2 || len(page.Sales) != 2 {
		t.Fatalf("expected two sales, got %+v", page)
	}
	if page.Sales[0].ID != second.ID || page.Sales[1].ID != first.ID {
		t.Fatalf("history not most recent first")
	}
}

func TestHistoryPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pen := f.seedProduct(t, bluePen())

	for i := 0; i < 3; i++ {
		if _, err := f.svc.Commit(ctx, CommitSaleInput{
			ShopType:    enums.ShopTypeStationery,
			PaymentMode: enums.PaymentModeCash,
			Lines:       []CommitLineInput{{ProductID: pen.ID, Quantity: decimal.NewFromInt(1)}},
		}); err != nil {
			t.Fatalf("commit %d failed: %v", i, err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	page, err := f.svc.History(ctx, enums.ShopTypeStationery, 2, 2)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if page.Total != 3 || len(page.Sales) != 1 {
		t.Fatalf("expected 1 sale on page 2 of 3, got %+v", page)
	}
}

func TestCommitSnapshotsProductName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pen := f.seedProduct(t, bluePen())

	sale, err := f.svc.Commit(ctx, CommitSaleInput{
		ShopType:    enums.ShopTypeStationery,
		PaymentMode: enums.PaymentModeCash,
		Lines:       []CommitLineInput{{ProductID: pen.ID, Quantity: decimal.NewFromInt(1)}},
	})
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	pen.Name = "Renamed Pen"
	if _, err := f.products.Save(ctx, pen); err != nil {
		t.Fatalf("rename failed: %v", err)
	}

	loaded, err := f.svc.GetSale(ctx, sale.ID)
	if err != nil {
		t.Fatalf("get sale failed: %v", err)
	}
	if loaded.Items[0].ProductName != "Blue Gel Pen" {
		t.Fatalf("expected snapshotted name, got %q", loaded.Items[0].ProductName)
	}
}
