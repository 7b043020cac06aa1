package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopmasterhq/shopmaster-backend/internal/catalog"
	"github.com/shopmasterhq/shopmaster-backend/pkg/db/models"
	"github.com/shopmasterhq/shopmaster-backend/pkg/enums"
	pkgerrors "github.com/shopmasterhq/shopmaster-backend/pkg/errors"
	"github.com/shopmasterhq/shopmaster-backend/pkg/logger"
	"github.com/shopmasterhq/shopmaster-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service commits sales and serves the sale history.
type Service interface {
	Commit(ctx context.Context, input CommitSaleInput) (*models.Sale, error)
	GetSale(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	History(ctx context.Context, shop enums.ShopType, page, pageSize int) (*HistoryPage, error)
}

type service struct {
	tx       txRunner
	repo     *Repository
	products *catalog.Repository
	metrics  *metrics.SaleMetrics
	logger   *logger.Logger
}

// NewService builds the sale committer.
func NewService(
	tx txRunner,
	repo *Repository,
	products *catalog.Repository,
	saleMetrics *metrics.SaleMetrics,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("sales: tx runner is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("sales: repository is required")
	}
	if products == nil {
		return nil, fmt.Errorf("sales: product repository is required")
	}
	return &service{
		tx:       tx,
		repo:     repo,
		products: products,
		metrics:  saleMetrics,
		logger:   logg,
	}, nil
}

// Commit validates every line against live stock and applies the sale in one
// transaction. Either the sale row, its items, every stock decrement, and the
// audit movements all land, or none of them do.
func (s *service) Commit(ctx context.Context, input CommitSaleInput) (*models.Sale, error) {
	if err := validateCommitInput(input); err != nil {
		s.reject(input.ShopType, err)
		return nil, err
	}

	var committed *models.Sale
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		salesRepo := s.repo.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		loaded, err := s.loadProducts(ctx, productRepo, input)
		if err != nil {
			return err
		}

		// Full validation pass before the first write. A same-product pair of
		// weighed lines must clear stock together, so requirements accumulate
		// per product rather than per line.
		required := make(map[uuid.UUID]decimal.Decimal, len(loaded))
		for _, line := range input.Lines {
			product := loaded[line.ProductID]
			if product.ShopType != input.ShopType {
				return pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("%s belongs to a different shop profile", product.Name))
			}
			if product.UnitType == enums.UnitTypeUnit && !line.Quantity.Equal(line.Quantity.Truncate(0)) {
				return pkgerrors.New(pkgerrors.CodeInvalidQuantity,
					fmt.Sprintf("%s sells in whole units", product.Name))
			}
			required[line.ProductID] = required[line.ProductID].Add(line.Quantity)
		}
		for productID, quantity := range required {
			product := loaded[productID]
			if product.Stock.LessThan(quantity) {
				return pkgerrors.InsufficientStock(product.Name, quantity.String(), product.Stock.String())
			}
		}

		sale := buildSale(input, loaded)
		if input.DeclaredTotal != nil && !input.DeclaredTotal.Equal(sale.TotalAmount) {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("declared total %s does not match computed total %s",
					input.DeclaredTotal, sale.TotalAmount))
		}

		if err := salesRepo.Create(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording sale")
		}

		for _, productID := range sortedProductIDs(required) {
			product := loaded[productID]
			product.Stock = product.Stock.Sub(required[productID])
			if _, err := productRepo.Save(ctx, product); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrementing stock")
			}
		}
		for _, line := range input.Lines {
			movement := &models.StockMovement{
				ProductID: line.ProductID,
				SaleID:    &sale.ID,
				Type:      enums.StockMovementSale,
				Quantity:  line.Quantity,
			}
			if err := productRepo.CreateMovement(ctx, movement); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording sale movement")
			}
		}

		committed = sale
		return nil
	})
	if err != nil {
		s.reject(input.ShopType, err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ObserveCommit(input.ShopType.String(), committed.TotalAmount.InexactFloat64())
	}
	if s.logger != nil {
		ctx = s.logger.WithFields(ctx, map[string]any{
			"sale_id":      committed.ID.String(),
			"shop_type":    committed.ShopType.String(),
			"total_amount": committed.TotalAmount.String(),
			"line_count":   len(committed.Items),
		})
		s.logger.Info(ctx, "sale committed")
	}
	return committed, nil
}

func (s *service) GetSale(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading sale")
	}
	return sale, nil
}

// History serves the shop's sale log most recent first. Page numbering starts
// at 1; pageSize 0 falls back to a single unbounded page.
func (s *service) History(ctx context.Context, shop enums.ShopType, page, pageSize int) (*HistoryPage, error) {
	if !shop.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown shop type")
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	sales, err := s.repo.List(ctx, shop, pageSize, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing sales")
	}
	total, err := s.repo.Count(ctx, shop)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting sales")
	}

	views := make([]SaleView, len(sales))
	for i, sale := range sales {
		views[i] = toSaleView(sale)
	}
	return &HistoryPage{Sales: views, Total: total}, nil
}

// loadProducts reads every referenced product under a write lock. Distinct
// ids are locked in sorted order so two concurrent commits can never hold
// each other's rows.
func (s *service) loadProducts(ctx context.Context, repo *catalog.Repository, input CommitSaleInput) (map[uuid.UUID]*models.Product, error) {
	distinct := make([]uuid.UUID, 0, len(input.Lines))
	seen := make(map[uuid.UUID]struct{}, len(input.Lines))
	for _, line := range input.Lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		distinct = append(distinct, line.ProductID)
	}
	sort.Slice(distinct, func(i, j int) bool {
		return distinct[i].String() < distinct[j].String()
	})

	loaded := make(map[uuid.UUID]*models.Product, len(distinct))
	for _, id := range distinct {
		product, err := repo.FindByIDLocked(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeProductNotFound, err,
					fmt.Sprintf("product %s not found", id))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading products")
		}
		loaded[id] = product
	}
	return loaded, nil
}

// buildSale derives every money figure from the locked catalog rows. Line
// subtotals round to 2dp at computation; the totals are sums of already
// rounded figures.
func buildSale(input CommitSaleInput, loaded map[uuid.UUID]*models.Product) *models.Sale {
	items := make([]models.SaleLineItem, len(input.Lines))
	total := decimal.Zero
	profit := decimal.Zero

	for i, line := range input.Lines {
		product := loaded[line.ProductID]
		subtotal := line.Quantity.Mul(product.SellingPrice).Round(2)
		items[i] = models.SaleLineItem{
			ID:          uuid.New(),
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   product.SellingPrice,
			Subtotal:    subtotal,
			Position:    i,
		}
		total = total.Add(subtotal)
		profit = profit.Add(line.Quantity.Mul(product.SellingPrice.Sub(product.PurchasePrice)))
	}

	return &models.Sale{
		ID:            uuid.New(),
		ShopType:      input.ShopType,
		CustomerName:  trimmedOrNil(input.CustomerName),
		CustomerPhone: trimmedOrNil(input.CustomerPhone),
		TotalAmount:   total.Round(2),
		PaymentMode:   input.PaymentMode,
		TotalProfit:   profit.Round(2),
		Items:         items,
	}
}

func validateCommitInput(input CommitSaleInput) error {
	if !input.ShopType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown shop type")
	}
	if !input.PaymentMode.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment mode")
	}
	if len(input.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale needs at least one line")
	}
	for _, line := range input.Lines {
		if line.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "line product id is required")
		}
		if !line.Quantity.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeInvalidQuantity, "line quantity must be positive")
		}
		if !line.Quantity.Equal(line.Quantity.Round(3)) {
			return pkgerrors.New(pkgerrors.CodeInvalidQuantity, "weights carry at most three decimal places")
		}
	}
	return nil
}

func (s *service) reject(shop enums.ShopType, err error) {
	if s.metrics == nil {
		return
	}
	reason := "internal"
	if typed := pkgerrors.As(err); typed != nil {
		reason = string(typed.Code())
	}
	s.metrics.IncRejected(shop.String(), reason)
}

func sortedProductIDs(required map[uuid.UUID]decimal.Decimal) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(required))
	for id := range required {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func toSaleView(sale models.Sale) SaleView {
	items := make([]SaleItemView, len(sale.Items))
	for i, item := range sale.Items {
		items[i] = SaleItemView{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		}
	}
	return SaleView{
		ID:            sale.ID,
		ShopType:      sale.ShopType,
		CustomerName:  sale.CustomerName,
		CustomerPhone: sale.CustomerPhone,
		TotalAmount:   sale.TotalAmount,
		PaymentMode:   sale.PaymentMode,
		TotalProfit:   sale.TotalProfit,
		Items:         items,
		CreatedAt:     sale.CreatedAt.UTC().Format(time.RFC3339),
	}
}
