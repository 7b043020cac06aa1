package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopmasterhq/shopmaster-backend/pkg/config"
	"github.com/shopmasterhq/shopmaster-backend/pkg/enums"
	pkgerrors "github.com/shopmasterhq/shopmaster-backend/pkg/errors"
)

// Service serves the per-shop and combined dashboards.
type Service interface {
	Summary(ctx context.Context, shop enums.ShopType) (*ShopSummary, error)
	RevenueTrend(ctx context.Context, shop enums.ShopType) ([]DailyRevenue, error)
	CategoryBreakdown(ctx context.Context, shop enums.ShopType) ([]CategorySales, error)
	Overview(ctx context.Context) (*CombinedOverview, error)
}

type service struct {
	repo *Repository
	cfg  config.ReportsConfig
	now  func() time.Time
}

// NewService wires the reporting service.
func NewService(repo *Repository, cfg config.ReportsConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports: repository is required")
	}
	if cfg.DailyWindowDays <= 0 {
		cfg.DailyWindowDays = 7
	}
	return &service{repo: repo, cfg: cfg, now: time.Now}, nil
}

func (s *service) Summary(ctx context.Context, shop enums.ShopType) (*ShopSummary, error) {
	if !shop.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown shop type")
	}

	count, revenue, profit, err := s.repo.SalesTotals(ctx, shop)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summing sales")
	}
	stockValue, err := s.repo.StockValue(ctx, shop)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "pricing stock")
	}
	lowStock, err := s.repo.LowStockCount(ctx, shop)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting low stock")
	}

	return &ShopSummary{
		ShopType:      shop,
		SaleCount:     count,
		TotalRevenue:  revenue,
		TotalProfit:   profit,
		StockValue:    stockValue,
		LowStockCount: lowStock,
	}, nil
}

// RevenueTrend returns one entry per day across the configured window, oldest
// first, with zero-revenue days filled in so charts keep a fixed width.
func (s *service) RevenueTrend(ctx context.Context, shop enums.ShopType) ([]DailyRevenue, error) {
	if !shop.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown shop type")
	}

	days := s.cfg.DailyWindowDays
	today := s.now().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(days - 1))

	byDay, err := s.repo.DailyRevenue(ctx, shop, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "grouping daily revenue")
	}

	trend := make([]DailyRevenue, days)
	for i := 0; i < days; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		revenue, ok := byDay[day]
		if !ok {
			revenue = decimal.Zero
		}
		trend[i] = DailyRevenue{Day: day, Revenue: revenue}
	}
	return trend, nil
}

func (s *service) CategoryBreakdown(ctx context.Context, shop enums.ShopType) ([]CategorySales, error) {
	if !shop.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown shop type")
	}
	breakdown, err := s.repo.CategorySales(ctx, shop)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "breaking down categories")
	}
	return breakdown, nil
}

// Overview rolls both shop profiles into the owner's combined view.
func (s *service) Overview(ctx context.Context) (*CombinedOverview, error) {
	overview := &CombinedOverview{
		TotalRevenue: decimal.Zero,
		TotalProfit:  decimal.Zero,
		Shops:        make([]ShopSummary, 0, len(enums.ShopTypes())),
	}

	for _, shop := range enums.ShopTypes() {
		summary, err := s.Summary(ctx, shop)
		if err != nil {
			return nil, err
		}
		overview.Shops = append(overview.Shops, *summary)
		overview.TotalRevenue = overview.TotalRevenue.Add(summary.TotalRevenue)
		overview.TotalProfit = overview.TotalProfit.Add(summary.TotalProfit)
	}
	return overview, nil
}
