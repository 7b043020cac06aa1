package catalog

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopmasterhq/shopmaster-backend/pkg/db"
	"github.com/shopmasterhq/shopmaster-backend/pkg/db/models"
	"github.com/shopmasterhq/shopmaster-backend/pkg/enums"
	"github.com/shopmasterhq/shopmaster-backend/pkg/errors"
	"github.com/shopmasterhq/shopmaster-backend/pkg/logger"
)

// Service exposes catalog management for both shop profiles.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, shop enums.ShopType, search string) ([]models.Product, error)
	ListLowStock(ctx context.Context, shop enums.ShopType) ([]models.Product, error)
	AdjustStock(ctx context.Context, id uuid.UUID, input AdjustStockInput) (*models.Product, error)
	ProductMovements(ctx context.Context, id uuid.UUID) ([]models.StockMovement, error)
	SeedDefaultCatalog(ctx context.Context) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo   *Repository
	tx     txRunner
	logger *logger.Logger
}

// NewService wires the catalog service.
func NewService(repo *Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog: repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("catalog: tx runner is required")
	}
	return &service{repo: repo, tx: tx, logger: logg}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	product, err := buildProduct(input)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.Create(ctx, product)
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return errors.New(errors.CodeConflict, "a product with this SKU already exists")
			}
			return errors.Wrap(errors.CodeInternal, err, "creating product")
		}
		if created.Stock.IsPositive() {
			movement := &models.StockMovement{
				ProductID: created.ID,
				Type:      enums.StockMovementAdd,
				Quantity:  created.Stock,
			}
			if err := repo.CreateMovement(ctx, movement); err != nil {
				return errors.Wrap(errors.CodeInternal, err, "recording opening stock")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		ctx = s.logger.WithFields(ctx, map[string]any{
			"product_id": product.ID.String(),
			"shop_type":  product.ShopType.String(),
		})
		s.logger.Info(ctx, "product created")
	}
	return product, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	var updated *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := repo.FindByIDLocked(ctx, id)
		if err != nil {
			return asProductNotFound(err)
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return errors.New(errors.CodeValidation, "product name cannot be empty")
			}
			product.Name = name
		}
		if input.Category != nil {
			product.Category = strings.TrimSpace(*input.Category)
		}
		if input.PurchasePrice != nil {
			if input.PurchasePrice.IsNegative() {
				return errors.New(errors.CodeValidation, "purchase price cannot be negative")
			}
			product.PurchasePrice = input.PurchasePrice.Round(2)
		}
		if input.SellingPrice != nil {
			if input.SellingPrice.IsNegative() {
				return errors.New(errors.CodeValidation, "selling price cannot be negative")
			}
			product.SellingPrice = input.SellingPrice.Round(2)
		}
		if input.LowStockThreshold != nil {
			if input.LowStockThreshold.IsNegative() {
				return errors.New(errors.CodeValidation, "low stock threshold cannot be negative")
			}
			product.LowStockThreshold = *input.LowStockThreshold
		}

		updated, err = repo.Save(ctx, product)
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "updating product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, asProductNotFound(err)
	}
	return product, nil
}

// FindByID satisfies the cart's product loader.
func (s *service) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListProducts(ctx context.Context, shop enums.ShopType, search string) ([]models.Product, error) {
	if !shop.IsValid() {
		return nil, errors.New(errors.CodeValidation, "unknown shop type")
	}
	products, err := s.repo.ListByShop(ctx, shop, search)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing products")
	}
	return products, nil
}

func (s *service) ListLowStock(ctx context.Context, shop enums.ShopType) ([]models.Product, error) {
	if !shop.IsValid() {
		return nil, errors.New(errors.CodeValidation, "unknown shop type")
	}
	products, err := s.repo.ListLowStock(ctx, shop)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing low stock products")
	}
	return products, nil
}

// AdjustStock applies a manual stock change inside a transaction so the
// running balance and its audit row always move together.
func (s *service) AdjustStock(ctx context.Context, id uuid.UUID, input AdjustStockInput) (*models.Product, error) {
	switch input.Type {
	case enums.StockMovementAdd:
		if !input.Delta.IsPositive() {
			return nil, errors.New(errors.CodeValidation, "stock additions must be positive")
		}
	case enums.StockMovementAdjust:
		if input.Delta.IsZero() {
			return nil, errors.New(errors.CodeValidation, "adjustment delta cannot be zero")
		}
	default:
		return nil, errors.New(errors.CodeValidation, "unsupported stock movement type")
	}

	var updated *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := repo.FindByIDLocked(ctx, id)
		if err != nil {
			return asProductNotFound(err)
		}

		if product.UnitType == enums.UnitTypeUnit && !input.Delta.Equal(input.Delta.Truncate(0)) {
			return errors.New(errors.CodeValidation, "unit-counted products move in whole units")
		}

		next := product.Stock.Add(input.Delta)
		if next.IsNegative() {
			return errors.InsufficientStock(product.Name, input.Delta.Neg().String(), product.Stock.String())
		}
		product.Stock = next

		if updated, err = repo.Save(ctx, product); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "saving stock level")
		}

		movement := &models.StockMovement{
			ProductID: product.ID,
			Type:      input.Type,
			Quantity:  input.Delta,
		}
		if err := repo.CreateMovement(ctx, movement); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "recording stock movement")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) ProductMovements(ctx context.Context, id uuid.UUID) ([]models.StockMovement, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, asProductNotFound(err)
	}
	movements, err := s.repo.ListMovements(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing stock movements")
	}
	return movements, nil
}

func buildProduct(input CreateProductInput) (*models.Product, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}
	return &models.Product{
		ID:                uuid.New(),
		ShopType:          input.ShopType,
		Name:              strings.TrimSpace(input.Name),
		Category:          strings.TrimSpace(input.Category),
		SKU:               strings.TrimSpace(input.SKU),
		PurchasePrice:     input.PurchasePrice.Round(2),
		SellingPrice:      input.SellingPrice.Round(2),
		UnitType:          input.UnitType,
		Stock:             input.Stock,
		LowStockThreshold: input.LowStockThreshold,
	}, nil
}

func validateCreateInput(input CreateProductInput) error {
	if !input.ShopType.IsValid() {
		return errors.New(errors.CodeValidation, "unknown shop type")
	}
	if !input.UnitType.IsValid() {
		return errors.New(errors.CodeValidation, "unknown unit type")
	}
	if strings.TrimSpace(input.Name) == "" {
		return errors.New(errors.CodeValidation, "product name is required")
	}
	if strings.TrimSpace(input.SKU) == "" {
		return errors.New(errors.CodeValidation, "product SKU is required")
	}
	if input.PurchasePrice.IsNegative() || input.SellingPrice.IsNegative() {
		return errors.New(errors.CodeValidation, "prices cannot be negative")
	}
	if input.Stock.IsNegative() {
		return errors.New(errors.CodeValidation, "opening stock cannot be negative")
	}
	if input.LowStockThreshold.IsNegative() {
		return errors.New(errors.CodeValidation, "low stock threshold cannot be negative")
	}
	if input.UnitType == enums.UnitTypeUnit && !input.Stock.Equal(input.Stock.Truncate(0)) {
		return errors.New(errors.CodeValidation, "unit-counted products hold whole-unit stock")
	}
	return nil
}

// asProductNotFound maps missing rows to PRODUCT_NOT_FOUND. Anything else
// coming back from the repository is an infrastructure fault, not a stale
// product reference.
func asProductNotFound(err error) error {
	if typed := errors.As(err); typed != nil {
		return typed
	}
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(errors.CodeProductNotFound, err, "product not found")
	}
	return errors.Wrap(errors.CodeInternal, err, "loading product")
}
