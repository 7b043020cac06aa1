package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopmasterhq/shopmaster-backend/pkg/db/models"
	"github.com/shopmasterhq/shopmaster-backend/pkg/enums"
)

// Repository wires together product catalog persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDLocked loads the product under a row-level write lock. Only
// meaningful inside a transaction; sqlite ignores the clause, where the
// connection-level write lock gives the same guarantee.
func (r *Repository) FindByIDLocked(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := lockForUpdate(r.db.WithContext(ctx)).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Create persists a new product.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Save writes all product columns back.
func (r *Repository) Save(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// ListByShop returns the catalog for one shop profile, optionally filtered by
// a case-insensitive search across name, SKU, and category.
func (r *Repository) ListByShop(ctx context.Context, shop enums.ShopType, search string) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("shop_type = ?", shop).
		Order("name ASC")

	if term := strings.TrimSpace(search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(category) LIKE ?",
			like, like, like,
		)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListLowStock returns products at or below their alert threshold.
func (r *Repository) ListLowStock(ctx context.Context, shop enums.ShopType) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("shop_type = ? AND stock <= low_stock_threshold", shop).
		Order("stock ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// Count reports the total number of catalog entries.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CreateMovement appends one stock movement audit row.
func (r *Repository) CreateMovement(ctx context.Context, movement *models.StockMovement) error {
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(movement).Error
}

// ListMovements returns the audit trail for one product, newest first.
func (r *Repository) ListMovements(ctx context.Context, productID uuid.UUID) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}
