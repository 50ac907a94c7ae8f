package product

import (
	"FreshMart-Backend/entities"
	"context"
	"time"

	"gorm.io/gorm"
)

type (
	ProductRepository interface {
		AddProduct(ctx context.Context, product *entities.Product) error
		GetProductByID(ctx context.Context, id string) (*entities.Product, error)
		GetProducts(ctx context.Context, category string, page, limit int) ([]*entities.Product, int64, error)
		GetActiveProducts(ctx context.Context, category string) ([]*entities.Product, error)
		UpdateProductScore(ctx context.Context, id string, score int, scannedAt time.Time, imageURL string) error
		UpdateProductPrice(ctx context.Context, id string, price float64, source string) error
		DeactivateProduct(ctx context.Context, id string) error
		GetDashboardStats(ctx context.Context) (map[string]interface{}, error)
	}

	productRepository struct {
		db *gorm.DB
	}
)

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) AddProduct(ctx context.Context, product *entities.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) GetProductByID(ctx context.Context, id string) (*entities.Product, error) {
	var product entities.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) GetProducts(ctx context.Context, category string, page, limit int) ([]*entities.Product, int64, error) {
	var products []*entities.Product
	var count int64

	offset := (page - 1) * limit

	query := r.db.WithContext(ctx).Where("is_active = ?", true)

	if category != "" && category != "all" {
		query = query.Where("category = ?", category)
	}

	if err := query.Model(&entities.Product{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Offset(offset).Limit(limit).Order("expiry_date asc").Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, count, nil
}

func (r *productRepository) GetActiveProducts(ctx context.Context, category string) ([]*entities.Product, error) {
	var products []*entities.Product

	query := r.db.WithContext(ctx).Where("is_active = ?", true)

	if category != "" && category != "all" {
		query = query.Where("category = ?", category)
	}

	if err := query.Order("expiry_date asc").Find(&products).Error; err != nil {
		return nil, err
	}

	return products, nil
}

// UpdateProductScore touches only the scan-related columns so a concurrent
// re-pricing cannot be clobbered by a stale full-row save.
func (r *productRepository) UpdateProductScore(ctx context.Context, id string, score int, scannedAt time.Time, imageURL string) error {
	updates := map[string]interface{}{
		"freshness_score": score,
		"last_scanned":    scannedAt,
	}
	if imageURL != "" {
		updates["image_url"] = imageURL
	}

	return r.db.WithContext(ctx).Model(&entities.Product{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *productRepository) UpdateProductPrice(ctx context.Context, id string, price float64, source string) error {
	return r.db.WithContext(ctx).Model(&entities.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_price": price,
			"price_source":  source,
		}).Error
}

func (r *productRepository) DeactivateProduct(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&entities.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false}).Error
}

func (r *productRepository) GetDashboardStats(ctx context.Context) (map[string]interface{}, error) {
	var totalProducts, freshProducts, warningProducts, criticalProducts, expiringSoon int64
	var averageFreshness float64

	active := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&entities.Product{}).Where("is_active = ?", true)
	}

	if err := active().Count(&totalProducts).Error; err != nil {
		return nil, err
	}

	if err := active().Where("freshness_score >= ?", 70).Count(&freshProducts).Error; err != nil {
		return nil, err
	}

	if err := active().Where("freshness_score >= ? AND freshness_score < ?", 40, 70).Count(&warningProducts).Error; err != nil {
		return nil, err
	}

	if err := active().Where("freshness_score < ?", 40).Count(&criticalProducts).Error; err != nil {
		return nil, err
	}

	if err := active().Where("expiry_date <= ?", time.Now().AddDate(0, 0, 3)).Count(&expiringSoon).Error; err != nil {
		return nil, err
	}

	if totalProducts > 0 {
		if err := active().Select("AVG(freshness_score)").Scan(&averageFreshness).Error; err != nil {
			return nil, err
		}
	}

	var estimatedMarkdown float64
	if err := active().Select("COALESCE(SUM(base_price - current_price), 0)").Scan(&estimatedMarkdown).Error; err != nil {
		return nil, err
	}

	stats := map[string]interface{}{
		"total_products":     totalProducts,
		"fresh_products":     freshProducts,
		"warning_products":   warningProducts,
		"critical_products":  criticalProducts,
		"expiring_soon":      expiringSoon,
		"average_freshness":  averageFreshness,
		"estimated_markdown": estimatedMarkdown,
	}

	return stats, nil
}
