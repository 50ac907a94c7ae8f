package product

import (
	"FreshMart-Backend/domain"
	"FreshMart-Backend/entities"
	"FreshMart-Backend/internal/utils/storage"
	"FreshMart-Backend/pkg/pricing"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	ProductService interface {
		AddProduct(ctx context.Context, req domain.AddProductRequest) (domain.ProductResponse, error)
		GetProducts(ctx context.Context, category string, page, limit int) ([]domain.ProductResponse, int64, error)
		GetProductByID(ctx context.Context, id string) (domain.ProductResponse, error)
		OverridePrice(ctx context.Context, id string, req domain.OverridePriceRequest) (domain.ProductResponse, error)
		DeactivateProduct(ctx context.Context, id string) error
		GetDashboardStats(ctx context.Context) (domain.DashboardStatsResponse, error)
	}

	productService struct {
		productRepository ProductRepository
		s3                storage.AwsS3
	}
)

func NewProductService(productRepository ProductRepository, s3 storage.AwsS3) ProductService {
	return &productService{
		productRepository: productRepository,
		s3:                s3,
	}
}

func (s *productService) AddProduct(ctx context.Context, req domain.AddProductRequest) (domain.ProductResponse, error) {
	var invalid []string

	if req.Name == "" {
		invalid = append(invalid, "name")
	}
	if !domain.IsValidCategory(req.Category) {
		invalid = append(invalid, "category")
	}
	if req.BasePrice <= 0 {
		invalid = append(invalid, "base_price")
	}

	expiryDate, err := time.Parse("2006-01-02", req.ExpiryDate)
	if err != nil {
		invalid = append(invalid, "expiry_date")
	} else {
		today := time.Now().Truncate(24 * time.Hour)
		if expiryDate.Before(today) {
			invalid = append(invalid, "expiry_date")
		}
	}

	if len(invalid) > 0 {
		return domain.ProductResponse{}, domain.ValidationError(invalid...)
	}

	// New products start at full freshness, priced through the policy.
	currentPrice, err := pricing.ComputePrice(req.BasePrice, 100, expiryDate, time.Now())
	if err != nil {
		return domain.ProductResponse{}, err
	}

	id := uuid.New()

	imageURL := ""
	if req.Image != nil {
		objectKey, err := s.s3.UploadFile(fmt.Sprintf("product-%s", id.String()), req.Image, "products", storage.AllowImage...)
		if err != nil {
			return domain.ProductResponse{}, err
		}
		imageURL = s.s3.GetPublicLinkKey(objectKey)
	}

	product := &entities.Product{
		ID:             id,
		Name:           req.Name,
		Category:       req.Category,
		BasePrice:      req.BasePrice,
		CurrentPrice:   currentPrice,
		FreshnessScore: 100,
		ExpiryDate:     expiryDate,
		IsActive:       true,
		PriceSource:    domain.PriceSourcePolicy,
		ImageURL:       imageURL,
	}

	if err := s.productRepository.AddProduct(ctx, product); err != nil {
		return domain.ProductResponse{}, err
	}

	return toProductResponse(product), nil
}

func (s *productService) GetProducts(ctx context.Context, category string, page, limit int) ([]domain.ProductResponse, int64, error) {
	products, count, err := s.productRepository.GetProducts(ctx, category, page, limit)
	if err != nil {
		return nil, 0, err
	}

	response := make([]domain.ProductResponse, 0, len(products))
	for _, p := range products {
		response = append(response, toProductResponse(p))
	}

	return response, count, nil
}

func (s *productService) GetProductByID(ctx context.Context, id string) (domain.ProductResponse, error) {
	product, err := s.productRepository.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ProductResponse{}, domain.ErrProductNotFound
		}
		return domain.ProductResponse{}, err
	}

	return toProductResponse(product), nil
}

func (s *productService) OverridePrice(ctx context.Context, id string, req domain.OverridePriceRequest) (domain.ProductResponse, error) {
	if req.Price < 0 {
		return domain.ProductResponse{}, domain.ErrInvalidPrice
	}

	product, err := s.productRepository.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ProductResponse{}, domain.ErrProductNotFound
		}
		return domain.ProductResponse{}, err
	}

	if err := s.productRepository.UpdateProductPrice(ctx, id, req.Price, domain.PriceSourceManual); err != nil {
		return domain.ProductResponse{}, err
	}

	product.CurrentPrice = req.Price
	product.PriceSource = domain.PriceSourceManual

	return toProductResponse(product), nil
}

func (s *productService) DeactivateProduct(ctx context.Context, id string) error {
	_, err := s.productRepository.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrProductNotFound
		}
		return err
	}

	return s.productRepository.DeactivateProduct(ctx, id)
}

func (s *productService) GetDashboardStats(ctx context.Context) (domain.DashboardStatsResponse, error) {
	stats, err := s.productRepository.GetDashboardStats(ctx)
	if err != nil {
		return domain.DashboardStatsResponse{}, err
	}

	return domain.DashboardStatsResponse{
		TotalProducts:     int(stats["total_products"].(int64)),
		FreshProducts:     int(stats["fresh_products"].(int64)),
		WarningProducts:   int(stats["warning_products"].(int64)),
		CriticalProducts:  int(stats["critical_products"].(int64)),
		ExpiringSoon:      int(stats["expiring_soon"].(int64)),
		AverageFreshness:  stats["average_freshness"].(float64),
		EstimatedMarkdown: stats["estimated_markdown"].(float64),
	}, nil
}

func toProductResponse(p *entities.Product) domain.ProductResponse {
	return domain.ProductResponse{
		ID:             p.ID.String(),
		Name:           p.Name,
		Category:       p.Category,
		BasePrice:      p.BasePrice,
		CurrentPrice:   p.CurrentPrice,
		FreshnessScore: p.FreshnessScore,
		ExpiryDate:     p.ExpiryDate,
		LastScanned:    p.LastScanned,
		PriceSource:    p.PriceSource,
		ImageURL:       p.ImageURL,
		CreatedAt:      p.CreatedAt,
	}
}
