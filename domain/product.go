package domain

import (
	"errors"
	"fmt"
	"mime/multipart"
	"time"
)

var (
	MessageSuccessAddProduct        = "product added successfully"
	MessageSuccessGetProducts       = "products retrieved successfully"
	MessageSuccessGetProductDetail  = "product details retrieved successfully"
	MessageSuccessOverridePrice     = "product price overridden successfully"
	MessageSuccessDeactivateProduct = "product deactivated successfully"
	MessageSuccessOptimizePricing   = "pricing optimization completed"
	MessageSuccessGetDashboardStats = "dashboard statistics retrieved successfully"

	MessageFailedAddProduct        = "failed to add product"
	MessageFailedGetProducts       = "failed to retrieve products"
	MessageFailedGetProductDetail  = "failed to retrieve product details"
	MessageFailedOverridePrice     = "failed to override product price"
	MessageFailedDeactivateProduct = "failed to deactivate product"
	MessageFailedOptimizePricing   = "failed to run pricing optimization"
	MessageFailedGetDashboardStats = "failed to retrieve dashboard statistics"

	ErrProductNotFound    = errors.New("product not found")
	ErrValidationFailed   = errors.New("validation failed")
	ErrInvalidPrice       = errors.New("price must not be negative")
	ErrProductDeactivated = errors.New("product is deactivated")
)

const (
	PriceSourcePolicy = "policy"
	PriceSourceManual = "manual"
)

var ProductCategories = []string{"fruits", "vegetables", "dairy", "meat", "bakery", "other"}

func IsValidCategory(category string) bool {
	for _, c := range ProductCategories {
		if c == category {
			return true
		}
	}
	return false
}

// ValidationError carries the offending field names alongside ErrValidationFailed.
func ValidationError(fields ...string) error {
	return fmt.Errorf("%w: %v", ErrValidationFailed, fields)
}

type (
	AddProductRequest struct {
		Name       string                `json:"name" form:"name" validate:"required"`
		Category   string                `json:"category" form:"category" validate:"required"`
		BasePrice  float64               `json:"base_price" form:"base_price" validate:"required,gt=0"`
		ExpiryDate string                `json:"expiry_date" form:"expiry_date" validate:"required"`
		Image      *multipart.FileHeader `json:"-" form:"image"`
	}

	ProductResponse struct {
		ID             string     `json:"id"`
		Name           string     `json:"name"`
		Category       string     `json:"category"`
		BasePrice      float64    `json:"base_price"`
		CurrentPrice   float64    `json:"current_price"`
		FreshnessScore int        `json:"freshness_score"`
		ExpiryDate     time.Time  `json:"expiry_date"`
		LastScanned    *time.Time `json:"last_scanned,omitempty"`
		PriceSource    string     `json:"price_source"`
		ImageURL       string     `json:"image_url,omitempty"`
		CreatedAt      time.Time  `json:"created_at"`
	}

	OverridePriceRequest struct {
		Price float64 `json:"price" validate:"min=0"`
	}

	PriceUpdate struct {
		ProductID string  `json:"product_id"`
		Name      string  `json:"name"`
		OldPrice  float64 `json:"old_price"`
		NewPrice  float64 `json:"new_price"`
	}

	PriceUpdateFailure struct {
		ProductID string `json:"product_id"`
		Name      string `json:"name"`
		Reason    string `json:"reason"`
	}

	OptimizePricingResponse struct {
		UpdatedCount int                  `json:"updated_count"`
		Succeeded    int                  `json:"succeeded"`
		Updates      []PriceUpdate        `json:"updates"`
		Failures     []PriceUpdateFailure `json:"failures,omitempty"`
	}

	DashboardStatsResponse struct {
		TotalProducts     int     `json:"total_products"`
		FreshProducts     int     `json:"fresh_products"`
		WarningProducts   int     `json:"warning_products"`
		CriticalProducts  int     `json:"critical_products"`
		ExpiringSoon      int     `json:"expiring_soon"`
		AverageFreshness  float64 `json:"average_freshness"`
		EstimatedMarkdown float64 `json:"estimated_markdown"`
	}
)
