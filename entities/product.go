package entities

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name           string     `json:"name"`
	Category       string     `json:"category"` // "fruits", "vegetables", "dairy", "meat", "bakery", "other"
	BasePrice      float64    `json:"base_price"`
	CurrentPrice   float64    `json:"current_price"`
	FreshnessScore int        `gorm:"default:100" json:"freshness_score"`
	ExpiryDate     time.Time  `json:"expiry_date"`
	LastScanned    *time.Time `json:"last_scanned,omitempty"`
	IsActive       bool       `gorm:"default:true" json:"is_active"`
	PriceSource    string     `gorm:"default:policy" json:"price_source"` // "policy", "manual"
	ImageURL       string     `json:"image_url,omitempty"`

	Observations []*FreshnessObservation `gorm:"foreignKey:ProductID" json:"-"`
	Timestamp
}
