package entities

import (
	"time"

	"github.com/google/uuid"
)

// FreshnessObservation rows are append-only: the repository exposes no
// update or delete path. Seq breaks ordering ties between observations
// recorded at the same instant.
type FreshnessObservation struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Seq            int64     `gorm:"autoIncrement;uniqueIndex" json:"-"`
	ProductID      uuid.UUID `gorm:"index" json:"product_id"`
	FreshnessScore int       `json:"freshness_score"`
	Temperature    *float64  `json:"temperature,omitempty"`
	Humidity       *float64  `json:"humidity,omitempty"`
	ImageURL       string    `json:"image_url,omitempty"`
	Analyzed       bool      `json:"analyzed"`
	Confidence     *float64  `json:"confidence,omitempty"`
	RecordedAt     time.Time `gorm:"index" json:"recorded_at"`
	Notes          string    `json:"notes,omitempty"`

	Product *Product `gorm:"foreignKey:ProductID" json:"-"`
	Timestamp
}
