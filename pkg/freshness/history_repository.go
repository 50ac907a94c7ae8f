package freshness

import (
	"FreshMart-Backend/entities"
	"context"
	"time"

	"gorm.io/gorm"
)

type (
	// HistoryRepository owns the freshness observation ledger. Rows are
	// append-only; no update or delete method exists on purpose.
	HistoryRepository interface {
		AddObservation(ctx context.Context, observation *entities.FreshnessObservation) error
		GetRecentObservations(ctx context.Context, productID string, limit int) ([]*entities.FreshnessObservation, error)
		GetObservationsBetween(ctx context.Context, productIDs []string, start, end time.Time) ([]*entities.FreshnessObservation, error)
	}

	historyRepository struct {
		db *gorm.DB
	}
)

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) AddObservation(ctx context.Context, observation *entities.FreshnessObservation) error {
	return r.db.WithContext(ctx).Create(observation).Error
}

func (r *historyRepository) GetRecentObservations(ctx context.Context, productID string, limit int) ([]*entities.FreshnessObservation, error) {
	var observations []*entities.FreshnessObservation

	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("recorded_at desc, seq desc").
		Limit(limit).
		Find(&observations).Error; err != nil {
		return nil, err
	}

	return observations, nil
}

// GetObservationsBetween is a single range+set query so the trend
// aggregation never issues one query per product.
func (r *historyRepository) GetObservationsBetween(ctx context.Context, productIDs []string, start, end time.Time) ([]*entities.FreshnessObservation, error) {
	var observations []*entities.FreshnessObservation

	if err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Where("recorded_at BETWEEN ? AND ?", start, end).
		Order("recorded_at asc, seq asc").
		Find(&observations).Error; err != nil {
		return nil, err
	}

	return observations, nil
}
