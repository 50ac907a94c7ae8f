package domain

import (
	"errors"
	"mime/multipart"
	"time"
)

var (
	MessageSuccessAnalyzeImage = "freshness analysis completed"
	MessageSuccessGetHistory   = "freshness history retrieved successfully"
	MessageSuccessGetTrends    = "freshness trends retrieved successfully"

	MessageFailedAnalyzeImage = "failed to analyze freshness"
	MessageFailedGetHistory   = "failed to retrieve freshness history"
	MessageFailedGetTrends    = "failed to retrieve freshness trends"

	ErrAnalysisUnavailable = errors.New("image analysis unavailable")
	ErrInvalidImageFormat  = errors.New("invalid image format")
)

type (
	AnalyzeRequest struct {
		ProductID   string                `json:"product_id" form:"product_id" validate:"omitempty,uuid"`
		ProductType string                `json:"product_type" form:"product_type" validate:"omitempty"`
		Temperature *float64              `json:"temperature" form:"temperature"`
		Humidity    *float64              `json:"humidity" form:"humidity"`
		Notes       string                `json:"notes" form:"notes"`
		Image       *multipart.FileHeader `json:"-" form:"image"`
	}

	AnalysisDetail struct {
		ColorHealth      string `json:"color_health"`
		TextureHealth    string `json:"texture_health"`
		OverallCondition string `json:"overall_condition"`
	}

	ScoreFactor struct {
		Name        string `json:"name"`
		Score       int    `json:"score"`
		Description string `json:"description"`
	}

	AnalyzeResponse struct {
		FreshnessScore int            `json:"freshness_score"`
		Confidence     *float64       `json:"confidence"`
		Analyzed       bool           `json:"analyzed"`
		Analysis       AnalysisDetail `json:"analysis"`
		Factors        []ScoreFactor  `json:"factors"`
		CurrentPrice   *float64       `json:"current_price,omitempty"`
	}

	ObservationResponse struct {
		ID             string    `json:"id"`
		ProductID      string    `json:"product_id"`
		FreshnessScore int       `json:"freshness_score"`
		Temperature    *float64  `json:"temperature,omitempty"`
		Humidity       *float64  `json:"humidity,omitempty"`
		ImageURL       string    `json:"image_url,omitempty"`
		Analyzed       bool      `json:"analyzed"`
		Confidence     *float64  `json:"confidence,omitempty"`
		RecordedAt     time.Time `json:"recorded_at"`
		Notes          string    `json:"notes,omitempty"`
	}

	// TrendPoint is computed per query, never persisted.
	TrendPoint struct {
		Date             string  `json:"date"`
		AverageFreshness float64 `json:"average_freshness"`
		ObservationCount int     `json:"observation_count"`
	}

	// FreshnessEvent is the payload pushed to broadcast subscribers.
	// Source is "scan" for pipeline updates and "optimizer" for batch
	// re-pricing.
	FreshnessEvent struct {
		ProductID      string    `json:"product_id"`
		FreshnessScore int       `json:"freshness_score"`
		CurrentPrice   float64   `json:"current_price"`
		Analyzed       bool      `json:"analyzed"`
		Source         string    `json:"source"`
		OccurredAt     time.Time `json:"occurred_at"`
	}
)
