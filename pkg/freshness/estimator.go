package freshness

import (
	"FreshMart-Backend/domain"
	"math"
	"math/rand"
)

const (
	baseScore                = 85
	spoilageChannelThreshold = 100
	spoilagePenalty          = 30
	noiseAmplitude           = 5

	fallbackFloor = 40
	fallbackCeil  = 95
)

type (
	// Estimate is the outcome of one scoring pass. Analyzed is false and
	// Confidence nil when the score came from the fallback path, so a
	// simulated score can never masquerade as a real analysis.
	Estimate struct {
		Score      int
		Analyzed   bool
		Confidence *float64
		Factors    []domain.ScoreFactor
	}

	Estimator struct {
		noise    func() float64 // in [-1, 1]
		fallback func() int     // in [fallbackFloor, fallbackCeil]
	}
)

func NewEstimator() *Estimator {
	return &Estimator{
		noise: func() float64 {
			return rand.Float64()*2 - 1
		},
		fallback: func() int {
			return fallbackFloor + rand.Intn(fallbackCeil-fallbackFloor+1)
		},
	}
}

// Estimate scores image statistics for a product category. Pure given its
// inputs and the injected noise source; the caller decides what to persist.
func (e *Estimator) Estimate(stats *ImageStats, category string) Estimate {
	score := float64(baseScore)
	confidence := 0.9

	factors := []domain.ScoreFactor{
		{Name: "base", Score: baseScore, Description: "category-neutral starting score"},
	}

	if stats.DominantColor.R < spoilageChannelThreshold && stats.DominantColor.G < spoilageChannelThreshold {
		score -= spoilagePenalty
		confidence = 0.75
		factors = append(factors, domain.ScoreFactor{
			Name:        "color_penalty",
			Score:       -spoilagePenalty,
			Description: "red and green channel means below spoilage threshold",
		})
	}

	perturbation := e.noise() * noiseAmplitude
	score += perturbation
	factors = append(factors, domain.ScoreFactor{
		Name:        "measurement_noise",
		Score:       int(math.Round(perturbation)),
		Description: "bounded perturbation modelling measurement noise",
	})

	final := int(math.Round(score))
	if final < 0 {
		final = 0
	}
	if final > 100 {
		final = 100
	}

	return Estimate{
		Score:      final,
		Analyzed:   true,
		Confidence: &confidence,
		Factors:    factors,
	}
}

// Fallback produces a bounded pseudo-random score for when image analysis is
// unavailable. It never fails.
func (e *Estimator) Fallback(category string) Estimate {
	score := e.fallback()

	return Estimate{
		Score:    score,
		Analyzed: false,
		Factors: []domain.ScoreFactor{
			{Name: "fallback", Score: score, Description: "simulated score, image analysis unavailable"},
		},
	}
}

// AnalysisDetailFor maps a score onto the coarse condition labels returned
// by the analyze endpoint.
func AnalysisDetailFor(score int) domain.AnalysisDetail {
	grade := "poor"
	switch {
	case score >= 80:
		grade = "good"
	case score >= 50:
		grade = "fair"
	}

	condition := "fresh"
	switch {
	case score < 40:
		condition = "spoiling"
	case score < 70:
		condition = "aging"
	}

	return domain.AnalysisDetail{
		ColorHealth:      grade,
		TextureHealth:    grade,
		OverallCondition: condition,
	}
}
