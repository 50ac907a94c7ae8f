package pricing

import (
	"FreshMart-Backend/domain"
	"math"
	"time"
)

// ComputePrice derives the sale price of a product from its base price,
// latest freshness score and remaining shelf life. It is a pure function of
// its inputs: same inputs, same price.
//
// The freshness multiplier is picked by bracket (score 90 belongs to the
// 0.95 bracket, 91 to the full-price one) and the expiry urgency multiplier
// is applied on top of it. The result is rounded to 2 decimals and never
// exceeds basePrice.
func ComputePrice(basePrice float64, freshnessScore int, expiryDate time.Time, now time.Time) (float64, error) {
	if basePrice <= 0 || expiryDate.IsZero() {
		return 0, domain.ErrInvalidPricingInput
	}

	daysToExpiry := int(math.Ceil(expiryDate.Sub(now).Hours() / 24))

	var freshnessMultiplier float64
	switch {
	case freshnessScore > 90:
		freshnessMultiplier = 1.00
	case freshnessScore > 70:
		freshnessMultiplier = 0.95
	case freshnessScore > 50:
		freshnessMultiplier = 0.85
	case freshnessScore > 30:
		freshnessMultiplier = 0.70
	default:
		freshnessMultiplier = 0.50
	}

	urgencyMultiplier := 1.00
	if daysToExpiry <= 1 {
		urgencyMultiplier = 0.70
	} else if daysToExpiry <= 3 {
		urgencyMultiplier = 0.85
	}

	price := math.Round(basePrice*freshnessMultiplier*urgencyMultiplier*100) / 100
	if price < 0 {
		price = 0
	}

	return price, nil
}
