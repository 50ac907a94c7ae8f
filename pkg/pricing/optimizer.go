package pricing

import (
	"FreshMart-Backend/domain"
	"FreshMart-Backend/entities"
	"FreshMart-Backend/pkg/broadcast"
	"context"
	"time"

	"github.com/rs/zerolog"
)

type (
	// ProductSource is the slice of the product registry the optimizer
	// needs; the GORM repository satisfies it.
	ProductSource interface {
		GetActiveProducts(ctx context.Context, category string) ([]*entities.Product, error)
		UpdateProductPrice(ctx context.Context, id string, price float64, source string) error
	}

	Optimizer interface {
		Run(ctx context.Context) (domain.OptimizePricingResponse, error)
	}

	optimizer struct {
		products ProductSource
		hub      *broadcast.Hub
		log      zerolog.Logger
	}
)

func NewOptimizer(products ProductSource, hub *broadcast.Hub, log zerolog.Logger) Optimizer {
	return &optimizer{
		products: products,
		hub:      hub,
		log:      log.With().Str("component", "optimizer").Logger(),
	}
}

// Run re-prices every active product. A failing product is recorded and
// skipped; the batch always continues.
func (o *optimizer) Run(ctx context.Context) (domain.OptimizePricingResponse, error) {
	products, err := o.products.GetActiveProducts(ctx, "")
	if err != nil {
		return domain.OptimizePricingResponse{}, err
	}

	now := time.Now()
	response := domain.OptimizePricingResponse{
		Updates:  []domain.PriceUpdate{},
		Failures: []domain.PriceUpdateFailure{},
	}

	for _, p := range products {
		select {
		case <-ctx.Done():
			o.log.Warn().
				Int("updated", response.UpdatedCount).
				Msg("Optimization cancelled mid-batch")
			return response, ctx.Err()
		default:
		}

		// The diff must report the price as it was before the mutation,
		// so capture it before any write.
		oldPrice := p.CurrentPrice

		newPrice, err := ComputePrice(p.BasePrice, p.FreshnessScore, p.ExpiryDate, now)
		if err != nil {
			response.Failures = append(response.Failures, domain.PriceUpdateFailure{
				ProductID: p.ID.String(),
				Name:      p.Name,
				Reason:    err.Error(),
			})
			continue
		}

		if newPrice == oldPrice {
			response.Succeeded++
			continue
		}

		if err := o.products.UpdateProductPrice(ctx, p.ID.String(), newPrice, domain.PriceSourcePolicy); err != nil {
			response.Failures = append(response.Failures, domain.PriceUpdateFailure{
				ProductID: p.ID.String(),
				Name:      p.Name,
				Reason:    err.Error(),
			})
			continue
		}

		response.Succeeded++
		response.UpdatedCount++
		response.Updates = append(response.Updates, domain.PriceUpdate{
			ProductID: p.ID.String(),
			Name:      p.Name,
			OldPrice:  oldPrice,
			NewPrice:  newPrice,
		})

		o.hub.Publish(domain.FreshnessEvent{
			ProductID:      p.ID.String(),
			FreshnessScore: p.FreshnessScore,
			CurrentPrice:   newPrice,
			Source:         "optimizer",
			OccurredAt:     now,
		})
	}

	o.log.Info().
		Int("total", len(products)).
		Int("updated", response.UpdatedCount).
		Int("failed", len(response.Failures)).
		Msg("Pricing optimization completed")

	return response, nil
}
