package trends

import (
	"FreshMart-Backend/domain"
	"FreshMart-Backend/pkg/freshness"
	"FreshMart-Backend/pkg/product"
	"context"
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

type (
	TrendService interface {
		Trends(ctx context.Context, category string, sinceDays int, zeroFill bool) ([]domain.TrendPoint, error)
	}

	trendService struct {
		productRepository product.ProductRepository
		historyRepository freshness.HistoryRepository
	}
)

func NewTrendService(productRepository product.ProductRepository, historyRepository freshness.HistoryRepository) TrendService {
	return &trendService{
		productRepository: productRepository,
		historyRepository: historyRepository,
	}
}

// Trends rolls observations of the active products up into day buckets, oldest first.
func (s *trendService) Trends(ctx context.Context, category string, sinceDays int, zeroFill bool) ([]domain.TrendPoint, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}

	products, err := s.productRepository.GetActiveProducts(ctx, category)
	if err != nil {
		return nil, err
	}

	if len(products) == 0 {
		return []domain.TrendPoint{}, nil
	}

	productIDs := make([]string, 0, len(products))
	for _, p := range products {
		productIDs = append(productIDs, p.ID.String())
	}

	now := time.Now().UTC()
	start := now.AddDate(0, 0, -sinceDays)

	observations, err := s.historyRepository.GetObservationsBetween(ctx, productIDs, start, now)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		sum   int
		count int
	}
	buckets := make(map[string]*bucket)

	for _, obs := range observations {
		day := obs.RecordedAt.UTC().Format(dateLayout)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		b.sum += obs.FreshnessScore
		b.count++
	}

	var points []domain.TrendPoint

	if zeroFill {
		for day := start.Truncate(24 * time.Hour); !day.After(now); day = day.AddDate(0, 0, 1) {
			key := day.Format(dateLayout)
			if b, ok := buckets[key]; ok {
				points = append(points, domain.TrendPoint{
					Date:             key,
					AverageFreshness: float64(b.sum) / float64(b.count),
					ObservationCount: b.count,
				})
			} else {
				points = append(points, domain.TrendPoint{Date: key})
			}
		}
		return points, nil
	}

	for day, b := range buckets {
		points = append(points, domain.TrendPoint{
			Date:             day,
			AverageFreshness: float64(b.sum) / float64(b.count),
			ObservationCount: b.count,
		})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})

	if points == nil {
		points = []domain.TrendPoint{}
	}

	return points, nil
}
