package freshness

import (
	"FreshMart-Backend/domain"
	"FreshMart-Backend/entities"
	"FreshMart-Backend/internal/utils/storage"
	"FreshMart-Backend/pkg/broadcast"
	"FreshMart-Backend/pkg/pricing"
	"FreshMart-Backend/pkg/product"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// DefaultHistoryLimit bounds the history read path regardless of what the
// caller asks for.
const DefaultHistoryLimit = 50

type (
	FreshnessService interface {
		Analyze(ctx context.Context, req domain.AnalyzeRequest) (domain.AnalyzeResponse, error)
		GetHistory(ctx context.Context, productID string, limit int) ([]domain.ObservationResponse, error)
	}

	freshnessService struct {
		historyRepository HistoryRepository
		productRepository product.ProductRepository
		statsProvider     ImageStatsProvider
		estimator         *Estimator
		hub               *broadcast.Hub
		s3                storage.AwsS3
		log               zerolog.Logger
	}
)

func NewFreshnessService(
	historyRepository HistoryRepository,
	productRepository product.ProductRepository,
	statsProvider ImageStatsProvider,
	estimator *Estimator,
	hub *broadcast.Hub,
	s3 storage.AwsS3,
	log zerolog.Logger,
) FreshnessService {
	return &freshnessService{
		historyRepository: historyRepository,
		productRepository: productRepository,
		statsProvider:     statsProvider,
		estimator:         estimator,
		hub:               hub,
		s3:                s3,
		log:               log.With().Str("component", "freshness").Logger(),
	}
}

func (s *freshnessService) Analyze(ctx context.Context, req domain.AnalyzeRequest) (domain.AnalyzeResponse, error) {
	var estimate Estimate
	var imageBytes []byte
	var contentType string

	if req.Image != nil {
		file, err := req.Image.Open()
		if err == nil {
			imageBytes, err = io.ReadAll(file)
			file.Close()
		}
		if err != nil {
			s.log.Warn().Err(err).Msg("Could not read uploaded image, using fallback score")
			estimate = s.estimator.Fallback(req.ProductType)
		} else {
			contentType = req.Image.Header.Get("Content-Type")
			stats, err := s.statsProvider.Stats(imageBytes)
			if err != nil {
				s.log.Warn().Err(err).Msg("Image analysis unavailable, using fallback score")
				estimate = s.estimator.Fallback(req.ProductType)
			} else {
				estimate = s.estimator.Estimate(stats, req.ProductType)
			}
		}
	} else {
		estimate = s.estimator.Fallback(req.ProductType)
	}

	response := domain.AnalyzeResponse{
		FreshnessScore: estimate.Score,
		Confidence:     estimate.Confidence,
		Analyzed:       estimate.Analyzed,
		Analysis:       AnalysisDetailFor(estimate.Score),
		Factors:        estimate.Factors,
	}

	if req.ProductID == "" {
		return response, nil
	}

	productEntity, err := s.productRepository.GetProductByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.AnalyzeResponse{}, domain.ErrProductNotFound
		}
		return domain.AnalyzeResponse{}, err
	}

	if !productEntity.IsActive {
		return domain.AnalyzeResponse{}, domain.ErrProductDeactivated
	}

	imageURL := ""
	if estimate.Analyzed && len(imageBytes) > 0 {
		fileName := fmt.Sprintf("scan-%s", uuid.New().String())
		objectKey, err := s.s3.UploadBytes(fileName, imageBytes, contentType, "scans")
		if err != nil {
			s.log.Warn().Err(err).Msg("Scan image upload failed, observation recorded without image")
		} else {
			imageURL = s.s3.GetPublicLinkKey(objectKey)
		}
	}

	scannedAt := time.Now()

	if err := s.productRepository.UpdateProductScore(ctx, req.ProductID, estimate.Score, scannedAt, imageURL); err != nil {
		return domain.AnalyzeResponse{}, err
	}

	observation := &entities.FreshnessObservation{
		ID:             uuid.New(),
		ProductID:      productEntity.ID,
		FreshnessScore: estimate.Score,
		Temperature:    req.Temperature,
		Humidity:       req.Humidity,
		ImageURL:       imageURL,
		Analyzed:       estimate.Analyzed,
		Confidence:     estimate.Confidence,
		RecordedAt:     scannedAt,
		Notes:          req.Notes,
	}

	if err := s.historyRepository.AddObservation(ctx, observation); err != nil {
		return domain.AnalyzeResponse{}, err
	}

	price, err := pricing.ComputePrice(productEntity.BasePrice, estimate.Score, productEntity.ExpiryDate, scannedAt)
	if err != nil {
		return domain.AnalyzeResponse{}, err
	}

	if err := s.productRepository.UpdateProductPrice(ctx, req.ProductID, price, domain.PriceSourcePolicy); err != nil {
		return domain.AnalyzeResponse{}, err
	}

	s.hub.Publish(domain.FreshnessEvent{
		ProductID:      req.ProductID,
		FreshnessScore: estimate.Score,
		CurrentPrice:   price,
		Analyzed:       estimate.Analyzed,
		Source:         "scan",
		OccurredAt:     scannedAt,
	})

	response.CurrentPrice = &price

	return response, nil
}

func (s *freshnessService) GetHistory(ctx context.Context, productID string, limit int) ([]domain.ObservationResponse, error) {
	if _, err := s.productRepository.GetProductByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}

	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}

	observations, err := s.historyRepository.GetRecentObservations(ctx, productID, limit)
	if err != nil {
		return nil, err
	}

	response := make([]domain.ObservationResponse, 0, len(observations))
	for _, obs := range observations {
		response = append(response, domain.ObservationResponse{
			ID:             obs.ID.String(),
			ProductID:      obs.ProductID.String(),
			FreshnessScore: obs.FreshnessScore,
			Temperature:    obs.Temperature,
			Humidity:       obs.Humidity,
			ImageURL:       obs.ImageURL,
			Analyzed:       obs.Analyzed,
			Confidence:     obs.Confidence,
			RecordedAt:     obs.RecordedAt,
			Notes:          obs.Notes,
		})
	}

	return response, nil
}
