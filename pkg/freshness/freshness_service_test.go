package freshness

import (
	"FreshMart-Backend/domain"
	"FreshMart-Backend/entities"
	"FreshMart-Backend/pkg/broadcast"
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeProductRepo struct {
	products map[string]*entities.Product
}

func (f *fakeProductRepo) AddProduct(ctx context.Context, p *entities.Product) error {
	f.products[p.ID.String()] = p
	return nil
}

func (f *fakeProductRepo) GetProductByID(ctx context.Context, id string) (*entities.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) GetProducts(ctx context.Context, category string, page, limit int) ([]*entities.Product, int64, error) {
	return nil, 0, nil
}

func (f *fakeProductRepo) GetActiveProducts(ctx context.Context, category string) ([]*entities.Product, error) {
	return nil, nil
}

func (f *fakeProductRepo) UpdateProductScore(ctx context.Context, id string, score int, scannedAt time.Time, imageURL string) error {
	p := f.products[id]
	p.FreshnessScore = score
	p.LastScanned = &scannedAt
	if imageURL != "" {
		p.ImageURL = imageURL
	}
	return nil
}

func (f *fakeProductRepo) UpdateProductPrice(ctx context.Context, id string, price float64, source string) error {
	p := f.products[id]
	p.CurrentPrice = price
	p.PriceSource = source
	return nil
}

func (f *fakeProductRepo) DeactivateProduct(ctx context.Context, id string) error {
	f.products[id].IsActive = false
	return nil
}

func (f *fakeProductRepo) GetDashboardStats(ctx context.Context) (map[string]interface{}, error) {
	return nil, nil
}

type fakeHistoryRepo struct {
	observations []*entities.FreshnessObservation
	lastLimit    int
}

func (f *fakeHistoryRepo) AddObservation(ctx context.Context, obs *entities.FreshnessObservation) error {
	obs.Seq = int64(len(f.observations) + 1)
	f.observations = append(f.observations, obs)
	return nil
}

func (f *fakeHistoryRepo) GetRecentObservations(ctx context.Context, productID string, limit int) ([]*entities.FreshnessObservation, error) {
	f.lastLimit = limit
	var result []*entities.FreshnessObservation
	for i := len(f.observations) - 1; i >= 0 && len(result) < limit; i-- {
		if f.observations[i].ProductID.String() == productID {
			result = append(result, f.observations[i])
		}
	}
	return result, nil
}

func (f *fakeHistoryRepo) GetObservationsBetween(ctx context.Context, productIDs []string, start, end time.Time) ([]*entities.FreshnessObservation, error) {
	return nil, nil
}

type fakeStatsProvider struct {
	stats *ImageStats
	err   error
}

func (f *fakeStatsProvider) Stats(buf []byte) (*ImageStats, error) {
	return f.stats, f.err
}

type fakeS3 struct {
	uploads int
}

func (f *fakeS3) UploadFile(fileName string, file *multipart.FileHeader, folder string, allowExt ...string) (string, error) {
	return "", nil
}

func (f *fakeS3) UploadBytes(fileName string, data []byte, contentType string, folder string) (string, error) {
	f.uploads++
	return folder + "/" + fileName, nil
}

func (f *fakeS3) GetPublicLinkKey(objectKey string) string {
	return "https://cdn.test/" + objectKey
}

type testPipeline struct {
	service  FreshnessService
	products *fakeProductRepo
	history  *fakeHistoryRepo
	s3       *fakeS3
	hub      *broadcast.Hub
}

func newTestPipeline(provider ImageStatsProvider, estimator *Estimator) *testPipeline {
	products := &fakeProductRepo{products: map[string]*entities.Product{}}
	history := &fakeHistoryRepo{}
	s3 := &fakeS3{}
	hub := broadcast.NewHub(zerolog.Nop())

	return &testPipeline{
		service: NewFreshnessService(
			history, products, provider, estimator, hub, s3, zerolog.Nop(),
		),
		products: products,
		history:  history,
		s3:       s3,
		hub:      hub,
	}
}

func activeProduct(basePrice float64, daysToExpiry int) *entities.Product {
	return &entities.Product{
		ID:             uuid.New(),
		Name:           "strawberries",
		Category:       "fruits",
		BasePrice:      basePrice,
		CurrentPrice:   basePrice,
		FreshnessScore: 100,
		ExpiryDate:     time.Now().AddDate(0, 0, daysToExpiry),
		IsActive:       true,
		PriceSource:    domain.PriceSourcePolicy,
	}
}

func imageFileHeader(t *testing.T, data []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", "scan.jpg")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	return req.MultipartForm.File["image"][0]
}

func TestAnalyze_SensorOnlyObservationUsesFallback(t *testing.T) {
	pipeline := newTestPipeline(&fakeStatsProvider{}, fixedEstimator(0, 62))

	p := activeProduct(10.00, 10)
	pipeline.products.products[p.ID.String()] = p

	events, unsubscribe := pipeline.hub.Subscribe()
	defer unsubscribe()

	temp := 6.5
	res, err := pipeline.service.Analyze(context.Background(), domain.AnalyzeRequest{
		ProductID:   p.ID.String(),
		Temperature: &temp,
	})
	require.NoError(t, err)

	assert.Equal(t, 62, res.FreshnessScore)
	assert.False(t, res.Analyzed)
	assert.Nil(t, res.Confidence)

	// Score and time were persisted through the narrow update.
	assert.Equal(t, 62, p.FreshnessScore)
	require.NotNil(t, p.LastScanned)

	// Ledger got exactly one append, with the fallback provenance.
	require.Len(t, pipeline.history.observations, 1)
	obs := pipeline.history.observations[0]
	assert.False(t, obs.Analyzed)
	assert.Nil(t, obs.Confidence)
	require.NotNil(t, obs.Temperature)
	assert.Equal(t, 6.5, *obs.Temperature)

	// Score 62 lands in the 0.85 bracket with no urgency markdown.
	assert.Equal(t, 8.50, p.CurrentPrice)
	require.NotNil(t, res.CurrentPrice)
	assert.Equal(t, 8.50, *res.CurrentPrice)

	select {
	case event := <-events:
		assert.Equal(t, p.ID.String(), event.ProductID)
		assert.Equal(t, 62, event.FreshnessScore)
		assert.Equal(t, 8.50, event.CurrentPrice)
		assert.Equal(t, "scan", event.Source)
	default:
		t.Fatal("expected a broadcast event")
	}
}

func TestAnalyze_BrokenImageRecoversThroughFallback(t *testing.T) {
	// Real provider, garbage bytes: analysis must fail and be recovered
	// locally, never surfaced to the caller.
	pipeline := newTestPipeline(NewImageStatsProvider(), fixedEstimator(0, 55))

	p := activeProduct(10.00, 10)
	pipeline.products.products[p.ID.String()] = p

	res, err := pipeline.service.Analyze(context.Background(), domain.AnalyzeRequest{
		ProductID: p.ID.String(),
		Image:     imageFileHeader(t, []byte("not an image")),
	})
	require.NoError(t, err)

	assert.Equal(t, 55, res.FreshnessScore)
	assert.False(t, res.Analyzed)
	assert.Equal(t, 0, pipeline.s3.uploads, "fallback scans must not upload images")
}

func TestAnalyze_SuccessfulAnalysisUploadsImage(t *testing.T) {
	provider := &fakeStatsProvider{stats: &ImageStats{DominantColor: RGB{R: 160, G: 140, B: 90}}}
	pipeline := newTestPipeline(provider, fixedEstimator(0, 0))

	p := activeProduct(10.00, 10)
	pipeline.products.products[p.ID.String()] = p

	res, err := pipeline.service.Analyze(context.Background(), domain.AnalyzeRequest{
		ProductID: p.ID.String(),
		Image:     imageFileHeader(t, []byte("jpeg bytes")),
	})
	require.NoError(t, err)

	assert.Equal(t, 85, res.FreshnessScore)
	assert.True(t, res.Analyzed)
	assert.Equal(t, 1, pipeline.s3.uploads)

	require.Len(t, pipeline.history.observations, 1)
	assert.Contains(t, pipeline.history.observations[0].ImageURL, "https://cdn.test/scans/scan-")

	// 85 is in the 0.95 bracket.
	assert.Equal(t, 9.50, p.CurrentPrice)
}

func TestAnalyze_WithoutProductHasNoSideEffects(t *testing.T) {
	pipeline := newTestPipeline(&fakeStatsProvider{}, fixedEstimator(0, 70))

	res, err := pipeline.service.Analyze(context.Background(), domain.AnalyzeRequest{})
	require.NoError(t, err)

	assert.Equal(t, 70, res.FreshnessScore)
	assert.Nil(t, res.CurrentPrice)
	assert.Empty(t, pipeline.history.observations)
}

func TestAnalyze_UnknownProduct(t *testing.T) {
	pipeline := newTestPipeline(&fakeStatsProvider{}, fixedEstimator(0, 70))

	_, err := pipeline.service.Analyze(context.Background(), domain.AnalyzeRequest{
		ProductID: uuid.New().String(),
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestAnalyze_DeactivatedProduct(t *testing.T) {
	pipeline := newTestPipeline(&fakeStatsProvider{}, fixedEstimator(0, 70))

	p := activeProduct(10.00, 10)
	p.IsActive = false
	pipeline.products.products[p.ID.String()] = p

	_, err := pipeline.service.Analyze(context.Background(), domain.AnalyzeRequest{
		ProductID: p.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrProductDeactivated)
	assert.Empty(t, pipeline.history.observations)
}

func TestGetHistory_RoundTrip(t *testing.T) {
	pipeline := newTestPipeline(&fakeStatsProvider{}, fixedEstimator(0, 62))

	p := activeProduct(10.00, 10)
	pipeline.products.products[p.ID.String()] = p

	notes := "evening shelf check"
	_, err := pipeline.service.Analyze(context.Background(), domain.AnalyzeRequest{
		ProductID: p.ID.String(),
		Notes:     notes,
	})
	require.NoError(t, err)

	history, err := pipeline.service.GetHistory(context.Background(), p.ID.String(), 1)
	require.NoError(t, err)

	require.Len(t, history, 1)
	assert.Equal(t, p.ID.String(), history[0].ProductID)
	assert.Equal(t, 62, history[0].FreshnessScore)
	assert.Equal(t, notes, history[0].Notes)
	assert.False(t, history[0].Analyzed)
}

func TestGetHistory_LimitIsCappedByTheComponent(t *testing.T) {
	pipeline := newTestPipeline(&fakeStatsProvider{}, fixedEstimator(0, 62))

	p := activeProduct(10.00, 10)
	pipeline.products.products[p.ID.String()] = p

	_, err := pipeline.service.GetHistory(context.Background(), p.ID.String(), 500)
	require.NoError(t, err)
	assert.Equal(t, DefaultHistoryLimit, pipeline.history.lastLimit)

	_, err = pipeline.service.GetHistory(context.Background(), p.ID.String(), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultHistoryLimit, pipeline.history.lastLimit)
}

func TestGetHistory_UnknownProduct(t *testing.T) {
	pipeline := newTestPipeline(&fakeStatsProvider{}, fixedEstimator(0, 62))

	_, err := pipeline.service.GetHistory(context.Background(), uuid.New().String(), 10)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
