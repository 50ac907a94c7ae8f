package product

import (
	"FreshMart-Backend/domain"
	"FreshMart-Backend/entities"
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeProductRepo struct {
	products map[string]*entities.Product
	added    []*entities.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]*entities.Product)}
}

func (f *fakeProductRepo) AddProduct(ctx context.Context, p *entities.Product) error {
	f.products[p.ID.String()] = p
	f.added = append(f.added, p)
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
	var result []*entities.Product
	for _, p := range f.products {
		if p.IsActive && (category == "" || category == "all" || p.Category == category) {
			result = append(result, p)
		}
	}
	return result, int64(len(result)), nil
}

func (f *fakeProductRepo) GetActiveProducts(ctx context.Context, category string) ([]*entities.Product, error) {
	return nil, nil
}

func (f *fakeProductRepo) UpdateProductScore(ctx context.Context, id string, score int, scannedAt time.Time, imageURL string) error {
	return nil
}

func (f *fakeProductRepo) UpdateProductPrice(ctx context.Context, id string, price float64, source string) error {
	p, ok := f.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.CurrentPrice = price
	p.PriceSource = source
	return nil
}

func (f *fakeProductRepo) DeactivateProduct(ctx context.Context, id string) error {
	p, ok := f.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.IsActive = false
	return nil
}

func (f *fakeProductRepo) GetDashboardStats(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{
		"total_products":     int64(len(f.products)),
		"fresh_products":     int64(0),
		"warning_products":   int64(0),
		"critical_products":  int64(0),
		"expiring_soon":      int64(0),
		"average_freshness":  0.0,
		"estimated_markdown": 0.0,
	}, nil
}

type fakeS3 struct {
	uploads int
}

func (f *fakeS3) UploadFile(fileName string, file *multipart.FileHeader, folder string, allowExt ...string) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if len(allowExt) > 0 {
		allowed := false
		for _, a := range allowExt {
			if ext == a {
				allowed = true
			}
		}
		if !allowed {
			return "", fmt.Errorf("%w: %s", domain.ErrInvalidImageFormat, ext)
		}
	}
	f.uploads++
	return folder + "/" + fileName + ext, nil
}

func (f *fakeS3) UploadBytes(fileName string, data []byte, contentType string, folder string) (string, error) {
	return folder + "/" + fileName, nil
}

func (f *fakeS3) GetPublicLinkKey(objectKey string) string {
	return "https://cdn.test/" + objectKey
}

func newTestService() (ProductService, *fakeProductRepo, *fakeS3) {
	repo := newFakeProductRepo()
	s3 := &fakeS3{}
	return NewProductService(repo, s3), repo, s3
}

func imageFileHeader(t *testing.T, filename string) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("image bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	return req.MultipartForm.File["image"][0]
}

func validAddRequest() domain.AddProductRequest {
	return domain.AddProductRequest{
		Name:       "Whole Milk 1L",
		Category:   "dairy",
		BasePrice:  3.50,
		ExpiryDate: time.Now().AddDate(0, 0, 10).Format("2006-01-02"),
	}
}

func TestAddProduct_StartsAtFullFreshness(t *testing.T) {
	service, repo, s3 := newTestService()

	resp, err := service.AddProduct(context.Background(), validAddRequest())
	require.NoError(t, err)

	assert.Equal(t, 100, resp.FreshnessScore)
	assert.Equal(t, 3.50, resp.BasePrice)
	assert.Equal(t, 3.50, resp.CurrentPrice, "full freshness with a far expiry keeps the base price")
	assert.Equal(t, domain.PriceSourcePolicy, resp.PriceSource)
	assert.Empty(t, resp.ImageURL)
	assert.Equal(t, 0, s3.uploads)

	require.Len(t, repo.added, 1)
	assert.True(t, repo.added[0].IsActive)
}

func TestAddProduct_UploadsProductImage(t *testing.T) {
	service, repo, s3 := newTestService()

	req := validAddRequest()
	req.Image = imageFileHeader(t, "milk.jpg")

	resp, err := service.AddProduct(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, s3.uploads)
	assert.Contains(t, resp.ImageURL, "https://cdn.test/products/product-")
	assert.Contains(t, resp.ImageURL, ".jpg")
	require.Len(t, repo.added, 1)
	assert.Equal(t, resp.ImageURL, repo.added[0].ImageURL)
}

func TestAddProduct_RejectsNonImageFile(t *testing.T) {
	service, repo, s3 := newTestService()

	req := validAddRequest()
	req.Image = imageFileHeader(t, "notes.txt")

	_, err := service.AddProduct(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidImageFormat)
	assert.Equal(t, 0, s3.uploads)
	assert.Empty(t, repo.added)
}

func TestAddProduct_CollectsEveryInvalidField(t *testing.T) {
	service, repo, _ := newTestService()

	req := domain.AddProductRequest{
		Name:       "",
		Category:   "electronics",
		BasePrice:  -1,
		ExpiryDate: "not-a-date",
	}

	_, err := service.AddProduct(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Contains(t, err.Error(), "name")
	assert.Contains(t, err.Error(), "category")
	assert.Contains(t, err.Error(), "base_price")
	assert.Contains(t, err.Error(), "expiry_date")
	assert.Empty(t, repo.added)
}

func TestAddProduct_RejectsPastExpiry(t *testing.T) {
	service, _, _ := newTestService()

	req := validAddRequest()
	req.ExpiryDate = time.Now().AddDate(0, 0, -2).Format("2006-01-02")

	_, err := service.AddProduct(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestGetProductByID_Unknown(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.GetProductByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestOverridePrice_FlagsManualSource(t *testing.T) {
	service, repo, _ := newTestService()

	created, err := service.AddProduct(context.Background(), validAddRequest())
	require.NoError(t, err)

	resp, err := service.OverridePrice(context.Background(), created.ID, domain.OverridePriceRequest{Price: 1.99})
	require.NoError(t, err)

	assert.Equal(t, 1.99, resp.CurrentPrice)
	assert.Equal(t, domain.PriceSourceManual, resp.PriceSource)
	assert.Equal(t, domain.PriceSourceManual, repo.products[created.ID].PriceSource)
}

func TestOverridePrice_RejectsNegative(t *testing.T) {
	service, repo, _ := newTestService()

	created, err := service.AddProduct(context.Background(), validAddRequest())
	require.NoError(t, err)

	_, err = service.OverridePrice(context.Background(), created.ID, domain.OverridePriceRequest{Price: -0.01})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
	assert.Equal(t, domain.PriceSourcePolicy, repo.products[created.ID].PriceSource)
}

func TestOverridePrice_UnknownProduct(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.OverridePrice(context.Background(), uuid.NewString(), domain.OverridePriceRequest{Price: 2.00})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestDeactivateProduct_ExcludedFromListings(t *testing.T) {
	service, repo, _ := newTestService()

	created, err := service.AddProduct(context.Background(), validAddRequest())
	require.NoError(t, err)

	listed, count, err := service.GetProducts(context.Background(), "all", 1, 20)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, int64(1), count)

	require.NoError(t, service.DeactivateProduct(context.Background(), created.ID))
	assert.False(t, repo.products[created.ID].IsActive)

	listed, count, err = service.GetProducts(context.Background(), "all", 1, 20)
	require.NoError(t, err)
	assert.Empty(t, listed, "deactivated products must not be listed")
	assert.Equal(t, int64(0), count)
}

func TestDeactivateProduct_Unknown(t *testing.T) {
	service, _, _ := newTestService()

	err := service.DeactivateProduct(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
