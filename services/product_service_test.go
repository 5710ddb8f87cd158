package services

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func files(names ...string) []*multipart.FileHeader {
	out := make([]*multipart.FileHeader, 0, len(names))
	for _, n := range names {
		out = append(out, &multipart.FileHeader{Filename: n})
	}
	return out
}

type productFixture struct {
	svc    ProductService
	repo   *fakeProductRepo
	images *fakeImageStore
	cache  *fakeCatalogCache
}

func newProductFixture(kind string, products ...*models.Product) *productFixture {
	f := &productFixture{
		repo:   newFakeProductRepo(products...),
		images: &fakeImageStore{},
		cache:  &fakeCatalogCache{},
	}
	f.svc = NewProductService(kind, f.repo, f.images, f.cache, zap.NewNop())
	return f
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Classic Tee", "classic-tee"},
		{"  Hello,   World!! ", "hello-world"},
		{`DTF Transfer 12" x 4"`, "dtf-transfer-12-x-4"},
		{"Café", "caf"},
		{"---", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}

func TestCreateProduct_Casual(t *testing.T) {
	f := newProductFixture(models.ProductKindCasual)
	compare := 30.0

	p, svcErr := f.svc.Create(context.Background(), ProductInput{
		Name:           "Classic Tee",
		Price:          20,
		CompareAtPrice: &compare,
		Category:       " tops ",
		Sizes:          []string{"S", " M ", ""},
		IsActive:       true,
		MinQuantity:    50,
	}, files("front.png", "back.png"))
	require.Nil(t, svcErr)

	assert.Equal(t, "classic-tee", p.Slug)
	assert.Equal(t, models.ProductKindCasual, p.Kind)
	assert.Equal(t, "tops", p.Category)
	assert.JSONEq(t, `["S","M"]`, string(p.Sizes))
	assert.Zero(t, p.MinQuantity)
	assert.Len(t, p.Images, 2)
	assert.Equal(t, []string{"products/casual"}, f.images.folders)
	assert.Equal(t, []string{"casual:classic-tee"}, f.cache.invalidated)
}

func TestCreateProduct_DTF(t *testing.T) {
	f := newProductFixture(models.ProductKindDTF)

	p, svcErr := f.svc.Create(context.Background(), ProductInput{
		Name:         "Gang Sheet",
		Slug:         "Gang Sheet 22in",
		Price:        0.5,
		MinQuantity:  10,
		PrintSizes:   []string{"22x12", "22x24"},
		TransferType: "hot peel",
		Category:     "ignored",
	}, nil)
	require.Nil(t, svcErr)
	assert.Equal(t, "gang-sheet-22in", p.Slug)
	assert.Equal(t, 10, p.MinQuantity)
	assert.Empty(t, p.Category)
	assert.NotNil(t, p.Images)
	assert.Empty(t, f.images.folders)
}

func TestCreateProduct_DuplicateSlug(t *testing.T) {
	existing := &models.Product{ID: uuid.New(), Kind: models.ProductKindCasual, Slug: "classic-tee"}
	f := newProductFixture(models.ProductKindCasual, existing)

	_, svcErr := f.svc.Create(context.Background(), ProductInput{Name: "Classic Tee", Price: 1}, files("a.png"))
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusConflict, svcErr.StatusCode)
	assert.Empty(t, f.images.folders)
}

func TestCreateProduct_SameSlugOtherKindAllowed(t *testing.T) {
	existing := &models.Product{ID: uuid.New(), Kind: models.ProductKindDTF, Slug: "classic-tee"}
	f := newProductFixture(models.ProductKindCasual, existing)

	_, svcErr := f.svc.Create(context.Background(), ProductInput{Name: "Classic Tee", Price: 1}, nil)
	assert.Nil(t, svcErr)
}

func TestCreateProduct_RaceOnUniqueIndex(t *testing.T) {
	f := newProductFixture(models.ProductKindCasual)
	f.repo.createErr = gorm.ErrDuplicatedKey

	_, svcErr := f.svc.Create(context.Background(), ProductInput{Name: "Tee", Price: 1}, files("a.png"))
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusConflict, svcErr.StatusCode)
	assert.Equal(t, []string{"products/casual/a.png"}, f.images.deleted)
}

func TestCreateProduct_Validation(t *testing.T) {
	f := newProductFixture(models.ProductKindCasual)
	compare := 5.0

	_, svcErr := f.svc.Create(context.Background(), ProductInput{Name: "!!!", Price: 1}, nil)
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)

	_, svcErr = f.svc.Create(context.Background(), ProductInput{Name: "Tee", Price: 10, CompareAtPrice: &compare}, nil)
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
}

func TestCreateProduct_UploadFailure(t *testing.T) {
	f := newProductFixture(models.ProductKindCasual)
	f.images.uploadErr = errors.New("cloudinary down")

	_, svcErr := f.svc.Create(context.Background(), ProductInput{Name: "Tee", Price: 1}, files("a.png"))
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadGateway, svcErr.StatusCode)
	assert.Empty(t, f.repo.products)
}

func TestUpdateProduct_ReplacesImages(t *testing.T) {
	existing := &models.Product{
		ID: uuid.New(), Kind: models.ProductKindCasual, Name: "Tee", Slug: "tee", Price: 10,
		Images: []models.Image{{URL: "u1", PublicID: "old-1"}, {URL: "u2", PublicID: "old-2"}},
	}
	f := newProductFixture(models.ProductKindCasual, existing)

	p, svcErr := f.svc.Update(context.Background(), existing.ID.String(), ProductInput{Name: "Tee v2", Price: 12, IsActive: true}, files("new.png"))
	require.Nil(t, svcErr)
	assert.Equal(t, "tee-v2", p.Slug)
	assert.Equal(t, 12.0, p.Price)
	require.Len(t, p.Images, 1)
	assert.Equal(t, []string{"old-1", "old-2"}, f.images.deleted)
	assert.Equal(t, []string{"casual:tee", "casual:tee-v2"}, f.cache.invalidated)
}

func TestUpdateProduct_KeepsImagesWithoutUpload(t *testing.T) {
	existing := &models.Product{
		ID: uuid.New(), Kind: models.ProductKindCasual, Name: "Tee", Slug: "tee", Price: 10,
		Images: []models.Image{{URL: "u1", PublicID: "old-1"}},
	}
	f := newProductFixture(models.ProductKindCasual, existing)

	p, svcErr := f.svc.Update(context.Background(), existing.ID.String(), ProductInput{Name: "Tee", Price: 11}, nil)
	require.Nil(t, svcErr)
	assert.Equal(t, existing.Images, p.Images)
	assert.Empty(t, f.images.deleted)
}

func TestUpdateProduct_NotFoundAcrossKinds(t *testing.T) {
	dtf := &models.Product{ID: uuid.New(), Kind: models.ProductKindDTF, Slug: "sheet"}
	f := newProductFixture(models.ProductKindCasual, dtf)

	_, svcErr := f.svc.Update(context.Background(), dtf.ID.String(), ProductInput{Name: "x", Price: 1}, nil)
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)

	_, svcErr = f.svc.Update(context.Background(), "bad-id", ProductInput{Name: "x", Price: 1}, nil)
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}

func TestDeleteProduct(t *testing.T) {
	existing := &models.Product{
		ID: uuid.New(), Kind: models.ProductKindDTF, Slug: "sheet",
		Images: []models.Image{{URL: "u", PublicID: "img-1"}},
	}
	f := newProductFixture(models.ProductKindDTF, existing)

	require.Nil(t, f.svc.Delete(context.Background(), existing.ID.String()))
	assert.Empty(t, f.repo.products)
	assert.Equal(t, []string{"img-1"}, f.images.deleted)
	assert.Equal(t, []string{"dtf:sheet"}, f.cache.invalidated)

	svcErr := f.svc.Delete(context.Background(), existing.ID.String())
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}

func TestListProducts_ClampsPaging(t *testing.T) {
	f := newProductFixture(models.ProductKindCasual,
		&models.Product{ID: uuid.New(), Kind: models.ProductKindCasual, Slug: "a"},
		&models.Product{ID: uuid.New(), Kind: models.ProductKindDTF, Slug: "b"},
	)

	page, svcErr := f.svc.List(context.Background(), models.ProductFilter{Page: 0, Limit: 1000})
	require.Nil(t, svcErr)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, MaxPageSize, page.Limit)
	assert.Equal(t, int64(1), page.Total)
	assert.Len(t, page.Items, 1)
}

func TestGetProduct(t *testing.T) {
	existing := &models.Product{ID: uuid.New(), Kind: models.ProductKindCasual, Slug: "tee"}
	f := newProductFixture(models.ProductKindCasual, existing)

	p, svcErr := f.svc.GetByID(context.Background(), existing.ID.String())
	require.Nil(t, svcErr)
	assert.Equal(t, "tee", p.Slug)

	p, svcErr = f.svc.GetBySlug(context.Background(), " TEE ")
	require.Nil(t, svcErr)
	assert.Equal(t, existing.ID, p.ID)

	_, svcErr = f.svc.GetBySlug(context.Background(), "missing")
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}
