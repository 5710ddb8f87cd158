package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"unicode"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
	"github.com/Hosanna-Mosa/c-t-sub002/repository"
	"github.com/Hosanna-Mosa/c-t-sub002/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ProductInput is a validated create or update form. PUT replaces every
// field; Images stay untouched unless new files are uploaded.
type ProductInput struct {
	Name           string
	Slug           string
	Description    string
	Price          float64
	Stock          int
	IsActive       bool
	CompareAtPrice *float64
	Category       string
	Sizes          []string
	Colors         []string
	MinQuantity    int
	PrintSizes     []string
	TransferType   string
}

// CatalogCache is the read-through cache in front of the product tables.
type CatalogCache interface {
	GetList(ctx context.Context, kind string, f models.ProductFilter) (*models.ProductPage, bool)
	SetListAsync(kind string, f models.ProductFilter, page *models.ProductPage)
	GetProduct(ctx context.Context, kind, ref string) (*models.Product, bool)
	SetProductAsync(kind, ref string, p *models.Product)
	Invalidate(ctx context.Context, kind string, p *models.Product)
}

// ProductService serves one catalog kind.
type ProductService interface {
	Kind() string
	List(ctx context.Context, f models.ProductFilter) (*models.ProductPage, *ServiceError)
	GetByID(ctx context.Context, id string) (*models.Product, *ServiceError)
	GetBySlug(ctx context.Context, slug string) (*models.Product, *ServiceError)
	Create(ctx context.Context, in ProductInput, images []*multipart.FileHeader) (*models.Product, *ServiceError)
	Update(ctx context.Context, id string, in ProductInput, images []*multipart.FileHeader) (*models.Product, *ServiceError)
	Delete(ctx context.Context, id string) *ServiceError
}

type productServiceImpl struct {
	kind   string
	repo   repository.ProductRepository
	images storage.ImageStore
	cache  CatalogCache
	logger *zap.Logger
}

// NewProductService creates a ProductService for kind. cache may be nil.
func NewProductService(kind string, repo repository.ProductRepository, images storage.ImageStore, catalogCache CatalogCache, logger *zap.Logger) ProductService {
	return &productServiceImpl{
		kind:   kind,
		repo:   repo,
		images: images,
		cache:  catalogCache,
		logger: logger.With(zap.String("kind", kind)),
	}
}

func (s *productServiceImpl) Kind() string { return s.kind }

func (s *productServiceImpl) folder() string { return "products/" + s.kind }

func (s *productServiceImpl) List(ctx context.Context, f models.ProductFilter) (*models.ProductPage, *ServiceError) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}

	if s.cache != nil {
		if page, ok := s.cache.GetList(ctx, s.kind, f); ok {
			return page, nil
		}
	}

	items, total, err := s.repo.List(ctx, s.kind, f)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, PersistenceError("Failed to fetch products", err)
	}
	if items == nil {
		items = []models.Product{}
	}
	page := &models.ProductPage{Items: items, Total: total, Page: f.Page, Limit: f.Limit}
	if s.cache != nil {
		s.cache.SetListAsync(s.kind, f, page)
	}
	return page, nil
}

func (s *productServiceImpl) GetByID(ctx context.Context, rawID string) (*models.Product, *ServiceError) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, NotFoundError("Product not found")
	}
	if s.cache != nil {
		if p, ok := s.cache.GetProduct(ctx, s.kind, id.String()); ok {
			return p, nil
		}
	}
	p, svcErr := s.find(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if s.cache != nil {
		s.cache.SetProductAsync(s.kind, id.String(), p)
	}
	return p, nil
}

func (s *productServiceImpl) GetBySlug(ctx context.Context, slug string) (*models.Product, *ServiceError) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, NotFoundError("Product not found")
	}
	if s.cache != nil {
		if p, ok := s.cache.GetProduct(ctx, s.kind, slug); ok {
			return p, nil
		}
	}
	p, err := s.repo.FindBySlug(ctx, s.kind, slug)
	if err != nil {
		return nil, s.lookupError(err)
	}
	if s.cache != nil {
		s.cache.SetProductAsync(s.kind, slug, p)
	}
	return p, nil
}

func (s *productServiceImpl) Create(ctx context.Context, in ProductInput, files []*multipart.FileHeader) (*models.Product, *ServiceError) {
	p := &models.Product{Kind: s.kind}
	if svcErr := s.apply(p, in); svcErr != nil {
		return nil, svcErr
	}
	if svcErr := s.checkSlug(ctx, p.Slug, uuid.Nil); svcErr != nil {
		return nil, svcErr
	}

	if len(files) > 0 {
		images, err := s.images.UploadImages(ctx, files, s.folder())
		if err != nil {
			s.logger.Error("Image upload failed", zap.Error(err))
			return nil, IntegrationError(http.StatusBadGateway, "Failed to upload images", err)
		}
		p.Images = images
	}
	if p.Images == nil {
		p.Images = []models.Image{}
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.destroyImages(ctx, p.Images)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ConflictError("A product with this slug already exists")
		}
		s.logger.Error("Failed to create product", zap.Error(err))
		return nil, PersistenceError("Failed to create product", err)
	}

	s.invalidate(ctx, p)
	s.logger.Info("Product created", zap.String("product_id", p.ID.String()), zap.String("slug", p.Slug))
	return p, nil
}

func (s *productServiceImpl) Update(ctx context.Context, rawID string, in ProductInput, files []*multipart.FileHeader) (*models.Product, *ServiceError) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, NotFoundError("Product not found")
	}
	p, svcErr := s.find(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	previous := *p

	if svcErr := s.apply(p, in); svcErr != nil {
		return nil, svcErr
	}
	if p.Slug != previous.Slug {
		if svcErr := s.checkSlug(ctx, p.Slug, p.ID); svcErr != nil {
			return nil, svcErr
		}
	}

	var replaced []models.Image
	if len(files) > 0 {
		images, err := s.images.UploadImages(ctx, files, s.folder())
		if err != nil {
			s.logger.Error("Image upload failed", zap.Error(err))
			return nil, IntegrationError(http.StatusBadGateway, "Failed to upload images", err)
		}
		replaced = p.Images
		p.Images = images
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if len(files) > 0 {
			s.destroyImages(ctx, p.Images)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ConflictError("A product with this slug already exists")
		}
		s.logger.Error("Failed to update product", zap.String("product_id", rawID), zap.Error(err))
		return nil, PersistenceError("Failed to update product", err)
	}

	s.destroyImages(ctx, replaced)
	s.invalidate(ctx, &previous)
	s.invalidate(ctx, p)
	s.logger.Info("Product updated", zap.String("product_id", rawID))
	return p, nil
}

func (s *productServiceImpl) Delete(ctx context.Context, rawID string) *ServiceError {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return NotFoundError("Product not found")
	}
	p, svcErr := s.find(ctx, id)
	if svcErr != nil {
		return svcErr
	}
	if err := s.repo.Delete(ctx, s.kind, id); err != nil {
		return s.lookupError(err)
	}

	s.destroyImages(ctx, p.Images)
	s.invalidate(ctx, p)
	s.logger.Info("Product deleted", zap.String("product_id", rawID))
	return nil
}

func (s *productServiceImpl) find(ctx context.Context, id uuid.UUID) (*models.Product, *ServiceError) {
	p, err := s.repo.FindByID(ctx, s.kind, id)
	if err != nil {
		return nil, s.lookupError(err)
	}
	return p, nil
}

func (s *productServiceImpl) lookupError(err error) *ServiceError {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundError("Product not found")
	}
	s.logger.Error("Product lookup failed", zap.Error(err))
	return PersistenceError("Failed to fetch product", err)
}

func (s *productServiceImpl) checkSlug(ctx context.Context, slug string, exclude uuid.UUID) *ServiceError {
	taken, err := s.repo.SlugTaken(ctx, s.kind, slug, exclude)
	if err != nil {
		s.logger.Error("Slug check failed", zap.Error(err))
		return PersistenceError("Failed to check slug", err)
	}
	if taken {
		return ConflictError("A product with this slug already exists")
	}
	return nil
}

// apply copies the input onto p, keeping only the fields of the service's kind.
func (s *productServiceImpl) apply(p *models.Product, in ProductInput) *ServiceError {
	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(in.Name)
	}
	if slug == "" {
		return ValidationError("Product name must contain letters or digits")
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Slug = slug
	p.Description = in.Description
	p.Price = in.Price
	p.Stock = in.Stock
	p.IsActive = in.IsActive

	switch s.kind {
	case models.ProductKindCasual:
		if in.CompareAtPrice != nil && *in.CompareAtPrice < in.Price {
			return ValidationError("compareAtPrice must not be lower than price")
		}
		p.CompareAtPrice = in.CompareAtPrice
		p.Category = strings.TrimSpace(in.Category)
		p.Sizes = jsonList(in.Sizes)
		p.Colors = jsonList(in.Colors)
	case models.ProductKindDTF:
		p.MinQuantity = in.MinQuantity
		p.PrintSizes = jsonList(in.PrintSizes)
		p.TransferType = strings.TrimSpace(in.TransferType)
	default:
		return ValidationError(fmt.Sprintf("Unknown product kind %q", s.kind))
	}
	return nil
}

func (s *productServiceImpl) invalidate(ctx context.Context, p *models.Product) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, s.kind, p)
	}
}

func (s *productServiceImpl) destroyImages(ctx context.Context, images []models.Image) {
	if len(images) == 0 {
		return
	}
	ids := make([]string, 0, len(images))
	for _, img := range images {
		if img.PublicID != "" {
			ids = append(ids, img.PublicID)
		}
	}
	if len(ids) == 0 {
		return
	}
	if err := s.images.DeleteImages(context.WithoutCancel(ctx), ids); err != nil {
		s.logger.Warn("Failed to delete images", zap.Strings("public_ids", ids), zap.Error(err))
	}
}

// Slugify lowercases s and joins its letter and digit runs with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) && r < unicode.MaxASCII || unicode.IsDigit(r) && r < unicode.MaxASCII {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	return b.String()
}

func jsonList(values []string) datatypes.JSON {
	clean := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			clean = append(clean, v)
		}
	}
	b, _ := json.Marshal(clean)
	return datatypes.JSON(b)
}
