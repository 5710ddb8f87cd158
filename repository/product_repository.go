package repository

import (
	"context"
	"strings"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository defines data-access operations for catalog products.
// Every call is scoped to one product kind.
type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, kind string, id uuid.UUID) (*models.Product, error)
	FindBySlug(ctx context.Context, kind, slug string) (*models.Product, error)
	List(ctx context.Context, kind string, f models.ProductFilter) ([]models.Product, int64, error)
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, kind string, id uuid.UUID) error
	SlugTaken(ctx context.Context, kind, slug string, excludeID uuid.UUID) (bool, error)
}

type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *GormProductRepository) FindByID(ctx context.Context, kind string, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND id = ?", kind, id).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProductRepository) FindBySlug(ctx context.Context, kind, slug string) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND slug = ?", kind, slug).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProductRepository) List(ctx context.Context, kind string, f models.ProductFilter) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Product{}).Where("kind = ?", kind)
	if s := strings.TrimSpace(f.Search); s != "" {
		q = q.Where("name ILIKE ?", "%"+s+"%")
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	if err := q.
		Order("created_at DESC").
		Offset(offset).Limit(f.Limit).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *GormProductRepository) Update(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *GormProductRepository) Delete(ctx context.Context, kind string, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("kind = ? AND id = ?", kind, id).
		Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormProductRepository) SlugTaken(ctx context.Context, kind, slug string, excludeID uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Product{}).Where("kind = ? AND slug = ?", kind, slug)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
