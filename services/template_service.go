package services

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
	"github.com/Hosanna-Mosa/c-t-sub002/repository"
	"github.com/Hosanna-Mosa/c-t-sub002/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const templateFolder = "templates"

type TemplateInput struct {
	Name        string
	Category    string
	Description string
	IsActive    bool
}

type TemplateService interface {
	List(ctx context.Context, activeOnly bool) ([]models.Template, *ServiceError)
	Get(ctx context.Context, id string) (*models.Template, *ServiceError)
	Create(ctx context.Context, in TemplateInput, images []*multipart.FileHeader) (*models.Template, *ServiceError)
	Update(ctx context.Context, id string, in TemplateInput, images []*multipart.FileHeader) (*models.Template, *ServiceError)
	Delete(ctx context.Context, id string) *ServiceError
}

type templateServiceImpl struct {
	repo   repository.TemplateRepository
	images storage.ImageStore
	now    func() time.Time
	logger *zap.Logger
}

func NewTemplateService(repo repository.TemplateRepository, images storage.ImageStore, logger *zap.Logger) TemplateService {
	return &templateServiceImpl{repo: repo, images: images, now: time.Now, logger: logger}
}

func (s *templateServiceImpl) List(ctx context.Context, activeOnly bool) ([]models.Template, *ServiceError) {
	templates, err := s.repo.FindAll(ctx, activeOnly)
	if err != nil {
		s.logger.Error("Failed to list templates", zap.Error(err))
		return nil, PersistenceError("Failed to fetch templates", err)
	}
	if templates == nil {
		templates = []models.Template{}
	}
	return templates, nil
}

func (s *templateServiceImpl) Get(ctx context.Context, id string) (*models.Template, *ServiceError) {
	t, err := s.repo.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, s.lookupError(err)
	}
	return t, nil
}

func (s *templateServiceImpl) Create(ctx context.Context, in TemplateInput, files []*multipart.FileHeader) (*models.Template, *ServiceError) {
	if len(files) != 1 {
		return nil, ValidationError("Exactly one template image is required")
	}
	image, svcErr := s.upload(ctx, files)
	if svcErr != nil {
		return nil, svcErr
	}

	now := s.now().UTC()
	t := &models.Template{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Category:    strings.TrimSpace(in.Category),
		Description: in.Description,
		Image:       image,
		IsActive:    in.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Put(ctx, t); err != nil {
		s.destroy(ctx, image)
		s.logger.Error("Failed to create template", zap.Error(err))
		return nil, PersistenceError("Failed to create template", err)
	}
	s.logger.Info("Template created", zap.String("template_id", t.ID))
	return t, nil
}

func (s *templateServiceImpl) Update(ctx context.Context, id string, in TemplateInput, files []*multipart.FileHeader) (*models.Template, *ServiceError) {
	t, svcErr := s.Get(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if len(files) > 1 {
		return nil, ValidationError("Only one template image is allowed")
	}

	var replaced models.Image
	if len(files) == 1 {
		image, svcErr := s.upload(ctx, files)
		if svcErr != nil {
			return nil, svcErr
		}
		replaced = t.Image
		t.Image = image
	}

	t.Name = strings.TrimSpace(in.Name)
	t.Category = strings.TrimSpace(in.Category)
	t.Description = in.Description
	t.IsActive = in.IsActive
	t.UpdatedAt = s.now().UTC()

	if err := s.repo.Put(ctx, t); err != nil {
		if len(files) == 1 {
			s.destroy(ctx, t.Image)
		}
		s.logger.Error("Failed to update template", zap.String("template_id", id), zap.Error(err))
		return nil, PersistenceError("Failed to update template", err)
	}
	s.destroy(ctx, replaced)
	s.logger.Info("Template updated", zap.String("template_id", id))
	return t, nil
}

func (s *templateServiceImpl) Delete(ctx context.Context, id string) *ServiceError {
	t, svcErr := s.Get(ctx, id)
	if svcErr != nil {
		return svcErr
	}
	if err := s.repo.Delete(ctx, t.ID); err != nil {
		return s.lookupError(err)
	}
	s.destroy(ctx, t.Image)
	s.logger.Info("Template deleted", zap.String("template_id", id))
	return nil
}

func (s *templateServiceImpl) upload(ctx context.Context, files []*multipart.FileHeader) (models.Image, *ServiceError) {
	images, err := s.images.UploadImages(ctx, files, templateFolder)
	if err != nil || len(images) == 0 {
		s.logger.Error("Template image upload failed", zap.Error(err))
		return models.Image{}, IntegrationError(http.StatusBadGateway, "Failed to upload image", err)
	}
	return images[0], nil
}

func (s *templateServiceImpl) destroy(ctx context.Context, image models.Image) {
	if image.PublicID == "" {
		return
	}
	if err := s.images.DeleteImages(context.WithoutCancel(ctx), []string{image.PublicID}); err != nil {
		s.logger.Warn("Failed to delete template image", zap.String("public_id", image.PublicID), zap.Error(err))
	}
}

func (s *templateServiceImpl) lookupError(err error) *ServiceError {
	if errors.Is(err, repository.ErrTemplateNotFound) {
		return NotFoundError("Template not found")
	}
	s.logger.Error("Template lookup failed", zap.Error(err))
	return PersistenceError("Failed to fetch template", err)
}
