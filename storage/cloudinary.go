package storage

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore keeps images and labels in Cloudinary.
type CloudinaryStore struct {
	cld         *cloudinary.Cloudinary
	labelFolder string
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret, labelFolder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	if labelFolder == "" {
		labelFolder = "shipping-labels"
	}
	return &CloudinaryStore{cld: cld, labelFolder: labelFolder}, nil
}

func (s *CloudinaryStore) uploadImage(ctx context.Context, file multipart.File, folder string) (models.Image, error) {
	unique := true
	overwrite := false
	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         folder,
		ResourceType:   "image",
		UniqueFilename: &unique,
		Overwrite:      &overwrite,
	})
	if err != nil {
		return models.Image{}, fmt.Errorf("failed to upload image: %w", err)
	}
	if result.SecureURL == "" {
		if result.Error.Message != "" {
			return models.Image{}, fmt.Errorf("failed to upload image: %s", result.Error.Message)
		}
		return models.Image{}, errors.New("upload successful but no URL returned")
	}
	return models.Image{URL: result.SecureURL, PublicID: result.PublicID}, nil
}

// UploadImages uploads files in order. On failure the images already uploaded
// in this call are destroyed.
func (s *CloudinaryStore) UploadImages(ctx context.Context, files []*multipart.FileHeader, folder string) ([]models.Image, error) {
	images := make([]models.Image, 0, len(files))
	for _, fh := range files {
		img, err := s.uploadOne(ctx, fh, folder)
		if err != nil {
			_ = s.DeleteImages(ctx, publicIDs(images))
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func (s *CloudinaryStore) uploadOne(ctx context.Context, fh *multipart.FileHeader, folder string) (models.Image, error) {
	f, err := fh.Open()
	if err != nil {
		return models.Image{}, fmt.Errorf("failed to open file %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return s.uploadImage(ctx, f, folder)
}

func (s *CloudinaryStore) DeleteImages(ctx context.Context, ids []string) error {
	var errs []error
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: id}); err != nil {
			errs = append(errs, fmt.Errorf("destroy %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// StoreLabel has Cloudinary fetch the label straight from the carrier URL.
// The public id is stable per order, so regenerating a label replaces it.
func (s *CloudinaryStore) StoreLabel(ctx context.Context, orderID, trackingNumber, sourceURL string) (StoredLabel, error) {
	overwrite := true
	result, err := s.cld.Upload.Upload(ctx, sourceURL, uploader.UploadParams{
		Folder:       s.labelFolder,
		PublicID:     "order_" + orderID,
		ResourceType: "raw",
		Overwrite:    &overwrite,
		Tags:         []string{"label", trackingNumber},
	})
	if err != nil {
		return StoredLabel{}, fmt.Errorf("failed to upload label: %w", err)
	}
	if result.SecureURL == "" {
		return StoredLabel{}, fmt.Errorf("failed to upload label: %s", result.Error.Message)
	}
	return StoredLabel{URL: result.SecureURL, ID: result.PublicID}, nil
}

func publicIDs(images []models.Image) []string {
	ids := make([]string, 0, len(images))
	for _, img := range images {
		ids = append(ids, img.PublicID)
	}
	return ids
}
