package storage

import (
	"context"
	"mime/multipart"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
)

// ImageStore hosts catalog and template images.
type ImageStore interface {
	UploadImages(ctx context.Context, files []*multipart.FileHeader, folder string) ([]models.Image, error)
	DeleteImages(ctx context.Context, publicIDs []string) error
}

// LabelStore re-hosts a carrier label file so the order keeps working links
// after the carrier's own URL expires.
type LabelStore interface {
	StoreLabel(ctx context.Context, orderID, trackingNumber, sourceURL string) (StoredLabel, error)
}

// StoredLabel is where a label ended up. ID is what is needed to delete it.
type StoredLabel struct {
	URL string
	ID  string
}
