package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxLabelBytes = 10 << 20

// ObjectStore is the slice of the S3 wrapper the label store needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// S3LabelStore downloads the carrier's label and keeps a copy in S3. The
// returned URL is presigned for ttl; the object key is the stored id.
type S3LabelStore struct {
	objects    ObjectStore
	prefix     string
	ttl        time.Duration
	httpClient *http.Client
}

func NewS3LabelStore(objects ObjectStore, prefix string, ttl time.Duration) *S3LabelStore {
	if prefix == "" {
		prefix = "labels"
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &S3LabelStore{
		objects:    objects,
		prefix:     prefix,
		ttl:        ttl,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

func (s *S3LabelStore) StoreLabel(ctx context.Context, orderID, trackingNumber, sourceURL string) (StoredLabel, error) {
	body, contentType, err := s.download(ctx, sourceURL)
	if err != nil {
		return StoredLabel{}, err
	}

	key := fmt.Sprintf("%s/%s/%s.pdf", s.prefix, orderID, trackingNumber)
	if err := s.objects.Put(ctx, key, body, contentType); err != nil {
		return StoredLabel{}, err
	}

	url, err := s.objects.PresignGet(ctx, key, s.ttl)
	if err != nil {
		return StoredLabel{}, err
	}
	return StoredLabel{URL: url, ID: key}, nil
}

func (s *S3LabelStore) download(ctx context.Context, sourceURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create label request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download label: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download label: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLabelBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read label: %w", err)
	}
	if len(body) > maxLabelBytes {
		return nil, "", fmt.Errorf("label exceeds %d bytes", maxLabelBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}
	return body, contentType, nil
}
