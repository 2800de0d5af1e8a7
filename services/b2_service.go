package services

import (
	"context"
	"fmt"
	"sharevault/models"
	"time"

	"github.com/google/uuid"
	"github.com/kurin/blazer/b2"
)

// BlobGateway is the durable object store the file core writes raw bytes to.
// Upload returns a stable identifier plus a retrieval URL; DownloadURL issues
// a fresh URL for an already stored object.
type BlobGateway interface {
	Upload(ctx context.Context, data []byte, mimeType string) (models.BlobRef, error)
	DownloadURL(ctx context.Context, blobID string) (string, error)
	Delete(ctx context.Context, blobID string) error
}

// downloadURLTTL bounds how long an issued download URL stays valid.
const downloadURLTTL = 24 * time.Hour

// B2Service implements BlobGateway against a Backblaze B2 bucket.
type B2Service struct {
	client     *b2.Client
	bucketName string
	bucket     *b2.Bucket
}

func NewB2Service(keyID, applicationKey, bucketName string) (*B2Service, error) {
	ctx := context.Background()

	client, err := b2.NewClient(ctx, keyID, applicationKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create B2 client: %w", err)
	}

	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket %s: %w", bucketName, err)
	}

	return &B2Service{
		client:     client,
		bucketName: bucketName,
		bucket:     bucket,
	}, nil
}

// Upload writes data under a fresh random object key. Keys are never derived
// from the content hash: an explicit re-upload of identical bytes as a new
// version must get its own object.
func (s *B2Service) Upload(ctx context.Context, data []byte, mimeType string) (models.BlobRef, error) {
	objectName := fmt.Sprintf("content/%s", uuid.NewString())

	obj := s.bucket.Object(objectName)
	writer := obj.NewWriter(ctx, b2.WithAttrsOption(&b2.Attrs{ContentType: mimeType}))

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return models.BlobRef{}, fmt.Errorf("failed to upload object to B2: %w", err)
	}
	if err := writer.Close(); err != nil {
		return models.BlobRef{}, fmt.Errorf("failed to close B2 writer: %w", err)
	}

	url, err := s.signedURL(ctx, objectName)
	if err != nil {
		return models.BlobRef{}, err
	}

	return models.BlobRef{BlobID: objectName, URL: url}, nil
}

// DownloadURL issues a fresh signed download URL for a stored object.
func (s *B2Service) DownloadURL(ctx context.Context, blobID string) (string, error) {
	return s.signedURL(ctx, blobID)
}

func (s *B2Service) Delete(ctx context.Context, blobID string) error {
	obj := s.bucket.Object(blobID)
	if err := obj.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object from B2: %w", err)
	}
	return nil
}

func (s *B2Service) signedURL(ctx context.Context, objectName string) (string, error) {
	obj := s.bucket.Object(objectName)
	urlObj, err := obj.AuthURL(ctx, downloadURLTTL, "GET")
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return urlObj.String(), nil
}

var _ BlobGateway = (*B2Service)(nil)
