package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// uploads are photos only; extension follows the declared content type
var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

var dangerousFilenameParts = []string{"..", "/", "\\", "<", ">", ":", "\"", "|", "?", "*"}

const defaultUploadExpiry = 5 * time.Minute

type Store struct {
	client     *minio.Client
	bucketName string
	region     string
}

// New buat koneksi MinIO
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	// pastikan bucket ada
	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Store{client: cli, bucketName: bucket, region: region}, nil
}

// UploadTicket is everything the frontend needs to PUT one file
type UploadTicket struct {
	URL       string `json:"upload_url"`
	Bucket    string `json:"bucket"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expires_in"`
}

// PresignedUpload issues a temporary PUT URL for one image upload. The
// original filename never becomes the object key; a generated key avoids
// collisions and path tricks.
func (s *Store) PresignedUpload(ctx context.Context, filename, contentType string) (*UploadTicket, error) {
	if err := ValidateUpload(filename, contentType); err != nil {
		return nil, err
	}
	ext := allowedContentTypes[strings.ToLower(contentType)]

	key := fmt.Sprintf("uploads/%s/%s%s", time.Now().UTC().Format("2006/01/02"), uuid.New().String(), ext)
	u, err := s.client.PresignedPutObject(ctx, s.bucketName, key, defaultUploadExpiry)
	if err != nil {
		return nil, fmt.Errorf("generate presigned upload url: %w", err)
	}

	return &UploadTicket{
		URL:       u.String(),
		Bucket:    s.bucketName,
		Key:       key,
		ExpiresIn: int(defaultUploadExpiry.Seconds()),
	}, nil
}

// PresignedGet returns a temporary read URL so the vision service can
// fetch a stored image without the bucket being public.
func (s *Store) PresignedGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	if bucket == "" {
		bucket = s.bucketName
	}
	u, err := s.client.PresignedGetObject(ctx, bucket, key, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("generate presigned read url: %w", err)
	}
	return u.String(), nil
}

// Bucket returns the configured upload bucket
func (s *Store) Bucket() string { return s.bucketName }

// ValidateUpload checks an upload request before any MinIO call, so
// callers can reject bad input as a client error.
func ValidateUpload(filename, contentType string) error {
	if _, ok := allowedContentTypes[strings.ToLower(contentType)]; !ok {
		return fmt.Errorf("unsupported content type: %s", contentType)
	}
	return validateFilename(filename)
}

func validateFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("filename is required")
	}
	if len(name) > 255 {
		return fmt.Errorf("filename too long")
	}
	for _, part := range dangerousFilenameParts {
		if strings.Contains(name, part) {
			return fmt.Errorf("filename contains dangerous characters")
		}
	}
	return nil
}
