package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"backoffice/internal/common"
	"backoffice/internal/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const maxLogoSize = 2 << 20

var allowedLogoTypes = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

type LogoStore interface {
	Upload(ctx context.Context, organizationID uuid.UUID, filename, contentType string, r io.Reader, size int64) (string, error)
	PublicURL(key string) string
	Delete(ctx context.Context, key string) error
	EnsureBucket(ctx context.Context) error
	Ping(ctx context.Context) error
}

type minioLogoStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

func NewMinioLogoStore(cfg config.StorageConfig) (LogoStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioLogoStore{client: client, bucket: cfg.Bucket, baseURL: publicBaseURL(cfg)}, nil
}

// publicBaseURL is the URL prefix objects of the bucket are served under.
func publicBaseURL(cfg config.StorageConfig) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
}

// LogoKey builds the object key for a new logo upload.
func LogoKey(organizationID uuid.UUID, filename, contentType string) (string, error) {
	ext, ok := allowedLogoTypes[strings.ToLower(contentType)]
	if !ok {
		return "", common.Invalid("logo must be PNG, JPEG, WebP or SVG, got %q", contentType)
	}
	if fileExt := strings.ToLower(path.Ext(filename)); fileExt == ".jpeg" && ext == ".jpg" {
		ext = fileExt
	}
	return fmt.Sprintf("logos/%s/%s%s", organizationID, uuid.NewString(), ext), nil
}

func (m *minioLogoStore) Upload(ctx context.Context, organizationID uuid.UUID, filename, contentType string, r io.Reader, size int64) (string, error) {
	if size <= 0 || size > maxLogoSize {
		return "", common.Invalid("logo must be between 1 byte and %d bytes", maxLogoSize)
	}
	key, err := LogoKey(organizationID, filename, contentType)
	if err != nil {
		return "", err
	}
	_, err = m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=86400",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload logo: %w", err)
	}
	return key, nil
}

func (m *minioLogoStore) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	return m.baseURL + "/" + key
}

func (m *minioLogoStore) Delete(ctx context.Context, key string) error {
	return m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
}

// EnsureBucket creates the bucket when missing and makes the logos prefix publicly readable.
func (m *minioLogoStore) EnsureBucket(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return err
		}
		config.GetLogger().WithField("bucket", m.bucket).Info("created storage bucket")
	}
	return m.client.SetBucketPolicy(ctx, m.bucket, publicReadPolicy(m.bucket))
}

func (m *minioLogoStore) Ping(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		return errors.New("bucket " + m.bucket + " does not exist")
	}
	return nil
}

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/logos/*"]}]}`, bucket)
}
