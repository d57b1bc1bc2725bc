package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/spec-kit/civicguard/internal/config"
)

// MinioStore uploads images to a MinIO (S3-compatible) bucket that is
// assumed to be anonymously readable.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
	logger    *zap.Logger
}

// NewMinioStore connects to MinIO and makes sure the bucket exists with a
// public-read policy.
func NewMinioStore(cfg config.StorageConfig, logger *zap.Logger) (*MinioStore, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.MinioEndpoint, "https://"), "http://")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	publicURL := strings.TrimSuffix(strings.TrimSpace(cfg.MinioPublicURL), "/")

	store := &MinioStore{
		client:    client,
		bucket:    cfg.MinioBucket,
		publicURL: publicURL,
		logger:    logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		logger.Warn("unable to check minio bucket; continuing", zap.Error(err))
		return store, nil
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.MinioBucket, err)
		}
		policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Action":["s3:GetObject"],"Effect":"Allow","Principal":{"AWS":["*"]},"Resource":["arn:aws:s3:::%s/*"],"Sid":""}]}`, cfg.MinioBucket)
		if err := client.SetBucketPolicy(ctx, cfg.MinioBucket, policy); err != nil {
			logger.Warn("failed to set bucket policy", zap.Error(err))
		}
		logger.Info("created minio bucket", zap.String("bucket", cfg.MinioBucket))
	}

	return store, nil
}

// Store uploads the image and returns its key and public URL.
func (s *MinioStore) Store(ctx context.Context, data []byte, filenameHint, contentType string) (string, string, error) {
	key := objectKey(filenameHint)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", "", fmt.Errorf("minio put object: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, key)
	return key, url, nil
}
