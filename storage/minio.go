package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

// MinIOStore keeps photos in an S3-compatible bucket. Objects are streamed back
// through the API so photo URLs stay the same as with disk storage.
type MinIOStore struct {
	client     *minio.Client
	bucketName string
}

func NewMinIOStore(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		log.Warn().Err(err).Msgf("Failed to check bucket existence for %s (will continue)", bucketName)
	} else if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", bucketName, err)
		}
		log.Info().Msgf("Bucket %s created successfully", bucketName)
	}

	log.Info().
		Str("endpoint", endpoint).
		Str("bucket", bucketName).
		Msg("MinIO photo storage initialized")

	return &MinIOStore{client: client, bucketName: bucketName}, nil
}

func (s *MinIOStore) Save(ctx context.Context, r io.Reader, size int64, originalName, contentType string) (string, error) {
	filename := generateFilename(originalName)
	if contentType == "" {
		contentType = contentTypeFor(filename)
	}

	_, err := s.client.PutObject(ctx, s.bucketName, filename, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	log.Info().
		Str("filename", originalName).
		Str("key", filename).
		Msg("Photo uploaded")
	return filename, nil
}

func (s *MinIOStore) Open(ctx context.Context, filename string) (io.ReadCloser, PhotoInfo, error) {
	if err := checkFilename(filename); err != nil {
		return nil, PhotoInfo{}, err
	}

	obj, err := s.client.GetObject(ctx, s.bucketName, filename, minio.GetObjectOptions{})
	if err != nil {
		return nil, PhotoInfo{}, fmt.Errorf("get photo: %w", err)
	}

	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, PhotoInfo{}, ErrPhotoNotFound
		}
		return nil, PhotoInfo{}, fmt.Errorf("stat photo: %w", err)
	}

	contentType := stat.ContentType
	if contentType == "" {
		contentType = contentTypeFor(filename)
	}
	return obj, PhotoInfo{Size: stat.Size, ContentType: contentType}, nil
}
