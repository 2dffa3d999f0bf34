package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStorage stores objects in an S3-compatible service.
type MinioStorage struct {
	client    *minio.Client
	publicURL string
}

// NewMinioStorage connects to endpoint. publicURL is the base used for the
// returned object URLs and defaults to the endpoint itself.
func NewMinioStorage(endpoint, accessKey, secretKey string, useSSL bool, publicURL string) (*MinioStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	base := strings.TrimRight(strings.TrimSpace(publicURL), "/")
	if base == "" {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s", scheme, endpoint)
	}
	return &MinioStorage{client: client, publicURL: base}, nil
}

// S3 bucket names cannot contain underscores.
func remoteBucket(bucket string) string {
	return strings.ReplaceAll(bucket, "_", "-")
}

func (s *MinioStorage) ensureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}

// Upload puts the object, creating the bucket on first use.
func (s *MinioStorage) Upload(ctx context.Context, bucket, name string, r io.Reader, size int64, contentType string) (string, error) {
	if err := validate(bucket, name); err != nil {
		return "", err
	}
	remote := remoteBucket(bucket)
	if err := s.ensureBucket(ctx, remote); err != nil {
		return "", fmt.Errorf("ensure bucket %s: %w", remote, err)
	}

	_, err := s.client.PutObject(ctx, remote, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", s.publicURL, remote, name), nil
}

// List returns every object in bucket.
func (s *MinioStorage) List(ctx context.Context, bucket string) ([]Object, error) {
	if !bucketPattern.MatchString(bucket) {
		return nil, ErrInvalidBucket
	}
	remote := remoteBucket(bucket)

	var objects []Object
	for info := range s.client.ListObjects(ctx, remote, minio.ListObjectsOptions{Recursive: true}) {
		if info.Err != nil {
			if minio.ToErrorResponse(info.Err).Code == "NoSuchBucket" {
				return nil, nil
			}
			return nil, info.Err
		}
		objects = append(objects, Object{Name: info.Key, Size: info.Size})
	}
	return objects, nil
}
