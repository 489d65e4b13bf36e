package storage

import (
	"bytes"
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Location  string
	UseSSL    bool
	// PublicBaseURL defaults to the endpoint, e.g. "https://minio.example.com".
	PublicBaseURL string
}

// minioClient is the subset of *minio.Client used here.
type minioClient interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
}

type MinioStorage struct {
	config MinioConfig
	client minioClient
}

var _ ObjectStorage = (*MinioStorage)(nil)

func NewMinioStorage(config MinioConfig) (*MinioStorage, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
		Region: config.Location,
	})
	if err != nil {
		return nil, err
	}

	return newMinioStorage(config, client), nil
}

func newMinioStorage(config MinioConfig, client minioClient) *MinioStorage {
	if config.Location == "" {
		config.Location = "us-east-1"
	}

	if config.PublicBaseURL == "" {
		scheme := "http://"
		if config.UseSSL {
			scheme = "https://"
		}
		config.PublicBaseURL = scheme + config.Endpoint
	}

	return &MinioStorage{config, client}
}

// EnsureBucket creates bucket when it does not exist yet.
func (s *MinioStorage) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil || exists {
		return err
	}

	return s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.config.Location})
}

func (s *MinioStorage) Upload(ctx context.Context, bucket, objectPath string, data []byte, opts UploadOptions) error {
	if !opts.Upsert {
		exists, err := s.objectExists(ctx, bucket, objectPath)
		if err != nil {
			return err
		}
		if exists {
			return ErrObjectAlreadyExists
		}
	}

	_, err := s.client.PutObject(
		ctx,
		bucket,
		objectPath,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{
			ContentType:  opts.ContentType,
			CacheControl: CacheControlHeader(opts.CacheControl),
		},
	)
	return err
}

func (s *MinioStorage) PublicURL(bucket, objectPath string) string {
	return publicURL(s.config.PublicBaseURL, bucket, objectPath)
}

func (s *MinioStorage) objectExists(ctx context.Context, bucket, objectPath string) (bool, error) {
	_, err := s.client.StatObject(ctx, bucket, objectPath, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
