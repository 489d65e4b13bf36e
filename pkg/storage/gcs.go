package storage

import (
	"context"
	"errors"
	"net/http"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

type GCSConfig struct {
	// PublicBaseURL defaults to https://storage.googleapis.com.
	PublicBaseURL string
}

type GCSStorage struct {
	config GCSConfig
	client *gcs.Client
}

var _ ObjectStorage = (*GCSStorage)(nil)

func NewGCSStorage(client *gcs.Client, config GCSConfig) *GCSStorage {
	if config.PublicBaseURL == "" {
		config.PublicBaseURL = "https://storage.googleapis.com"
	}

	return &GCSStorage{config, client}
}

func (s *GCSStorage) Upload(ctx context.Context, bucket, objectPath string, data []byte, opts UploadOptions) error {
	object := s.client.Bucket(bucket).Object(objectPath)
	if !opts.Upsert {
		object = object.If(gcs.Conditions{DoesNotExist: true})
	}

	writer := object.NewWriter(ctx)
	writer.ContentType = opts.ContentType
	writer.CacheControl = CacheControlHeader(opts.CacheControl)

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return convertGCSError(err)
	}

	return convertGCSError(writer.Close())
}

func (s *GCSStorage) PublicURL(bucket, objectPath string) string {
	return publicURL(s.config.PublicBaseURL, bucket, objectPath)
}

func convertGCSError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed {
		return ErrObjectAlreadyExists
	}

	return err
}
