// Package storage uploads artifacts to object storage and derives their public
// URLs.
package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

type UploadOptions struct {
	// CacheControl is either a full header value or a number of seconds.
	CacheControl string
	// Upsert allows overwriting an existing object.
	Upsert      bool
	ContentType string
}

type ObjectStorage interface {
	Upload(ctx context.Context, bucket, objectPath string, data []byte, opts UploadOptions) error
	// PublicURL is derived locally, no network call is made.
	PublicURL(bucket, objectPath string) string
}

// CacheControlHeader turns "3600" into "max-age=3600" and keeps any other
// value as is.
func CacheControlHeader(value string) string {
	if value == "" {
		return ""
	}

	for _, r := range value {
		if r < '0' || r > '9' {
			return value
		}
	}

	return "max-age=" + value
}

func publicURL(baseURL, bucket, objectPath string) string {
	return strings.TrimRight(baseURL, "/") + "/" + escapePath(bucket) + "/" + escapePath(objectPath)
}

func escapePath(objectPath string) string {
	segments := strings.Split(strings.TrimLeft(objectPath, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}

	return strings.Join(segments, "/")
}

var (
	ErrObjectAlreadyExists = errors.New("object already exists")
)
