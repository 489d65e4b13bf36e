package storage

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/api/googleapi"
)

func TestGCSStorage_PublicURLShouldDefaultToGoogleStorageHost(t *testing.T) {
	storage := NewGCSStorage(nil, GCSConfig{})

	url := storage.PublicURL("checklist", "os-7/check-42/id.jpg")
	if url != "https://storage.googleapis.com/checklist/os-7/check-42/id.jpg" {
		t.Errorf("unexpected public url: %s", url)
	}
}

func TestGCSStorage_ShouldMapFailedPreconditionToAlreadyExists(t *testing.T) {
	precondition := fmt.Errorf("writer close: %w", &googleapi.Error{Code: http.StatusPreconditionFailed})
	if err := convertGCSError(precondition); err != ErrObjectAlreadyExists {
		t.Errorf("expected ErrObjectAlreadyExists, got %v", err)
	}

	other := &googleapi.Error{Code: http.StatusForbidden, Message: "denied"}
	if err := convertGCSError(other); !errors.Is(err, other) {
		t.Errorf("expected other errors verbatim, got %v", err)
	}

	if err := convertGCSError(nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}
