package registration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// RecordIDPlaceholder is replaced with the record id in HTTPConfig.Endpoint.
const RecordIDPlaceholder = "{recordId}"

const maxErrorBodySize = 64 * 1024

type HTTPConfig struct {
	// Endpoint receives a POST with {"items": [...]}. Every occurrence of
	// RecordIDPlaceholder is replaced with the record id.
	Endpoint string
	Headers  http.Header
}

type httpRequestFunc func(req *http.Request) (*http.Response, error)

type HTTPRegistrar struct {
	config      HTTPConfig
	makeRequest httpRequestFunc
}

var _ Registrar = (*HTTPRegistrar)(nil)

func NewHTTPRegistrar(config HTTPConfig) *HTTPRegistrar {
	return &HTTPRegistrar{config, http.DefaultClient.Do}
}

type registerRequest struct {
	Items    []Item `json:"items"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (r *HTTPRegistrar) Register(ctx context.Context, recordID int64, items []Item) error {
	req, err := r.buildRequest(ctx, recordID, items)
	if err != nil {
		return err
	}

	response, err := r.makeRequest(req)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		io.Copy(io.Discard, response.Body)
		return nil
	}

	return readResponseError(response)
}

func (r *HTTPRegistrar) buildRequest(ctx context.Context, recordID int64, items []Item) (*http.Request, error) {
	if r.config.Endpoint == "" {
		return nil, ErrEmptyEndpoint
	}

	payload := registerRequest{Items: items}
	if payload.Items == nil {
		payload.Items = []Item{}
	}

	endpoint := strings.ReplaceAll(r.config.Endpoint, RecordIDPlaceholder, strconv.FormatInt(recordID, 10))

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	for key, values := range r.config.Headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}

func readResponseError(response *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBodySize))

	var decoded errorResponse
	if err := json.Unmarshal(body, &decoded); err == nil && decoded.Error != "" {
		return &ResponseError{response.StatusCode, decoded.Error}
	}

	message := strings.TrimSpace(string(body))
	if message == "" || !isPlainText(response) {
		message = http.StatusText(response.StatusCode)
	}

	return &ResponseError{response.StatusCode, message}
}

func isPlainText(response *http.Response) bool {
	return strings.HasPrefix(response.Header.Get("Content-Type"), "text/plain")
}
