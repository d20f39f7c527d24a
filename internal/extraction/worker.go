package extraction

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/octobees/cardcrm/internal/entity"
)

// WorkerPoster posts JSON payloads to worker endpoints.
type WorkerPoster interface {
	PostJSON(ctx context.Context, path string, payload any, requestID string) (map[string]any, error)
}

// WorkerClient talks to an extraction worker over HTTP.
type WorkerClient struct {
	client  *http.Client
	baseURL string
}

// NewWorkerClient builds a worker client, auto-configuring an ID token client when none is injected.
func NewWorkerClient(client *http.Client, workerBaseURL string) (*WorkerClient, error) {
	workerBaseURL = strings.TrimRight(strings.TrimSpace(workerBaseURL), "/")
	if workerBaseURL == "" {
		return nil, ErrNotConfigured
	}
	if client == nil {
		idc, err := idtoken.NewClient(context.Background(), workerBaseURL)
		if err != nil {
			client = &http.Client{Timeout: 30 * time.Second}
		} else {
			client = idc
		}
	}
	return &WorkerClient{client: client, baseURL: workerBaseURL}, nil
}

// PostJSON posts the payload to the worker and returns the "data" object.
func (c *WorkerClient) PostJSON(ctx context.Context, path string, payload any, requestID string) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create worker request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("worker request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("worker error: %s", extractWorkerError(resp.Body))
	}

	var workerResp struct {
		Data  map[string]any `json:"data"`
		Error string         `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&workerResp); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if workerResp.Error != "" {
		return nil, fmt.Errorf("worker error: %s", workerResp.Error)
	}
	return workerResp.Data, nil
}

func extractWorkerError(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return "worker returned an error"
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return string(data)
}

type requestIDKey struct{}

// WithRequestID annotates ctx so worker calls forward the id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WorkerExtractor delegates card extraction to a worker's /extract endpoint.
type WorkerExtractor struct {
	poster WorkerPoster
}

// NewWorkerExtractor wraps a worker poster.
func NewWorkerExtractor(poster WorkerPoster) *WorkerExtractor {
	return &WorkerExtractor{poster: poster}
}

// Extract posts the base64 photo and decodes the returned card.
func (w *WorkerExtractor) Extract(ctx context.Context, image []byte, mimeType string) (entity.ExtractedCard, error) {
	if w.poster == nil {
		return entity.ExtractedCard{}, ErrNotConfigured
	}
	payload := map[string]string{
		"image":     base64.StdEncoding.EncodeToString(image),
		"mime_type": mimeType,
	}
	data, err := w.poster.PostJSON(ctx, "/extract", payload, requestIDFrom(ctx))
	if err != nil {
		return entity.ExtractedCard{}, err
	}
	if data == nil {
		return entity.ExtractedCard{}, fmt.Errorf("%w: missing data object", ErrMalformedResponse)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return entity.ExtractedCard{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return decodeCard(raw)
}

var (
	_ WorkerPoster = (*WorkerClient)(nil)
	_ Extractor    = (*WorkerExtractor)(nil)
)
