// Package backend talks to the sentiment image search service.
package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cloo-solutions/sentisearch/internal/domain"
)

// Backend endpoints.
const (
	PathProcessQuery       = "/process_query"
	PathUploadFaceTemplate = "/upload_face_template"
	PathEvaluateResult     = "/evaluate_result"
	PathTranscribe         = "/transcribe"
)

const (
	defaultTimeout   = 30 * time.Second
	faceTemplateName = "face_template.jpg"
	maxErrorBody     = 4 << 10
)

// Client is an HTTP client for the search backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a Client. A zero timeout uses 30s.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "backend").Logger(),
	}
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// ProcessQuery posts a search request and decodes the ranked results.
func (c *Client) ProcessQuery(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	var resp domain.SearchResponse
	if err := c.do(ctx, PathProcessQuery, "application/json", bytes.NewReader(body), &resp); err != nil {
		return nil, domain.NewRequestError(PathProcessQuery, err)
	}
	if resp.Results == nil {
		resp.Results = []domain.SearchResult{}
	}
	return &resp, nil
}

// UploadFaceTemplate posts a JPEG frame as the multipart field "image".
func (c *Client) UploadFaceTemplate(ctx context.Context, jpeg []byte) error {
	body, contentType, err := multipartBody("image", faceTemplateName, bytes.NewReader(jpeg))
	if err != nil {
		return err
	}
	if err := c.do(ctx, PathUploadFaceTemplate, contentType, body, nil); err != nil {
		return domain.NewRequestError(PathUploadFaceTemplate, err)
	}
	return nil
}

// EvaluateResult posts one relevance judgment.
func (c *Client) EvaluateResult(ctx context.Context, event domain.FeedbackEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	if err := c.do(ctx, PathEvaluateResult, "application/json", bytes.NewReader(body), nil); err != nil {
		return domain.NewRequestError(PathEvaluateResult, err)
	}
	return nil
}

// Transcribe posts recorded audio as the multipart field "audio" and returns
// the recognized text.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	body, contentType, err := multipartBody("audio", filename, audio)
	if err != nil {
		return "", err
	}
	var out struct {
		Text string `json:"text"`
	}
	if err := c.do(ctx, PathTranscribe, contentType, body, &out); err != nil {
		return "", domain.NewRequestError(PathTranscribe, err)
	}
	return out.Text, nil
}

// ResolveURL resolves a result image URL against the backend base URL.
func (c *Client) ResolveURL(imageURL string) (string, error) {
	ref, err := url.Parse(imageURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse image url: %w", err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return "", fmt.Errorf("failed to parse base url: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}

// Download saves the image at imageURL into dir and returns the written path.
func (c *Client) Download(ctx context.Context, imageURL, dir string) (string, error) {
	resolved, err := c.ResolveURL(imageURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolved, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.NewRequestError(resolved, fmt.Errorf("failed to download file: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", domain.NewRequestError(resolved, fmt.Errorf("download failed with status %d", resp.StatusCode))
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(dir, downloadName(resolved))
	out, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return outputPath, nil
}

func (c *Client) do(ctx context.Context, endpoint, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(msg)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func multipartBody(field, filename string, r io.Reader) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, "", fmt.Errorf("failed to write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func errorMessage(body []byte) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return strings.TrimSpace(string(body))
}

func downloadName(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		name := path.Base(u.Path)
		if name != "" && name != "." && name != "/" {
			return name
		}
	}
	return uuid.NewString() + ".jpg"
}
