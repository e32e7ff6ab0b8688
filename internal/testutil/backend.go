package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/cloo-solutions/sentisearch/internal/domain"
)

// Call is one request received by the fake backend.
type Call struct {
	Path        string
	ContentType string
	RequestID   string
	Body        []byte
	// FileName and FileData are set for multipart uploads.
	FileName  string
	FileField string
	FileData  []byte
}

// JSON decodes the call body into v.
func (c Call) JSON(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(c.Body, v); err != nil {
		t.Fatalf("failed to decode %s body: %v", c.Path, err)
	}
}

// Backend is an in-process stand-in for the search service.
type Backend struct {
	server *httptest.Server

	mu         sync.Mutex
	calls      []Call
	search     domain.SearchResponse
	failures   map[string]int
	transcript string
	images     map[string][]byte
	hold       chan struct{}
	arrived    chan struct{}
}

// NewBackend starts a fake backend that is shut down when t ends.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{
		search:   domain.SearchResponse{Results: []domain.SearchResult{}},
		failures: map[string]int{},
		images:   map[string][]byte{},
	}

	r := chi.NewRouter()
	r.Post("/process_query", b.handleSearch)
	r.Post("/upload_face_template", b.handleUpload("image"))
	r.Post("/evaluate_result", b.handleJSON)
	r.Post("/transcribe", b.handleTranscribe)
	r.Get("/images/{name}", b.handleImage)

	b.server = httptest.NewServer(r)
	t.Cleanup(func() {
		b.Release()
		b.server.Close()
	})
	return b
}

// URL returns the backend base URL.
func (b *Backend) URL() string {
	return b.server.URL
}

// SetSearchResponse sets the body returned by /process_query.
func (b *Backend) SetSearchResponse(resp domain.SearchResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.search = resp
}

// SetTranscript sets the text returned by /transcribe.
func (b *Backend) SetTranscript(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transcript = text
}

// AddImage serves data at /images/name and returns its absolute URL.
func (b *Backend) AddImage(name string, data []byte) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.images[name] = data
	return b.server.URL + "/images/" + name
}

// Fail makes every request to path answer with status.
func (b *Backend) Fail(path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[path] = status
}

// Hold blocks /process_query requests until Release is called. The returned
// channel receives once per request that reaches the backend.
func (b *Backend) Hold() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hold = make(chan struct{})
	b.arrived = make(chan struct{}, 16)
	return b.arrived
}

// Release unblocks held requests.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.hold != nil {
		close(b.hold)
		b.hold = nil
	}
}

// Calls returns every request received for path.
func (b *Backend) Calls(path string) []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Call
	for _, c := range b.calls {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (b *Backend) record(r *http.Request, body []byte) (Call, int) {
	c := Call{
		Path:        r.URL.Path,
		ContentType: r.Header.Get("Content-Type"),
		RequestID:   r.Header.Get("X-Request-ID"),
		Body:        body,
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, c)
	return c, b.failures[r.URL.Path]
}

func (b *Backend) handleSearch(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	_, status := b.record(r, body)

	b.mu.Lock()
	hold, arrived := b.hold, b.arrived
	resp := b.search
	b.mu.Unlock()

	if hold != nil {
		arrived <- struct{}{}
		<-hold
	}
	if status != 0 {
		http.Error(w, `{"error":"backend failure"}`, status)
		return
	}
	writeJSON(w, resp)
}

func (b *Backend) handleJSON(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	if _, status := b.record(r, body); status != 0 {
		http.Error(w, `{"error":"backend failure"}`, status)
		return
	}
	writeJSON(w, map[string]any{})
}

func (b *Backend) handleUpload(field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := Call{
			Path:        r.URL.Path,
			ContentType: r.Header.Get("Content-Type"),
			RequestID:   r.Header.Get("X-Request-ID"),
		}
		if strings.HasPrefix(c.ContentType, "multipart/form-data") {
			if file, header, err := r.FormFile(field); err == nil {
				c.FileField = field
				c.FileName = header.Filename
				c.FileData, _ = io.ReadAll(file)
				_ = file.Close()
			}
		}

		b.mu.Lock()
		b.calls = append(b.calls, c)
		status := b.failures[r.URL.Path]
		b.mu.Unlock()

		if status != 0 {
			http.Error(w, `{"error":"backend failure"}`, status)
			return
		}
		if c.FileData == nil {
			http.Error(w, `{"error":"missing `+field+`"}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{})
	}
}

func (b *Backend) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	b.handleUpload("audio")(&discardWriter{header: http.Header{}}, r)

	b.mu.Lock()
	status := b.failures[r.URL.Path]
	text := b.transcript
	b.mu.Unlock()

	if status != 0 {
		http.Error(w, `{"error":"backend failure"}`, status)
		return
	}
	writeJSON(w, map[string]string{"text": text})
}

func (b *Backend) handleImage(w http.ResponseWriter, r *http.Request) {
	b.record(r, nil)

	b.mu.Lock()
	data, ok := b.images[chi.URLParam(r, "name")]
	b.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type discardWriter struct {
	header http.Header
}

func (d *discardWriter) Header() http.Header         { return d.header }
func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }
func (d *discardWriter) WriteHeader(int)             {}
