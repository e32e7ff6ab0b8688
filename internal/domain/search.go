package domain

import "strings"

// SearchRequest is the body of POST /process_query.
type SearchRequest struct {
	Query    string          `json:"query"`
	Uploaded []UploadedPhoto `json:"uploaded"`
	UseAI    *bool           `json:"useAI,omitempty"`
}

// NewSearchRequest builds a request from raw query text. The query is trimmed
// and must not be empty.
func NewSearchRequest(query string, uploaded []UploadedPhoto, useAI *bool) (*SearchRequest, error) {
	q, err := NormalizeQuery(query)
	if err != nil {
		return nil, err
	}
	if uploaded == nil {
		uploaded = []UploadedPhoto{}
	}
	return &SearchRequest{Query: q, Uploaded: uploaded, UseAI: useAI}, nil
}

// NormalizeQuery trims the query and rejects blank input.
func NormalizeQuery(query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", ErrEmptyQuery
	}
	return q, nil
}

// SearchResult is one ranked image. It only lives as long as the rendered
// result set.
type SearchResult struct {
	ImageURL string   `json:"image_url"`
	Dominant *string  `json:"dominant,omitempty"`
	Score    *float64 `json:"score,omitempty"`
}

// SearchResponse is the body returned by POST /process_query.
type SearchResponse struct {
	Results     []SearchResult `json:"results"`
	Emotion     *string        `json:"emotion,omitempty"`
	TimeElapsed *float64       `json:"time_elapsed,omitempty"`
}

// ExpectedEmotionFor returns the emotion a feedback judgment on result r is
// measured against: the query's inferred emotion, else the result's own label.
func (r *SearchResponse) ExpectedEmotionFor(res SearchResult) string {
	if r != nil && r.Emotion != nil && *r.Emotion != "" {
		return *r.Emotion
	}
	if res.Dominant != nil {
		return *res.Dominant
	}
	return ""
}
