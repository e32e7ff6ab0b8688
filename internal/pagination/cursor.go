package pagination

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Cursor represents a decoded pagination cursor
type Cursor struct {
	Offset    int
	Timestamp time.Time
}

// PageResult represents a paginated result set
type PageResult[T any] struct {
	Items   []T    `json:"items"`
	Cursor  string `json:"cursor,omitempty"`
	HasMore bool   `json:"has_more"`
}

var (
	ErrInvalidCursor = errors.New("invalid cursor format")
	ErrStaleCursor   = errors.New("cursor no longer matches the collection")
)

// EncodeCursor creates a base64-encoded cursor from the next offset and the
// timestamp of the last item already returned.
func EncodeCursor(offset int, timestamp time.Time) string {
	if offset <= 0 {
		return ""
	}
	raw := strconv.Itoa(offset) + "|" + timestamp.UTC().Format(time.RFC3339Nano)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor decodes a base64-encoded cursor. An empty cursor decodes to nil.
func DecodeCursor(cursor string) (*Cursor, error) {
	if cursor == "" {
		return nil, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 {
		return nil, ErrInvalidCursor
	}

	offset, err := strconv.Atoi(parts[0])
	if err != nil || offset <= 0 {
		return nil, ErrInvalidCursor
	}

	timestamp, err := time.Parse(time.RFC3339Nano, parts[1])
	if err != nil {
		return nil, ErrInvalidCursor
	}

	return &Cursor{
		Offset:    offset,
		Timestamp: timestamp,
	}, nil
}

// NormalizeLimit clamps limit to (0, MaxLimit], using DefaultLimit for
// non-positive values.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Page slices items after cursor. The cursor is rejected when the item it
// points past no longer carries the timestamp it was issued for.
func Page[T any](items []T, cursor string, limit int, getTimestamp func(T) time.Time) (PageResult[T], error) {
	limit = NormalizeLimit(limit)

	c, err := DecodeCursor(cursor)
	if err != nil {
		return PageResult[T]{}, err
	}

	start := 0
	if c != nil {
		if c.Offset > len(items) || !getTimestamp(items[c.Offset-1]).Equal(c.Timestamp) {
			return PageResult[T]{}, ErrStaleCursor
		}
		start = c.Offset
	}

	end := start + limit
	if end > len(items) {
		end = len(items)
	}

	page := PageResult[T]{Items: append([]T{}, items[start:end]...)}
	if end < len(items) {
		page.HasMore = true
		page.Cursor = EncodeCursor(end, getTimestamp(items[end-1]))
	}
	return page, nil
}
