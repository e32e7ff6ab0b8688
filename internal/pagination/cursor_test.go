package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	name string
	at   time.Time
}

func entries(n int) []entry {
	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	out := make([]entry, n)
	for i := range out {
		out[i] = entry{name: string(rune('a' + i)), at: base.Add(time.Duration(i) * time.Minute)}
	}
	return out
}

func entryTime(e entry) time.Time { return e.at }

func TestCursorRoundTrip(t *testing.T) {
	ts := time.Date(2026, 2, 1, 8, 0, 0, 123, time.UTC)
	c, err := DecodeCursor(EncodeCursor(7, ts))
	require.NoError(t, err)
	assert.Equal(t, 7, c.Offset)
	assert.True(t, c.Timestamp.Equal(ts))

	assert.Empty(t, EncodeCursor(0, ts))
	c, err = DecodeCursor("")
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	for _, in := range []string{"!!!", "bm9waXBl", "YWJjfDIwMjY=", "MHwyMDI2LTAyLTAxVDA4OjAwOjAwWg=="} {
		_, err := DecodeCursor(in)
		assert.ErrorIs(t, err, ErrInvalidCursor, in)
	}
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-3))
	assert.Equal(t, 5, NormalizeLimit(5))
	assert.Equal(t, MaxLimit, NormalizeLimit(1000))
}

func TestPage_WalksAllItems(t *testing.T) {
	items := entries(5)

	first, err := Page(items, "", 2, entryTime)
	require.NoError(t, err)
	assert.Equal(t, items[:2], first.Items)
	assert.True(t, first.HasMore)

	second, err := Page(items, first.Cursor, 2, entryTime)
	require.NoError(t, err)
	assert.Equal(t, items[2:4], second.Items)

	third, err := Page(items, second.Cursor, 2, entryTime)
	require.NoError(t, err)
	assert.Equal(t, items[4:], third.Items)
	assert.False(t, third.HasMore)
	assert.Empty(t, third.Cursor)
}

func TestPage_Empty(t *testing.T) {
	page, err := Page([]entry{}, "", 10, entryTime)
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
}

func TestPage_StaleCursor(t *testing.T) {
	items := entries(4)
	page, err := Page(items, "", 2, entryTime)
	require.NoError(t, err)

	_, err = Page(items[:1], page.Cursor, 2, entryTime)
	assert.ErrorIs(t, err, ErrStaleCursor)

	changed := entries(4)
	changed[1].at = changed[1].at.Add(time.Hour)
	_, err = Page(changed, page.Cursor, 2, entryTime)
	assert.ErrorIs(t, err, ErrStaleCursor)
}
