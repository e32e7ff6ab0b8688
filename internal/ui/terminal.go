package ui

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/cloo-solutions/sentisearch/internal/domain"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiBlue   = "\x1b[34m"
	ansiYellow = "\x1b[33m"
)

const photoPreviewWidth = 32

var panelTitles = map[domain.Tab]string{
	domain.TabResults:   "Results",
	domain.TabFavorites: "Favorites",
	domain.TabHistory:   "History",
	domain.TabPhotos:    "Photos",
}

// Terminal renders panels as tables on a line-oriented writer.
type Terminal struct {
	mu       sync.Mutex
	out      io.Writer
	colorize bool
	active   domain.Tab
	busy     bool
	now      func() time.Time
}

// NewTerminal creates a Terminal writing to out. Color is enabled only when
// out is a terminal.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out, colorize: shouldColorize(out), active: domain.DefaultTab, now: time.Now}
}

func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (t *Terminal) ShowPanel(tab domain.Tab) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = tab
	t.header(panelTitles[tab])
}

func (t *Terminal) RenderLoading() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.line(ansiYellow, "Loading...")
}

func (t *Terminal) RenderResults(view ResultsView) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(view.Cards) == 0 {
		if view.EmptyMessage != "" {
			t.line("", view.EmptyMessage)
		}
		return
	}
	if view.Emotion != nil || view.TimeElapsed != nil {
		var parts []string
		if view.Emotion != nil {
			parts = append(parts, "emotion: "+*view.Emotion)
		}
		if view.TimeElapsed != nil {
			parts = append(parts, fmt.Sprintf("took %.2fs", *view.TimeElapsed))
		}
		t.line(ansiBlue, strings.Join(parts, ", "))
	}

	rows := make([][]string, 0, len(view.Cards))
	for _, c := range view.Cards {
		rows = append(rows, []string{
			strconv.Itoa(c.Index),
			c.Result.ImageURL,
			optString(c.Result.Dominant),
			optScore(c.Result.Score),
			strings.Join(c.Actions, " "),
		})
	}
	t.table([]string{"#", "IMAGE", "DOMINANT", "SCORE", "ACTIONS"}, rows, 0, 3)
}

func (t *Terminal) RenderFavorites(favorites []domain.FavoriteEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(favorites) == 0 {
		t.line("", MsgNoFavorites)
		return
	}
	rows := make([][]string, 0, len(favorites))
	for i, f := range favorites {
		rows = append(rows, []string{strconv.Itoa(i), f.ImageURL, optString(f.DominantEmotion), optScore(f.Score)})
	}
	t.table([]string{"#", "IMAGE", "EMOTION", "SCORE"}, rows, 0, 3)
}

func (t *Terminal) RenderHistory(history []domain.HistoryEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(history) == 0 {
		t.line("", MsgNoHistory)
		return
	}
	now := t.now()
	rows := make([][]string, 0, len(history))
	for i, h := range history {
		rows = append(rows, []string{strconv.Itoa(i), h.Query, relativeTime(now, h.RecordedAt)})
	}
	t.table([]string{"#", "QUERY", "WHEN"}, rows, 0)
}

func (t *Terminal) RenderPhotos(photos []domain.UploadedPhoto) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(photos) == 0 {
		t.line("", MsgNoPhotos)
		return
	}
	rows := make([][]string, 0, len(photos))
	for i, p := range photos {
		rows = append(rows, []string{strconv.Itoa(i), preview(p.ImageData), strconv.Itoa(len(p.ImageData))})
	}
	t.table([]string{"#", "DATA", "BYTES"}, rows, 0, 2)
}

func (t *Terminal) SetSearchBusy(busy bool, label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if busy && !t.busy {
		t.line(ansiYellow, label)
	}
	t.busy = busy
}

func (t *Terminal) SetListening(listening bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if listening {
		t.line(ansiYellow, "Listening...")
	}
}

func (t *Terminal) SetQuery(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.line("", "> "+text)
}

func (t *Terminal) SetCameraOpen(open bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if open {
		t.line(ansiBlue, "Camera open")
	} else {
		t.line(ansiBlue, "Camera closed")
	}
}

func (t *Terminal) SetIntroVisible(visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !visible {
		return
	}
	t.header("Welcome")
	t.line("", "Describe a feeling in words or by voice and find images that match it.")
	t.line("", "Add photos of yourself to personalise results. Type 'help' for commands.")
}

func (t *Terminal) Notify(level Level, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	color := ansiBlue
	switch level {
	case LevelSuccess:
		color = ansiGreen
	case LevelError:
		color = ansiRed
	}
	t.line(color, fmt.Sprintf("[%s] %s", strings.ToUpper(string(level)), message))
}

func (t *Terminal) header(title string) {
	line := fmt.Sprintf("== %s ==", title)
	t.line(ansiBlue, line)
}

func (t *Terminal) line(color, s string) {
	if t.colorize && color != "" {
		s = color + s + ansiReset
	}
	_, _ = fmt.Fprintln(t.out, s)
}

func (t *Terminal) table(headers []string, rows [][]string, rightAligned ...int) {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(headers))
	for i := range headers {
		align := text.AlignLeft
		for _, col := range rightAligned {
			if col == i {
				align = text.AlignRight
			}
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	_, _ = fmt.Fprintln(t.out, tw.Render())
}

func optString(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func optScore(f *float64) string {
	if f == nil {
		return "-"
	}
	return strconv.FormatFloat(*f, 'f', 2, 64)
}

func preview(data string) string {
	if len(data) <= photoPreviewWidth {
		return data
	}
	return data[:photoPreviewWidth] + "..."
}

// relativeTime renders recent timestamps the way people talk about them and
// falls back to a date after a week.
func relativeTime(now, at time.Time) string {
	d := now.Sub(at)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	case d < 7*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	default:
		return at.Local().Format(time.DateOnly)
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}
