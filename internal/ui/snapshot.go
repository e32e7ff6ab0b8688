package ui

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cloo-solutions/sentisearch/internal/domain"
)

// State is a point-in-time copy of everything a Snapshot has rendered.
type State struct {
	ActiveTab     domain.Tab             `json:"active_tab"`
	Visible       map[domain.Tab]bool    `json:"visible"`
	Loading       bool                   `json:"loading"`
	Results       ResultsView            `json:"results"`
	Favorites     []domain.FavoriteEntry `json:"favorites"`
	History       []domain.HistoryEntry  `json:"history"`
	Photos        []domain.UploadedPhoto `json:"photos"`
	SearchBusy    bool                   `json:"search_busy"`
	SearchLabel   string                 `json:"search_label"`
	Listening     bool                   `json:"listening"`
	Query         string                 `json:"query"`
	CameraOpen    bool                   `json:"camera_open"`
	IntroVisible  bool                   `json:"intro_visible"`
	Notifications []Notification         `json:"notifications"`

	// Renders counts panel renders, so callers can tell a refresh happened.
	Renders map[domain.Tab]int `json:"renders"`
}

// Snapshot is an in-memory Renderer. It backs the local HTTP surface and
// tests.
type Snapshot struct {
	mu    sync.Mutex
	state State
	ttl   time.Duration
	now   func() time.Time
}

// NewSnapshot creates a Snapshot whose notifications live for ttl.
func NewSnapshot(ttl time.Duration) *Snapshot {
	s := &Snapshot{ttl: ttl, now: time.Now}
	s.state = State{
		ActiveTab:   domain.DefaultTab,
		Visible:     map[domain.Tab]bool{},
		Results:     ResultsView{Cards: []Card{}},
		SearchLabel: SearchLabelIdle,
		Renders:     map[domain.Tab]int{},
	}
	for _, tab := range domain.AllTabs {
		s.state.Visible[tab] = tab == domain.DefaultTab
	}
	return s
}

func (s *Snapshot) ShowPanel(tab domain.Tab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range domain.AllTabs {
		s.state.Visible[t] = t == tab
	}
	s.state.ActiveTab = tab
}

func (s *Snapshot) RenderLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = true
	s.state.Results = ResultsView{Cards: []Card{}}
}

func (s *Snapshot) RenderResults(view ResultsView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	s.state.Results = view
	s.state.Renders[domain.TabResults]++
}

func (s *Snapshot) RenderFavorites(favorites []domain.FavoriteEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Favorites = append([]domain.FavoriteEntry(nil), favorites...)
	s.state.Renders[domain.TabFavorites]++
}

func (s *Snapshot) RenderHistory(history []domain.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.History = append([]domain.HistoryEntry(nil), history...)
	s.state.Renders[domain.TabHistory]++
}

func (s *Snapshot) RenderPhotos(photos []domain.UploadedPhoto) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Photos = append([]domain.UploadedPhoto(nil), photos...)
	s.state.Renders[domain.TabPhotos]++
}

func (s *Snapshot) SetSearchBusy(busy bool, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SearchBusy = busy
	s.state.SearchLabel = label
}

func (s *Snapshot) SetListening(listening bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Listening = listening
}

func (s *Snapshot) SetQuery(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Query = text
}

func (s *Snapshot) SetCameraOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CameraOpen = open
}

func (s *Snapshot) SetIntroVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IntroVisible = visible
}

func (s *Snapshot) Notify(level Level, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.state.Notifications = append(s.state.Notifications, Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	})
}

// Sweep dismisses notifications that have expired and reports how many were
// removed.
func (s *Snapshot) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.state.Notifications[:0]
	removed := 0
	for _, n := range s.state.Notifications {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		} else {
			removed++
		}
	}
	s.state.Notifications = kept
	return removed
}

// State returns a deep copy of the rendered state.
func (s *Snapshot) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.Visible = make(map[domain.Tab]bool, len(s.state.Visible))
	for k, v := range s.state.Visible {
		st.Visible[k] = v
	}
	st.Renders = make(map[domain.Tab]int, len(s.state.Renders))
	for k, v := range s.state.Renders {
		st.Renders[k] = v
	}
	st.Results.Cards = append([]Card(nil), s.state.Results.Cards...)
	st.Favorites = append([]domain.FavoriteEntry(nil), s.state.Favorites...)
	st.History = append([]domain.HistoryEntry(nil), s.state.History...)
	st.Photos = append([]domain.UploadedPhoto(nil), s.state.Photos...)
	st.Notifications = append([]Notification(nil), s.state.Notifications...)
	return st
}

// VisibleCount returns how many panels are visible.
func (st State) VisibleCount() int {
	n := 0
	for _, v := range st.Visible {
		if v {
			n++
		}
	}
	return n
}

// LastNotification returns the most recent notification, if any.
func (st State) LastNotification() (Notification, bool) {
	if len(st.Notifications) == 0 {
		return Notification{}, false
	}
	return st.Notifications[len(st.Notifications)-1], true
}
