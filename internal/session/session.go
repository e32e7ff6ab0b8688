// Package session hosts one interactive client: it owns the query field and
// wires the store, tabs, search, voice, camera, feedback and onboarding
// components to a single renderer.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cloo-solutions/sentisearch/internal/backend"
	"github.com/cloo-solutions/sentisearch/internal/camera"
	"github.com/cloo-solutions/sentisearch/internal/config"
	"github.com/cloo-solutions/sentisearch/internal/feedback"
	"github.com/cloo-solutions/sentisearch/internal/onboarding"
	"github.com/cloo-solutions/sentisearch/internal/search"
	"github.com/cloo-solutions/sentisearch/internal/store"
	"github.com/cloo-solutions/sentisearch/internal/tabs"
	"github.com/cloo-solutions/sentisearch/internal/ui"
	"github.com/cloo-solutions/sentisearch/internal/voice"
)

// Deps are the collaborators of a Session.
type Deps struct {
	Store    *store.Store
	Client   *backend.Client
	Renderer ui.Renderer
	Logger   zerolog.Logger

	// Recognizer and Camera may be nil when the host has no such device.
	Recognizer    voice.Recognizer
	Camera        camera.Device
	CameraOptions camera.Options

	// UseAI is the default useAI request flag.
	UseAI *bool
}

// Session is safe for use from multiple goroutines.
type Session struct {
	store    *store.Store
	profile  *store.Profile
	client   *backend.Client
	renderer ui.Renderer
	logger   zerolog.Logger
	useAI    *bool

	tabs     *tabs.Controller
	search   *search.Pipeline
	voice    *voice.Adapter
	camera   *camera.Pipeline
	feedback *feedback.Submitter
	intro    *onboarding.Gate

	mu    sync.RWMutex
	query string

	closeOnce sync.Once
	closeErr  error
}

// New wires a Session from deps. The session owns deps.Store and closes it.
func New(deps Deps) *Session {
	s := &Session{
		store:    deps.Store,
		profile:  deps.Store.Profile(),
		client:   deps.Client,
		renderer: deps.Renderer,
		logger:   deps.Logger.With().Str("component", "session").Logger(),
		useAI:    deps.UseAI,
	}
	s.tabs = tabs.NewController(s.profile, deps.Renderer, deps.Logger)
	s.search = search.NewPipeline(deps.Client, s.profile, s.tabs, deps.Renderer, deps.Logger)
	s.voice = voice.NewAdapter(deps.Recognizer, s.search, s, deps.Renderer, deps.UseAI, deps.Logger)
	s.camera = camera.NewPipeline(deps.Camera, deps.Client, deps.Renderer, deps.CameraOptions, deps.Logger)
	s.feedback = feedback.NewSubmitter(deps.Client, deps.Renderer, deps.Logger)
	s.intro = onboarding.NewGate(deps.Store, deps.Renderer)
	return s
}

// Option adjusts the collaborators Open builds from configuration.
type Option func(*Deps)

// WithRecognizer replaces the configured speech recognizer.
func WithRecognizer(r voice.Recognizer) Option {
	return func(d *Deps) { d.Recognizer = r }
}

// WithRecording transcribes an existing audio file through the backend
// instead of recording from the microphone.
func WithRecording(path string) Option {
	return func(d *Deps) {
		d.Recognizer = &voice.TranscribeRecognizer{
			Source:      voice.FileSource{Path: path},
			Transcriber: d.Client,
		}
	}
}

// WithCamera replaces the configured camera device.
func WithCamera(dev camera.Device) Option {
	return func(d *Deps) { d.Camera = dev }
}

// WithUseAI overrides the configured useAI flag.
func WithUseAI(useAI *bool) Option {
	return func(d *Deps) { d.UseAI = useAI }
}

// Open builds a Session for the profile in cfg.DataDir.
func Open(ctx context.Context, cfg *config.Config, renderer ui.Renderer, logger zerolog.Logger, opts ...Option) (*Session, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.StorePath(), logger)
	if err != nil {
		return nil, err
	}

	client := backend.NewClient(cfg.APIURL, cfg.RequestTimeout, logger)
	deps := Deps{
		Store:    st,
		Client:   client,
		Renderer: renderer,
		Logger:   logger,
		Camera: camera.FFmpegDevice{
			FFmpegPath: cfg.FFmpegPath,
			Device:     cfg.CameraDevice,
		},
		CameraOptions: camera.Options{
			MaxDimension: cfg.CameraMaxDimension,
			LockPath:     cfg.CameraLockPath(),
		},
		UseAI: cfg.UseAIFlag(),
	}
	if cfg.TranscribeEnabled {
		deps.Recognizer = &voice.TranscribeRecognizer{
			Source: voice.FFmpegSource{
				FFmpegPath: cfg.FFmpegPath,
				Format:     cfg.MicFormat,
				Device:     cfg.MicDevice,
				Duration:   cfg.ListenDuration,
			},
			Transcriber: client,
		}
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return New(deps), nil
}

// Start shows the intro on a profile's first run.
func (s *Session) Start(ctx context.Context) {
	s.intro.ShowIfFirstRun(ctx)
	s.renderer.SetQuery(s.Query())
}

// Store returns the profile store.
func (s *Session) Store() *store.Store {
	return s.store
}

// Client returns the backend client.
func (s *Session) Client() *backend.Client {
	return s.client
}

// Query returns the text in the query field.
func (s *Session) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// SetQuery writes text into the query field.
func (s *Session) SetQuery(text string) {
	s.mu.Lock()
	s.query = text
	s.mu.Unlock()
	s.renderer.SetQuery(text)
}

func (s *Session) resolveUseAI(useAI *bool) *bool {
	if useAI != nil {
		return useAI
	}
	return s.useAI
}

// Close invalidates any outstanding search, releases the camera and closes
// the store. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.search.Invalidate()
		s.camera.Close()
		s.tabs.Close()
		if err := s.store.Close(); err != nil {
			s.closeErr = fmt.Errorf("failed to close store: %w", err)
		}
	})
	return s.closeErr
}
