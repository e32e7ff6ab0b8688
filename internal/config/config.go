package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const appName = "sentisearch"

type Config struct {
	APIURL         string        `envconfig:"API_URL" default:"http://localhost:5000"`
	DataDir        string        `envconfig:"DATA_DIR"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`

	Debug     bool   `envconfig:"DEBUG" default:"false"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	ListenAddr string `envconfig:"LISTEN_ADDR" default:"127.0.0.1:5050"`
	UseAI      bool   `envconfig:"USE_AI" default:"false"`

	CameraDevice       string `envconfig:"CAMERA_DEVICE" default:"/dev/video0"`
	CameraMaxDimension uint   `envconfig:"CAMERA_MAX_DIMENSION" default:"1280"`
	FFmpegPath         string `envconfig:"FFMPEG_PATH" default:"ffmpeg"`

	// Voice input posts recorded audio to the backend's transcription endpoint.
	TranscribeEnabled bool          `envconfig:"TRANSCRIBE_ENABLED" default:"true"`
	MicDevice         string        `envconfig:"MIC_DEVICE" default:"default"`
	MicFormat         string        `envconfig:"MIC_FORMAT" default:"alsa"`
	ListenDuration    time.Duration `envconfig:"LISTEN_DURATION" default:"5s"`

	NotifyTTL time.Duration `envconfig:"NOTIFY_TTL" default:"4s"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("SENTISEARCH", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.DataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return nil, err
		}
		cfg.DataDir = dir
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// DefaultDataDir is the per-user profile directory holding the durable store.
func DefaultDataDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, appName), nil
}

// EnsureDataDir creates the profile directory.
func (c *Config) EnsureDataDir() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory is not set")
	}
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// StorePath is the SQLite file holding the profile's collections.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, appName+".db")
}

// CameraLockPath guards exclusive use of the capture device across processes.
func (c *Config) CameraLockPath() string {
	return filepath.Join(c.DataDir, "camera.lock")
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}

// UseAIFlag returns the useAI request flag, omitted unless enabled.
func (c *Config) UseAIFlag() *bool {
	if !c.UseAI {
		return nil
	}
	v := true
	return &v
}
