package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/cloo-solutions/sentisearch/internal/config"
)

const (
	envAPIURL  = "SENTISEARCH_API_URL"
	envDataDir = "SENTISEARCH_DATA_DIR"
	envUseAI   = "SENTISEARCH_USE_AI"
)

// GlobalConfig represents the per-user settings stored in config.json
type GlobalConfig struct {
	APIURL  string `json:"api_url,omitempty"`
	DataDir string `json:"data_dir,omitempty"`
	UseAI   *bool  `json:"use_ai,omitempty"`
}

var (
	getConfigDirFunc  = defaultGetConfigDir
	getConfigPathFunc = defaultGetConfigPath
)

func defaultGetConfigDir() (string, error) {
	return config.DefaultDataDir()
}

func defaultGetConfigPath() (string, error) {
	configDir, err := getConfigDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetConfigDir returns the platform-specific configuration directory
func GetConfigDir() (string, error) {
	return getConfigDirFunc()
}

// GetConfigPath returns the full path to the config.json file
func GetConfigPath() (string, error) {
	return getConfigPathFunc()
}

// LoadGlobalConfig reads and parses the global config.json file
// Returns nil config (not error) if file doesn't exist
func LoadGlobalConfig() (*GlobalConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg GlobalConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// SaveGlobalConfig writes the config to config.json with 0600 permissions
func SaveGlobalConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DeleteGlobalConfig removes the config.json file
func DeleteGlobalConfig() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.Remove(configPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete config file: %w", err)
	}

	return nil
}

// Set assigns one key of the global config from its string form.
func (g *GlobalConfig) Set(key, value string) error {
	switch strings.ReplaceAll(key, "-", "_") {
	case "api_url":
		if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			return fmt.Errorf("api_url must start with http:// or https://")
		}
		g.APIURL = strings.TrimRight(value, "/")
	case "data_dir":
		abs, err := filepath.Abs(value)
		if err != nil {
			return fmt.Errorf("failed to resolve data_dir: %w", err)
		}
		g.DataDir = abs
	case "use_ai":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("use_ai must be true or false")
		}
		g.UseAI = &b
	default:
		return fmt.Errorf("unknown config key %q (want api_url, data_dir or use_ai)", key)
	}
	return nil
}

// ConfigSource represents where a setting came from
type ConfigSource string

const (
	SourceFlag         ConfigSource = "flag"
	SourceEnv          ConfigSource = "env"
	SourceGlobalConfig ConfigSource = "global_config"
	SourceDefault      ConfigSource = "default"
)

// Setting is a resolved value and the layer that supplied it.
type Setting struct {
	Value  string       `json:"value"`
	Source ConfigSource `json:"source"`
}

// resolve walks the cascade flag -> env -> global config -> default.
func resolve(flagValue, envName, globalValue, defaultValue string) Setting {
	if flagValue != "" {
		return Setting{Value: flagValue, Source: SourceFlag}
	}
	if v := os.Getenv(envName); v != "" {
		return Setting{Value: v, Source: SourceEnv}
	}
	if globalValue != "" {
		return Setting{Value: globalValue, Source: SourceGlobalConfig}
	}
	return Setting{Value: defaultValue, Source: SourceDefault}
}

// ResolvedSettings are the cascaded values of the settings config.json can
// hold.
type ResolvedSettings struct {
	APIURL  Setting `json:"api_url"`
	DataDir Setting `json:"data_dir"`
	UseAI   Setting `json:"use_ai"`
}

// ResolveSettings applies the cascade to the cascaded keys. base carries the
// env-or-default values from config.Load.
func ResolveSettings(cmd *cobra.Command, base *config.Config) (ResolvedSettings, error) {
	global, err := LoadGlobalConfig()
	if err != nil {
		return ResolvedSettings{}, err
	}
	if global == nil {
		global = &GlobalConfig{}
	}

	var flagURL, flagDir string
	if cmd != nil {
		flagURL, _ = cmd.Flags().GetString("api-url")
		flagDir, _ = cmd.Flags().GetString("data-dir")
	}

	globalUseAI := ""
	if global.UseAI != nil {
		globalUseAI = strconv.FormatBool(*global.UseAI)
	}

	return ResolvedSettings{
		APIURL:  resolve(flagURL, envAPIURL, global.APIURL, base.APIURL),
		DataDir: resolve(flagDir, envDataDir, global.DataDir, base.DataDir),
		UseAI:   resolve("", envUseAI, globalUseAI, strconv.FormatBool(base.UseAI)),
	}, nil
}

// LoadConfig builds the runtime config: envconfig for every field, then the
// cascade for the keys config.json and the global flags can override.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	settings, err := ResolveSettings(cmd, cfg)
	if err != nil {
		return nil, err
	}

	cfg.APIURL = strings.TrimRight(settings.APIURL.Value, "/")
	cfg.DataDir = settings.DataDir.Value
	cfg.UseAI, _ = strconv.ParseBool(settings.UseAI.Value)
	return cfg, nil
}
