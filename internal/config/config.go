package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/toycar/internal/model"
)

// LevelPlaceholder is replaced by the level number in LevelAPIURL.
const LevelPlaceholder = "{level}"

// On-error policies of the headless modal.
const (
	OnErrorWait   = "wait"
	OnErrorRetry  = "retry"
	OnErrorCancel = "cancel"
)

// Client holds all configuration for the level runner.
type Client struct {
	// Content
	BaseURL     string        `yaml:"base_url"`
	LevelAPIURL string        `yaml:"level_api_url"` // e.g. http://host/api/levels/{level}
	Timeout     time.Duration `yaml:"timeout"`
	MaxBodySize int64         `yaml:"max_body_bytes"`

	// Progression
	TotalLevels  int           `yaml:"total_levels"`
	TargetPoints map[int]int   `yaml:"target_points"`
	RespawnPoint model.Vec3    `yaml:"respawn_point"`
	RespawnDelay time.Duration `yaml:"respawn_delay"`
	RobotStart   model.Vec3    `yaml:"robot_start"`

	// Resources
	ResourceManifest string `yaml:"resource_manifest"`
	BaseModelKey     string `yaml:"base_model_key"` // empty disables the base-model fallback

	// UI
	UIListenAddr string `yaml:"ui_listen_addr"` // empty disables the websocket modal
	OnError      string `yaml:"on_error"`       // wait | retry | cancel

	// Hot reload
	Watch     bool   `yaml:"watch"`
	WatchPath string `yaml:"watch_path"`

	LogLevel string `yaml:"log_level"`
}

// DefaultClient returns Client config with sensible defaults.
func DefaultClient() Client {
	return Client{
		BaseURL:          "http://127.0.0.1:8080",
		LevelAPIURL:      "http://127.0.0.1:8080/api/levels/" + LevelPlaceholder,
		Timeout:          10 * time.Second,
		MaxBodySize:      8 << 20,
		TotalLevels:      2,
		RespawnPoint:     model.NewVec3(-17, 1.5, -67),
		RespawnDelay:     time.Second,
		RobotStart:       model.NewVec3(0, 1.5, 0),
		ResourceManifest: "config/resources.yaml",
		UIListenAddr:     "127.0.0.1:8090",
		OnError:          OnErrorWait,
		WatchPath:        "data",
		LogLevel:         "info",
	}
}

// LevelURL expands LevelAPIURL for level. Empty template yields "".
func (c Client) LevelURL(level int) string {
	if c.LevelAPIURL == "" {
		return ""
	}
	return strings.ReplaceAll(c.LevelAPIURL, LevelPlaceholder, strconv.Itoa(level))
}

// Validate reports config values the runner cannot work with.
func (c Client) Validate() error {
	switch c.OnError {
	case OnErrorWait, OnErrorRetry, OnErrorCancel:
	default:
		return fmt.Errorf("on_error: unknown policy %q", c.OnError)
	}
	if c.TotalLevels < 1 {
		return fmt.Errorf("total_levels: must be at least 1, got %d", c.TotalLevels)
	}
	return nil
}

// LoadClient loads client config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadClient(path string) (Client, error) {
	cfg := DefaultClient()
	if err := load(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ParseLogLevel maps a config log level to slog; unknown values are Info.
func ParseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func load(path string, cfg any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}
