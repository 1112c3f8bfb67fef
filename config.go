package composer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// WindowConfig sizes the host window.
type WindowConfig struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width" validate:"gte=64,lte=16384"`
	Height    int    `yaml:"height" validate:"gte=64,lte=16384"`
	Resizable bool   `yaml:"resizable"`
}

// ProjectConfig sizes the document.
type ProjectConfig struct {
	Width  float64 `yaml:"width" validate:"gt=0"`
	Height float64 `yaml:"height" validate:"gt=0"`
}

// AssetConfig controls image loading.
type AssetConfig struct {
	// Root is the directory relative image sources resolve against.
	Root          string `yaml:"root" validate:"required"`
	MaxConcurrent int    `yaml:"max_concurrent" validate:"gte=1,lte=64"`
	// Preload lists sources decoded before the first frame.
	Preload []string `yaml:"preload"`
}

// NudgeConfig controls keyboard nudging.
type NudgeConfig struct {
	Step     float64 `yaml:"step" validate:"gt=0"`
	Duration float64 `yaml:"duration" validate:"gte=0,lte=2"`
}

// Config is the editor configuration file.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Project ProjectConfig `yaml:"project"`
	Assets  AssetConfig   `yaml:"assets"`
	Nudge   NudgeConfig   `yaml:"nudge"`
	// Fonts maps a font family to a TTF/OTF file. Unmapped families use the
	// built-in Go Regular face.
	Fonts map[string]string `yaml:"fonts" validate:"dive,required"`

	Debug      bool   `yaml:"debug"`
	MetricsOut string `yaml:"metrics_out"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Title:     "Composer",
			Width:     1024,
			Height:    768,
			Resizable: true,
		},
		Project: ProjectConfig{
			Width:  defaultProject.Width,
			Height: defaultProject.Height,
		},
		Assets: AssetConfig{
			Root:          ".",
			MaxConcurrent: defaultMaxConcurrentDecodes,
		},
		Nudge: NudgeConfig{
			Step:     1,
			Duration: 0.12,
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig, applies COMPOSER_*
// environment overrides (a .env file in the working directory is loaded
// first if present) and validates the result. An empty path skips the
// file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("composer: load config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("composer: parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("composer: load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("composer: invalid config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("COMPOSER_ASSET_ROOT"); v != "" {
		c.Assets.Root = v
	}
	if v := os.Getenv("COMPOSER_METRICS_OUT"); v != "" {
		c.MetricsOut = v
	}
	if v := os.Getenv("COMPOSER_DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("composer: COMPOSER_DEBUG: %w", err)
		}
		c.Debug = b
	}
	for key, dst := range map[string]*int{
		"COMPOSER_WINDOW_WIDTH":  &c.Window.Width,
		"COMPOSER_WINDOW_HEIGHT": &c.Window.Height,
		"COMPOSER_MAX_DECODES":   &c.Assets.MaxConcurrent,
	} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("composer: %s: %w", key, err)
		}
		*dst = n
	}
	return nil
}

// EditorOptions maps the configuration onto editor options.
func (c Config) EditorOptions(log *zap.Logger, metrics *Metrics) EditorOptions {
	return EditorOptions{
		Project:              Dimension{Width: c.Project.Width, Height: c.Project.Height},
		Viewport:             Dimension{Width: float64(c.Window.Width), Height: float64(c.Window.Height)},
		Loader:               NewFileLoader(c.Assets.Root),
		MaxConcurrentDecodes: c.Assets.MaxConcurrent,
		NudgeDuration:        float32(c.Nudge.Duration),
		Logger:               log,
		Metrics:              metrics,
		Debug:                c.Debug,
	}
}

// NewLogger builds the process logger: development output in debug mode,
// production JSON otherwise.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
