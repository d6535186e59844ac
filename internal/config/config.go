package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"github.com/spf13/viper"
)

// Config holds the resolved application configuration.
type Config struct {
	// Theme name: "dark" (default) or "light".
	Theme string `mapstructure:"theme" yaml:"theme"`
	// Axis is the paging direction: "horizontal" or "vertical".
	Axis string `mapstructure:"axis" yaml:"axis"`
	// PrefetchPages is how many pages beyond the visible ones are prepared.
	PrefetchPages int `mapstructure:"prefetch_pages" yaml:"prefetch_pages"`
	// Animate makes keyboard paging animated.
	Animate        bool `mapstructure:"animate" yaml:"animate"`
	AnimationMS    int  `mapstructure:"animation_ms" yaml:"animation_ms"`
	DecelerationMS int  `mapstructure:"deceleration_ms" yaml:"deceleration_ms"`
	Bounces        bool `mapstructure:"bounces" yaml:"bounces"`
	// Extensions are the file extensions shown as pages.
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`
	WordWrap   bool     `mapstructure:"word_wrap" yaml:"word_wrap"`
	// Watch rescans the directory when its files change.
	Watch           bool `mapstructure:"watch" yaml:"watch"`
	WatchDebounceMS int  `mapstructure:"watch_debounce_ms" yaml:"watch_debounce_ms"`
	// MemoryThreshold is the system memory use, in percent, that triggers
	// a memory warning. Zero disables it.
	MemoryThreshold   float64 `mapstructure:"memory_threshold" yaml:"memory_threshold"`
	MemoryPollSeconds int     `mapstructure:"memory_poll_seconds" yaml:"memory_poll_seconds"`

	LogFile   string `mapstructure:"log_file" yaml:"log_file"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	Keys KeyBindings `mapstructure:"keys" yaml:"keys"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-" yaml:"-"`
}

// Load reads configuration from file, or when file is empty from
// ~/.config/zpv/config.yaml (or TOML/JSON) or ./config.yaml.
func Load(file string) (*Config, error) {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(Directory())
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.SetEnvPrefix("ZPV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is fine; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration with every setting at its default.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		panic(fmt.Sprintf("config: defaults do not decode: %v", err))
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("theme", "dark")
	v.SetDefault("axis", "horizontal")
	v.SetDefault("prefetch_pages", 1)
	v.SetDefault("animate", true)
	v.SetDefault("animation_ms", 250)
	v.SetDefault("deceleration_ms", 180)
	v.SetDefault("bounces", true)
	v.SetDefault("extensions", []string{".md", ".markdown", ".txt"})
	v.SetDefault("word_wrap", true)
	v.SetDefault("watch", true)
	v.SetDefault("watch_debounce_ms", 300)
	v.SetDefault("memory_threshold", 90.0)
	v.SetDefault("memory_poll_seconds", 10)
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	keys := DefaultKeyBindings()
	v.SetDefault("keys.quit", keys.Quit)
	v.SetDefault("keys.help", keys.Help)
	v.SetDefault("keys.next", keys.Next)
	v.SetDefault("keys.prev", keys.Prev)
	v.SetDefault("keys.first", keys.First)
	v.SetDefault("keys.last", keys.Last)
	v.SetDefault("keys.goto", keys.Goto)
	v.SetDefault("keys.up", keys.Up)
	v.SetDefault("keys.down", keys.Down)
	v.SetDefault("keys.half_up", keys.HalfUp)
	v.SetDefault("keys.half_down", keys.HalfDown)
	v.SetDefault("keys.rescan", keys.Rescan)
	v.SetDefault("keys.reload", keys.Reload)
	v.SetDefault("keys.toggle_animation", keys.ToggleAnim)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Theme {
	case "dark", "light":
	default:
		errs = append(errs, fmt.Errorf("theme %q: want dark or light", c.Theme))
	}
	switch c.Axis {
	case "horizontal", "h", "vertical", "v":
	default:
		errs = append(errs, fmt.Errorf("axis %q: want horizontal or vertical", c.Axis))
	}
	if c.PrefetchPages < 0 {
		errs = append(errs, fmt.Errorf("prefetch_pages %d: must not be negative", c.PrefetchPages))
	}
	if c.AnimationMS < 0 || c.DecelerationMS < 0 || c.WatchDebounceMS < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}
	if len(c.Extensions) == 0 {
		errs = append(errs, errors.New("extensions: at least one is required"))
	}
	for _, e := range c.Extensions {
		if !strings.HasPrefix(e, ".") {
			errs = append(errs, fmt.Errorf("extension %q: must start with a dot", e))
		}
	}
	if c.MemoryThreshold < 0 || c.MemoryThreshold > 100 {
		errs = append(errs, fmt.Errorf("memory_threshold %g: want 0-100", c.MemoryThreshold))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Animation returns the configured animation duration.
func (c *Config) Animation() time.Duration { return time.Duration(c.AnimationMS) * time.Millisecond }

// Deceleration returns the configured deceleration duration.
func (c *Config) Deceleration() time.Duration {
	return time.Duration(c.DecelerationMS) * time.Millisecond
}

// WatchDebounce returns the configured debounce window.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMS) * time.Millisecond
}

// MemoryPoll returns the memory sampling interval.
func (c *Config) MemoryPoll() time.Duration {
	return time.Duration(c.MemoryPollSeconds) * time.Second
}

// Directory returns the per-user config directory.
func Directory() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "zpv")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "zpv")
}

// DefaultPath is where "config init" writes.
func DefaultPath() string { return filepath.Join(Directory(), "config.yaml") }

// ErrExists is returned by WriteDefault when the file exists and force is
// not set.
var ErrExists = errors.New("config: file already exists")

// WriteDefault writes the commented default config to path, replacing it
// atomically so a half-written file is never left behind.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := atomic.WriteFile(path, strings.NewReader(defaultFile)); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
