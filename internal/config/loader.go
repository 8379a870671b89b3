package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPath names the variable that points at a config file
const EnvPath = "IPLAN_CONFIG"

// Path returns the config file location: $IPLAN_CONFIG, then
// $XDG_CONFIG_HOME/iplan/config.yaml, then ~/.config/iplan/config.yaml.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "iplan", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".iplan", "config.yaml")
	}
	return filepath.Join(home, ".config", "iplan", "config.yaml")
}

// Load reads path over the defaults. An empty path means Path(). A missing
// file is not an error. Any key can also be set from the environment as
// IPLAN_<KEY>, with dots replaced by underscores (IPLAN_TIMER_TICK_INTERVAL).
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("IPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// setDefaults registers every key so environment overrides apply even
// when the file leaves a key out.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("db_path", cfg.DBPath)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("theme", cfg.Theme)
	v.SetDefault("timer.tick_interval", cfg.Timer.TickInterval)
	v.SetDefault("tasks.suspend_grace", cfg.Tasks.SuspendGrace)
	v.SetDefault("report.days", cfg.Report.Days)
}

// fileConfig is Config as written to disk, with durations in their
// human form ("100ms") instead of nanoseconds.
type fileConfig struct {
	DataDir  string `yaml:"data_dir"`
	DBPath   string `yaml:"db_path,omitempty"`
	LogLevel string `yaml:"log_level"`
	Theme    string `yaml:"theme"`
	Timer    struct {
		TickInterval string `yaml:"tick_interval"`
	} `yaml:"timer"`
	Tasks struct {
		SuspendGrace string `yaml:"suspend_grace"`
	} `yaml:"tasks"`
	Report ReportConfig `yaml:"report"`
}

// Encode writes c as YAML in the same form Save uses
func (c *Config) Encode(w io.Writer) error {
	fc := fileConfig{
		DataDir:  c.DataDir,
		DBPath:   c.DBPath,
		LogLevel: c.LogLevel,
		Theme:    c.Theme,
		Report:   c.Report,
	}
	fc.Timer.TickInterval = c.Timer.TickInterval.String()
	fc.Tasks.SuspendGrace = c.Tasks.SuspendGrace.String()

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&fc); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

// Save writes c to path, creating the directory if needed
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	buf.WriteString("# iplan configuration\n")
	if err := c.Encode(&buf); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// WriteDefault writes the default configuration to path. An existing file
// is left alone unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	return DefaultConfig().Save(path)
}
