package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	appDirName            = "tcal"
	DefaultConfigFileName = "config.toml"
	DefaultDataFileName   = "tasks.csv"

	defaultEditor = "vim"
	defaultModel  = "gpt-4o-mini"
)

// Config holds the session settings. Every field has a computed default;
// a missing or unreadable config file never fails the process.
type Config struct {
	DataPath  string   `toml:"data_path"`
	WeekStart string   `toml:"week_start"`
	Editor    string   `toml:"editor"`
	Columns   []string `toml:"columns"`

	OpenAIAPIKey string `toml:"openai_api_key"`
	OpenAIModel  string `toml:"openai_model"`
}

// ResolveConfigPath returns the config file location under XDG_CONFIG_HOME,
// falling back to ~/.config.
func ResolveConfigPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultConfigFileName
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appDirName, DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing defaults when the file does
// not exist. A file that fails to parse yields the defaults rather than an
// error; partial files keep defaults for absent fields.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return defaultConfig(), nil
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := defaultConfig()
	if c.DataPath == "" {
		c.DataPath = def.DataPath
	}
	if c.WeekStart == "" {
		c.WeekStart = def.WeekStart
	}
	if c.Editor == "" {
		c.Editor = def.Editor
	}
	if c.OpenAIModel == "" {
		c.OpenAIModel = def.OpenAIModel
	}
}

// WeekStartDay maps the configured week start name to a weekday,
// defaulting to Monday on anything unrecognized.
func (c Config) WeekStartDay() time.Weekday {
	switch strings.ToLower(strings.TrimSpace(c.WeekStart)) {
	case "sunday":
		return time.Sunday
	case "monday":
		return time.Monday
	case "tuesday":
		return time.Tuesday
	case "wednesday":
		return time.Wednesday
	case "thursday":
		return time.Thursday
	case "friday":
		return time.Friday
	case "saturday":
		return time.Saturday
	}
	return time.Monday
}

// EditorCommand resolves the external editor: config value, then $VISUAL,
// then $EDITOR, then vim.
func (c Config) EditorCommand() string {
	if c.Editor != "" {
		return c.Editor
	}
	if v := os.Getenv("VISUAL"); v != "" {
		return v
	}
	if v := os.Getenv("EDITOR"); v != "" {
		return v
	}
	return defaultEditor
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		DataPath:    defaultDataPath(),
		WeekStart:   "monday",
		Editor:      "",
		OpenAIModel: defaultModel,
	}
}

func defaultDataPath() string {
	if base := os.Getenv("XDG_DATA_HOME"); base != "" {
		return filepath.Join(base, appDirName, DefaultDataFileName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDataFileName
	}
	return filepath.Join(home, "."+appDirName, DefaultDataFileName)
}
