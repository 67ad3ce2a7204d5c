package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	envPrefix      = "SORTREE"
)

// Config is the layered configuration: defaults, then config.yaml (user dir, then
// workspace dir), then SORTREE_* environment variables.
type Config struct {
	Document         string        `mapstructure:"document"`
	ClipboardBackend string        `mapstructure:"clipboard_backend"`
	EventsBackend    string        `mapstructure:"events_backend"`
	IndentPerLevel   int           `mapstructure:"indent_per_level"`
	ExpandDelay      time.Duration `mapstructure:"expand_delay"`
	WebAddr          string        `mapstructure:"web_addr"`
	LogLevel         string        `mapstructure:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		Document:         documentFileName,
		ClipboardBackend: ClipboardBackendSQLite,
		EventsBackend:    EventLogBackendJSONL,
		IndentPerLevel:   10,
		ExpandDelay:      500 * time.Millisecond,
		WebAddr:          "127.0.0.1:3334",
		LogLevel:         "warn",
	}
}

// UserConfigDir is ~/.config/sortree.
func UserConfigDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "sortree"), nil
}

// ExpandPath resolves a leading ~ in user-supplied paths.
func ExpandPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", nil
	}
	return homedir.Expand(p)
}

// configFiles lists the config.yaml candidates, lowest precedence first.
func (s Store) configFiles() []string {
	var out []string
	if dir, err := UserConfigDir(); err == nil {
		out = append(out, filepath.Join(dir, configFileName+".yaml"))
	}
	if strings.TrimSpace(s.Dir) != "" {
		out = append(out, filepath.Join(s.Dir, configFileName+".yaml"))
	}
	return out
}

// LoadConfig reads configuration into v. cfgFile, when set, replaces the search path.
func (s Store) LoadConfig(v *viper.Viper, cfgFile string) (Config, error) {
	def := DefaultConfig()
	v.SetDefault("document", def.Document)
	v.SetDefault("clipboard_backend", def.ClipboardBackend)
	v.SetDefault("events_backend", def.EventsBackend)
	v.SetDefault("indent_per_level", def.IndentPerLevel)
	v.SetDefault("expand_delay", def.ExpandDelay)
	v.SetDefault("web_addr", def.WebAddr)
	v.SetDefault("log_level", def.LogLevel)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		path, err := ExpandPath(cfgFile)
		if err != nil {
			return Config{}, err
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		// Later files override earlier ones key by key.
		v.SetConfigType("yaml")
		for _, path := range s.configFiles() {
			if _, err := os.Stat(path); err != nil {
				continue
			}
			v.SetConfigFile(path)
			if err := v.MergeInConfig(); err != nil {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.IndentPerLevel <= 0 {
		cfg.IndentPerLevel = def.IndentPerLevel
	}
	if cfg.ExpandDelay <= 0 {
		cfg.ExpandDelay = def.ExpandDelay
	}
	return cfg, nil
}
