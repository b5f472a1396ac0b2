package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	logcfg "github.com/ncobase/feedsync/logging/logger/config"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. FEEDSYNC_DATA_DRIVER.
const EnvPrefix = "FEEDSYNC"

var (
	config *Config
	path   string
	mu     sync.Mutex
	v      *viper.Viper
)

// Config represents the configuration implementation.
type Config struct {
	AppName  string
	RunMode  string
	Logger   *logcfg.Config
	Data     *Data
	Auth     *Auth
	Feed     *Feed
	Breaker  *Breaker
	Observes *Observes
	Viper    *viper.Viper
}

// GetConfig returns the configuration loaded last.
func GetConfig() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()
	if config == nil {
		return nil, errors.New("config not loaded")
	}
	return config, nil
}

// LoadConfig loads the configuration from the file. With an empty path the
// standard locations are searched; a missing file there is not an error and
// defaults apply.
func LoadConfig(configPath string) (*Config, error) {
	nv := viper.New()
	nv.SetEnvPrefix(EnvPrefix)
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()

	if configPath != "" {
		nv.SetConfigFile(configPath)
	} else {
		nv.SetConfigName("config")
		nv.AddConfigPath("/etc/feedsync")
		nv.AddConfigPath("$HOME/.feedsync")
		nv.AddConfigPath(".")
		if ex, err := os.Executable(); err == nil {
			nv.AddConfigPath(filepath.Dir(ex))
		}
	}

	if err := nv.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := FromViper(nv)

	mu.Lock()
	config = cfg
	path = configPath
	v = nv
	mu.Unlock()
	return cfg, nil
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(vp *viper.Viper) *Config {
	return &Config{
		AppName:  getStringOrDefault(vp, "app_name", "feedsync"),
		RunMode:  getStringOrDefault(vp, "run_mode", "release"),
		Logger:   logcfg.GetConfig(vp),
		Data:     getDataConfig(vp),
		Auth:     getAuth(vp),
		Feed:     getFeedConfig(vp),
		Breaker:  getBreakerConfig(vp),
		Observes: getObservesConfig(vp),
		Viper:    vp,
	}
}

// Reload reloads the configuration from the file.
func Reload() error {
	mu.Lock()
	p := path
	mu.Unlock()

	if _, err := LoadConfig(p); err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	return nil
}

// Watch watches the configuration file and reloads it when it changes.
func Watch(callback func(*Config)) error {
	mu.Lock()
	vp := v
	mu.Unlock()
	if vp == nil || vp.ConfigFileUsed() == "" {
		return errors.New("no config file to watch")
	}

	vp.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		if err := Reload(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reloading config: %v\n", err)
			return
		}
		cfg, err := GetConfig()
		if err == nil {
			callback(cfg)
		}
	})
	vp.WatchConfig()
	return nil
}

// IsDevelopment reports whether the run mode is debug/dev.
func (c *Config) IsDevelopment() bool {
	switch strings.ToLower(c.RunMode) {
	case "debug", "dev", "development":
		return true
	}
	return false
}
