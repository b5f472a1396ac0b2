package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefaults(t *testing.T) {
	cfg := FromViper(viper.New())

	if cfg.AppName != "feedsync" {
		t.Errorf("AppName = %v, want feedsync", cfg.AppName)
	}
	if cfg.Feed.PageSize != 5 {
		t.Errorf("Feed.PageSize = %v, want 5", cfg.Feed.PageSize)
	}
	if cfg.Feed.NotificationSize != 10 {
		t.Errorf("Feed.NotificationSize = %v, want 10", cfg.Feed.NotificationSize)
	}
	if cfg.Feed.ToggleMode != ToggleAtomic {
		t.Errorf("Feed.ToggleMode = %v, want %v", cfg.Feed.ToggleMode, ToggleAtomic)
	}
	if !cfg.Feed.FollowCompensation {
		t.Error("Feed.FollowCompensation = false, want true")
	}
	if cfg.Data.Driver != "memory" {
		t.Errorf("Data.Driver = %v, want memory", cfg.Data.Driver)
	}
	if cfg.Auth.SessionKey != "session" || cfg.Auth.JWT.Expire != 7*24*time.Hour {
		t.Errorf("Auth = %+v, JWT = %+v", cfg.Auth, cfg.Auth.JWT)
	}
	if cfg.Breaker.FailureRatio != 0.6 || cfg.Breaker.MinRequests != 3 {
		t.Errorf("Breaker = %+v", cfg.Breaker)
	}
	if cfg.Logger.Level != 4 {
		t.Errorf("Logger.Level = %v, want 4", cfg.Logger.Level)
	}
}

func TestUnknownToggleModeFallsBack(t *testing.T) {
	v := viper.New()
	v.Set("feed.toggle_mode", "bogus")
	if got := FromViper(v).Feed.ToggleMode; got != ToggleAtomic {
		t.Errorf("ToggleMode = %v, want %v", got, ToggleAtomic)
	}
	v.Set("feed.toggle_mode", ToggleOverwrite)
	if got := FromViper(v).Feed.ToggleMode; got != ToggleOverwrite {
		t.Errorf("ToggleMode = %v, want %v", got, ToggleOverwrite)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	content := `
app_name: feedtest
run_mode: debug
data:
  driver: mongodb
  mongodb:
    master:
      uri: mongodb://db:27017
    slaves:
      - uri: mongodb://replica:27017
        weight: 3
    database: social
feed:
  page_size: 7
  fetch_timeout: 2s
  toggle_mode: overwrite
`
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(file)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.AppName != "feedtest" || !cfg.IsDevelopment() {
		t.Errorf("AppName/RunMode = %v/%v", cfg.AppName, cfg.RunMode)
	}
	if cfg.Data.MongoDB.Master.URI != "mongodb://db:27017" || cfg.Data.MongoDB.Database != "social" {
		t.Errorf("MongoDB = %+v", cfg.Data.MongoDB)
	}
	if len(cfg.Data.MongoDB.Slaves) != 1 || cfg.Data.MongoDB.Slaves[0].Weight != 3 {
		t.Errorf("MongoDB.Slaves = %+v", cfg.Data.MongoDB.Slaves)
	}
	if cfg.Feed.PageSize != 7 || cfg.Feed.FetchTimeout != 2*time.Second || cfg.Feed.ToggleMode != ToggleOverwrite {
		t.Errorf("Feed = %+v", cfg.Feed)
	}

	got, err := GetConfig()
	if err != nil || got != cfg {
		t.Errorf("GetConfig() = %p, %v; want %p", got, err, cfg)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadConfig(missing) error = nil")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("FEEDSYNC_FEED_PAGE_SIZE", "12")
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(file, []byte("feed:\n  page_size: 5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(file)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Feed.PageSize != 12 {
		t.Errorf("Feed.PageSize = %v, want 12 from env", cfg.Feed.PageSize)
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(file, []byte("feed:\n  page_size: 3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(file); err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	changed := make(chan *Config, 4)
	if err := Watch(func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	}); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if err := os.WriteFile(file, []byte("logger:\n  level: 5\nfeed:\n  page_size: 9\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-changed:
			if c.Feed.PageSize != 9 {
				continue
			}
			if c.Logger.Level != 5 {
				t.Errorf("Logger.Level = %v, want 5", c.Logger.Level)
			}
			if got, _ := GetConfig(); got != c {
				t.Error("GetConfig() does not return the reloaded config")
			}
			return
		case <-deadline:
			t.Fatal("config change not observed")
		}
	}
}

func TestWatchWithoutFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if _, err := LoadConfig(""); err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if err := Watch(func(*Config) {}); err == nil {
		t.Error("Watch() without a config file error = nil")
	}
}
