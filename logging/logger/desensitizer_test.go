package logger

import (
	"testing"

	"github.com/ncobase/feedsync/logging/logger/config"
	"github.com/sirupsen/logrus"
)

func TestDesensitizeNested(t *testing.T) {
	d := NewDesensitizer(config.DefaultDesensitization())

	type body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	out := d.DesensitizeFields(logrus.Fields{
		"form": body{Email: "x@y.io", Password: "secret!"},
		"meta": map[string]any{"refresh_token": "r", "page": 2},
	})

	form, ok := out["form"].(map[string]any)
	if !ok {
		t.Fatalf("form = %T, want map", out["form"])
	}
	if form["password"] != "******" {
		t.Errorf("form.password = %v, want masked", form["password"])
	}
	if form["email"] != "x@y.io" {
		t.Errorf("form.email = %v, want unchanged", form["email"])
	}

	meta := out["meta"].(map[string]any)
	if meta["refresh_token"] != "******" || meta["page"] != 2 {
		t.Errorf("meta = %v", meta)
	}
}

func TestDefaultPatterns(t *testing.T) {
	cfg := config.DefaultDesensitization()
	cfg.EnableDefaultPatterns = true
	d := NewDesensitizer(cfg)

	got := d.DeepDesensitize("contact a@b.com now")
	if got != "contact ****** now" {
		t.Errorf("DeepDesensitize() = %v", got)
	}
}

func TestPreserveMode(t *testing.T) {
	cfg := config.DefaultDesensitization()
	cfg.UseFixedLength = false
	cfg.PreservePrefix = 2
	cfg.PreserveSuffix = 1
	cfg.FixedMaskLength = 3
	d := NewDesensitizer(cfg)

	if got := d.DeepDesensitize(map[string]any{"password": "abcdefg"}).(map[string]any)["password"]; got != "ab***g" {
		t.Errorf("preserve mask = %v, want ab***g", got)
	}
}

func TestDisabled(t *testing.T) {
	cfg := config.DefaultDesensitization()
	cfg.Enabled = false
	d := NewDesensitizer(cfg)

	in := logrus.Fields{"password": "p"}
	if out := d.DesensitizeFields(in); out["password"] != "p" {
		t.Errorf("disabled desensitizer masked %v", out)
	}
}
