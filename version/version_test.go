package version

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestShortRevision(t *testing.T) {
	if got := shortRevision("abcdef0123456789"); got != "abcdef0" {
		t.Errorf("shortRevision() = %v, want %v", got, "abcdef0")
	}
	if got := shortRevision("abc"); got != "abc" {
		t.Errorf("shortRevision() = %v, want %v", got, "abc")
	}
}

func TestInfoFormats(t *testing.T) {
	info := Info{Version: "1.0.0", Branch: "main", Revision: "abc1234", BuiltAt: "now", GoVersion: "go1.24"}

	if s := info.String(); !strings.Contains(s, "Version: 1.0.0") || !strings.Contains(s, "Revision: abc1234") {
		t.Errorf("String() = %q", s)
	}

	raw, err := info.JSON()
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	var back Info
	if err := json.Unmarshal([]byte(raw), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != info {
		t.Errorf("JSON() round trip = %+v, want %+v", back, info)
	}
}

func TestGetVersionInfoKeepsLinkedValues(t *testing.T) {
	old := Version
	Version = "9.9.9"
	defer func() { Version = old }()

	if got := GetVersionInfo().Version; got != "9.9.9" {
		t.Errorf("GetVersionInfo().Version = %v, want 9.9.9", got)
	}
}
