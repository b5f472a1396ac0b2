package ecode

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorIs(t *testing.T) {
	base := errors.New("connection refused")
	err := fmt.Errorf("fetch page: %w", StoreUnavailable(base))

	if !errors.Is(err, ErrStoreUnavailable) {
		t.Error("errors.Is(StoreUnavailable, ErrStoreUnavailable) = false")
	}
	if errors.Is(err, ErrValidation) {
		t.Error("errors.Is(StoreUnavailable, ErrValidation) = true")
	}
	if !errors.Is(err, base) {
		t.Error("wrapped cause lost")
	}
	if got := CodeOf(err); got != ServiceUnavailable {
		t.Errorf("CodeOf() = %v, want %v", got, ServiceUnavailable)
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(nil); got != OK {
		t.Errorf("CodeOf(nil) = %v, want %v", got, OK)
	}
	if got := CodeOf(errors.New("x")); got != ServerErr {
		t.Errorf("CodeOf(untyped) = %v, want %v", got, ServerErr)
	}
}

func TestErrorMessage(t *testing.T) {
	if got := AuthError("", nil).Error(); got != "Invalid email or password." {
		t.Errorf("AuthError().Error() = %q", got)
	}

	v := ValidationError(map[string]string{
		"name":  "Name must be at least 6 characters.",
		"email": "Invalid email address.",
	})
	msg := v.Error()
	if !strings.HasPrefix(msg, Text(ParamErr)) {
		t.Errorf("ValidationError().Error() = %q", msg)
	}
	if strings.Index(msg, "Invalid email") > strings.Index(msg, "Name must") {
		t.Errorf("field messages not sorted by key: %q", msg)
	}
}

func TestRegister(t *testing.T) {
	Register(-1001, "custom")
	if got := Text(-1001); got != "custom" {
		t.Errorf("Text() = %v, want custom", got)
	}
	if got := Text(-9999); got != Text(ServerErr) {
		t.Errorf("Text(unknown) = %v", got)
	}
}

func TestFieldMessages(t *testing.T) {
	if got := FieldIsRequired("username"); got != "username required" {
		t.Errorf("FieldIsRequired() = %v", got)
	}
	if got := NotExist("post"); got != "post does not exist" {
		t.Errorf("NotExist() = %v", got)
	}
	if got := NotFoundError("user").Error(); got != "user does not exist" {
		t.Errorf("NotFoundError() = %v", got)
	}
}
