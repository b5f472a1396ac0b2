package nanoid

import "testing"

func TestNew(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := New()
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if !IsID(id) {
			t.Errorf("IsID(%q) = false", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestIsID(t *testing.T) {
	for _, id := range []string{"", "short", "abcdefghij-klmnopqrs", "abcdefghijklmnopqrstu"} {
		if IsID(id) {
			t.Errorf("IsID(%q) = true", id)
		}
	}
}
