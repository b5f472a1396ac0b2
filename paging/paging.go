package paging

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultLimit is the page size used when none is configured.
	DefaultLimit = 5
	// MaxLimit caps a single page request.
	MaxLimit = 1024

	cursorSep = "::"
)

// ErrInvalidCursor is returned for cursor strings that do not decode.
var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor marks the last item already delivered. Pages continue strictly
// after it in (CreatedAt desc, ID desc) order.
type Cursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
}

// NormalizeLimit clamps limit to (0, MaxLimit]; non-positive values fall
// back to DefaultLimit.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// After reports whether an item at (createdAt, id) sorts strictly after c
// in descending order, i.e. belongs to a later page.
func (c *Cursor) After(createdAt time.Time, id string) bool {
	if c == nil {
		return true
	}
	if createdAt.Equal(c.CreatedAt) {
		return id < c.ID
	}
	return createdAt.Before(c.CreatedAt)
}

// Encode encodes the cursor to an opaque string.
func (c *Cursor) Encode() string {
	if c == nil {
		return ""
	}
	raw := c.CreatedAt.UTC().Format(time.RFC3339Nano) + cursorSep + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func (c *Cursor) String() string {
	if c == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s/%s", c.CreatedAt.UTC().Format(time.RFC3339Nano), c.ID)
}

// DecodeCursor decodes a cursor string. An empty string yields a nil cursor.
func DecodeCursor(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	ts, id, ok := strings.Cut(string(b), cursorSep)
	if !ok || id == "" {
		return nil, ErrInvalidCursor
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	return &Cursor{CreatedAt: t, ID: id}, nil
}
