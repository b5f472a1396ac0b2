package logger

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/ncobase/feedsync/logging/logger/config"
	"github.com/sirupsen/logrus"
)

// Default patterns for detecting sensitive values
var defaultValuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), // Email
	regexp.MustCompile(`\beyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\b`), // JWT
	regexp.MustCompile(`\$2[aby]\$\d{2}\$[./A-Za-z0-9]{53}`),                    // bcrypt hash
}

const maxDepth = 10

// Desensitizer masks sensitive data in log fields
type Desensitizer struct {
	config   *config.Desensitization
	patterns []*regexp.Regexp
	mask     string
}

// NewDesensitizer creates a new desensitizer instance
func NewDesensitizer(cfg *config.Desensitization) *Desensitizer {
	if cfg == nil {
		cfg = config.DefaultDesensitization()
	}
	d := &Desensitizer{
		config: cfg,
		mask:   strings.Repeat(cfg.MaskChar, cfg.FixedMaskLength),
	}

	for _, pattern := range cfg.CustomPatterns {
		if regex, err := regexp.Compile(pattern); err == nil {
			d.patterns = append(d.patterns, regex)
		}
	}
	if cfg.EnableDefaultPatterns {
		d.patterns = append(d.patterns, defaultValuePatterns...)
	}
	return d
}

// DesensitizeFields returns a copy of fields with sensitive data masked
func (d *Desensitizer) DesensitizeFields(fields logrus.Fields) logrus.Fields {
	if !d.config.Enabled {
		return fields
	}
	result := make(logrus.Fields, len(fields))
	for key, value := range fields {
		result[key] = d.value(key, value, 0)
	}
	return result
}

// DeepDesensitize masks sensitive data in an arbitrary value
func (d *Desensitizer) DeepDesensitize(data any) any {
	if !d.config.Enabled {
		return data
	}
	return d.value("", data, 0)
}

func (d *Desensitizer) value(key string, v any, depth int) any {
	if v == nil || depth > maxDepth {
		return v
	}
	if d.isSensitiveField(key) {
		return d.maskValue(v)
	}

	switch t := v.(type) {
	case string:
		return d.desensitizeString(t)
	case error:
		return d.desensitizeString(t.Error())
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = d.value(k, e, depth+1)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = d.value("", e, depth+1)
		}
		return out
	case []string:
		out := make([]string, len(t))
		for i, e := range t {
			out[i] = d.desensitizeString(e)
		}
		return out
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return v
	}

	// Structs and other composites go through their JSON form so tagged
	// field names are matched.
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return v
	}
	switch generic.(type) {
	case map[string]any, []any:
		return d.value(key, generic, depth+1)
	}
	return v
}

// isSensitiveField checks if field name contains sensitive keywords
func (d *Desensitizer) isSensitiveField(fieldName string) bool {
	if fieldName == "" {
		return false
	}
	lowerName := strings.ToLower(fieldName)
	for _, sensitive := range d.config.SensitiveFields {
		s := strings.ToLower(sensitive)
		if d.config.ExactFieldMatch {
			if lowerName == s {
				return true
			}
		} else if strings.Contains(lowerName, s) {
			return true
		}
	}
	return false
}

// desensitizeString applies pattern-based masking to strings
func (d *Desensitizer) desensitizeString(str string) string {
	for _, pattern := range d.patterns {
		str = pattern.ReplaceAllString(str, d.mask)
	}
	return str
}

func (d *Desensitizer) maskValue(value any) any {
	s, ok := value.(string)
	if !ok {
		return d.mask
	}
	if s == "" {
		return s
	}
	if !d.config.UseFixedLength && (d.config.PreservePrefix > 0 || d.config.PreserveSuffix > 0) {
		return d.maskWithPreserve(s)
	}
	return d.mask
}

// maskWithPreserve keeps the configured prefix and suffix characters
func (d *Desensitizer) maskWithPreserve(str string) string {
	keep := d.config.PreservePrefix + d.config.PreserveSuffix
	if len(str) <= keep {
		return d.mask
	}
	return str[:d.config.PreservePrefix] + d.mask + str[len(str)-d.config.PreserveSuffix:]
}

// desensitizeHook masks entry data before formatters and other hooks see it.
type desensitizeHook struct {
	d *Desensitizer
}

func (h *desensitizeHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *desensitizeHook) Fire(entry *logrus.Entry) error {
	entry.Data = h.d.DesensitizeFields(entry.Data)
	return nil
}
