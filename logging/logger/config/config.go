package config

import (
	"github.com/spf13/viper"
)

// Config configuration struct
type Config struct {
	Level           int              `json:"level" yaml:"level"`
	Format          string           `json:"format" yaml:"format"`
	Output          string           `json:"output" yaml:"output"`
	OutputFile      string           `json:"output_file" yaml:"output_file"`
	Desensitization *Desensitization `json:"desensitization" yaml:"desensitization"`
	// SentryDSN enables the error-level sentry hook when set.
	SentryDSN string `json:"sentry_dsn" yaml:"sentry_dsn"`
}

// DefaultLevel is logrus.InfoLevel.
const DefaultLevel = 4

// GetConfig returns the logger configuration
func GetConfig(v *viper.Viper) *Config {
	level := DefaultLevel
	if v.IsSet("logger.level") {
		level = v.GetInt("logger.level")
	}

	output := v.GetString("logger.output")
	if output == "" {
		output = "stderr"
	}

	return &Config{
		Level:           level,
		Format:          v.GetString("logger.format"),
		Output:          output,
		OutputFile:      v.GetString("logger.output_file"),
		Desensitization: getDesensitizationConfigs(v),
		SentryDSN:       v.GetString("observes.sentry.endpoint"),
	}
}
