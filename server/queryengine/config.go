package queryengine

import (
	"fmt"
)

// Config bounds the filter expressions accepted from clients.
type Config struct {
	// MaxExpressionLength is the longest accepted expression, in bytes.
	MaxExpressionLength int `json:"maxExpressionLength" yaml:"maxExpressionLength"`
	// CostLimit caps the runtime cost of a single evaluation.
	CostLimit uint64 `json:"costLimit" yaml:"costLimit"`
}

// DefaultConfig returns the default filter configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxExpressionLength: 1024,
		CostLimit:           10000,
	}
}

// ValidateConfig checks that config is usable.
func ValidateConfig(config *Config) error {
	if config.MaxExpressionLength < 1 || config.MaxExpressionLength > 64*1024 {
		return ErrInvalidConfig{Field: "MaxExpressionLength", Value: config.MaxExpressionLength}
	}
	if config.CostLimit == 0 {
		return ErrInvalidConfig{Field: "CostLimit", Value: config.CostLimit}
	}
	return nil
}

// ErrInvalidConfig reports a config field outside its allowed range.
type ErrInvalidConfig struct {
	Field string
	Value interface{}
}

func (e ErrInvalidConfig) Error() string {
	return fmt.Sprintf("invalid config field '%s': %v", e.Field, e.Value)
}
