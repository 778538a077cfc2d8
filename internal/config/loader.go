package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "APEX_"
	envCfgPath = "APEX_CONFIG"
)

// LoadOption customises Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	path string
}

// WithFile loads path instead of $APEX_CONFIG.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) {
		if path != "" {
			o.path = path
		}
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) from WithFile or APEX_CONFIG
//  3. env (prefix APEX_)
func Load(_ context.Context, opts ...LoadOption) (*Config, error) {
	o := loadOptions{path: os.Getenv(envCfgPath)}
	for _, opt := range opts {
		opt(&o)
	}

	k := koanf.New(".")

	if o.path != "" {
		if err := k.Load(file.Provider(o.path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, o.path, err)
		}
	}

	// APEX_QUEUE_SIZE -> queue_size. Keys are flat; underscores are kept.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.QualifierScope = strings.ToLower(cfg.QualifierScope)
	cfg.Embedder = strings.ToLower(cfg.Embedder)
	cfg.Reranker = strings.ToLower(cfg.Reranker)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
