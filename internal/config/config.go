// Package config loads the covid tool configuration.
//
// A config file is YAML. Missing keys keep their defaults, unknown keys are
// rejected. COVID_DATABASE overrides the database path. The merged result is
// checked against an embedded CUE schema before it is returned.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/coviddata/internal/apperr"
	"github.com/roach88/coviddata/internal/model"
)

//go:embed schema.cue
var schemaCUE string

// EnvDatabase overrides Config.Database when set.
const EnvDatabase = "COVID_DATABASE"

const opLoad = "load config"

// Config is the tool configuration.
type Config struct {
	// Database is the SQLite file path.
	Database string `yaml:"database" json:"database"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// LogFormat is text or json.
	LogFormat string `yaml:"log_format" json:"log_format"`

	// ConflictStrategy is the default loader strategy: replace or add.
	ConflictStrategy string `yaml:"conflict_strategy" json:"conflict_strategy"`

	// BatchSize is the number of cases the loader writes per transaction.
	BatchSize int `yaml:"batch_size" json:"batch_size"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Database:         "covid.db",
		LogLevel:         "info",
		LogFormat:        "text",
		ConflictStrategy: string(model.ConflictReplace),
		BatchSize:        500,
	}
}

// Load reads the YAML file at path over the defaults. An empty path skips
// the file. The environment override applies either way.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}

		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true) // Reject unknown keys
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, apperr.Validation(opLoad, path, "failed to parse YAML: %v", err)
		}
	}

	if db := os.Getenv(EnvDatabase); db != "" {
		cfg.Database = db
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cfg against the embedded CUE schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	v := def.Unify(ctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return apperr.Validation(opLoad, "", "invalid config: %v", err)
	}
	return nil
}

// Strategy returns the configured conflict strategy.
func (c Config) Strategy() model.ConflictStrategy {
	s, _ := model.ParseConflictStrategy(c.ConflictStrategy)
	return s
}

// Level returns the slog level for LogLevel, defaulting to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger builds the logger described by c, writing to w.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level()}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
