// Package logging builds the categorized zap loggers used across poolsim.
// Each subsystem logs through a named child of the root logger; categories can be switched off in config.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"poolsim/internal/config"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot      Category = "boot"      // Config load, startup
	CategoryCodec     Category = "codec"     // Record and field decoding
	CategoryInventory Category = "inventory" // Inventory builder, duplicates, state file
	CategoryHeat      Category = "heat"      // Heat model diagnostics
	CategorySchedule  Category = "schedule"  // Schedule engine, instruction files
	CategoryContainer Category = "container" // Container packing
	CategoryStore     Category = "store"     // SQLite persistence
	CategoryCLI       Category = "cli"       // Command output
)

// AllCategories lists every category in declaration order.
var AllCategories = []Category{
	CategoryBoot, CategoryCodec, CategoryInventory, CategoryHeat,
	CategorySchedule, CategoryContainer, CategoryStore, CategoryCLI,
}

// ParseLevel maps a config level name to a zap level. Empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// New builds the root logger from config. Format "console" selects the development encoder;
// anything else is JSON. File, when set, replaces stderr as the output.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc.Encoding = "console"
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if cfg.File != "" {
		zc.OutputPaths = []string{cfg.File}
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.WithOptions(categoryFilter(cfg)), nil
}

// For returns the named child logger for a category. A nil parent yields a no-op logger.
func For(l *zap.Logger, c Category) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l.Named(string(c))
}

// categoryFilter drops entries from categories switched off in cfg.Categories.
func categoryFilter(cfg config.LoggingConfig) zap.Option {
	return zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		if len(cfg.Categories) == 0 {
			return core
		}
		return &filteredCore{Core: core, enabled: cfg.IsCategoryEnabled}
	})
}

type filteredCore struct {
	zapcore.Core
	enabled func(string) bool
}

func (c *filteredCore) With(fields []zapcore.Field) zapcore.Core {
	return &filteredCore{Core: c.Core.With(fields), enabled: c.enabled}
}

func (c *filteredCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	name := e.LoggerName
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	if name != "" && !c.enabled(name) {
		return ce
	}
	return c.Core.Check(e, ce)
}
