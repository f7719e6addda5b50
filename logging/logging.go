// Package logging configures logrus for the voxlink binary: level, text or
// JSON formatting, and optional rotated file output.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig enables a rotated log file next to the console output.
type FileConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Path       string `mapstructure:"path" yaml:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// Config selects the level, format and destinations of log output.
type Config struct {
	Level  string     `mapstructure:"level" yaml:"level"`
	Format string     `mapstructure:"format" yaml:"format"` // text or json
	File   FileConfig `mapstructure:"file" yaml:"file"`
}

// Formats accepted in Config.Format.
const (
	FormatText = "text"
	FormatJSON = "json"
)

const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Validate reports the first problem with c.
func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Format) {
	case "", FormatText, FormatJSON:
	default:
		return fmt.Errorf("unknown log format %q", c.Format)
	}
	if c.File.Enabled && c.File.Path == "" {
		return fmt.Errorf("log file enabled without a path")
	}
	return nil
}

// Setup applies cfg to the standard logrus logger, which every package logs
// through. The returned closer releases the log file, if any.
func Setup(cfg Config, console io.Writer) (io.Closer, error) {
	return Configure(logrus.StandardLogger(), cfg, console)
}

// Configure applies cfg to l. Console output goes to console, or to stderr
// when console is nil.
func Configure(l *logrus.Logger, cfg Config, console io.Writer) (io.Closer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, _ := logrus.ParseLevel(cfg.Level)
	l.SetLevel(level)

	if strings.EqualFold(cfg.Format, FormatJSON) {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timestampFormat})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: timestampFormat})
	}

	if console == nil {
		console = os.Stderr
	}
	if !cfg.File.Enabled {
		l.SetOutput(console)
		return nopCloser{}, nil
	}

	file := &lumberjack.Logger{
		Filename:   cfg.File.Path,
		MaxSize:    cfg.File.MaxSizeMB,
		MaxBackups: cfg.File.MaxBackups,
		MaxAge:     cfg.File.MaxAgeDays,
		Compress:   cfg.File.Compress,
	}
	l.SetOutput(io.MultiWriter(console, file))
	return file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
