package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/brickingsoft/errors"
	"github.com/dshulyak/uclock/internal/term"
	"github.com/joho/godotenv"
)

// ErrInvalid returned if one of the variables can't be parsed.
var ErrInvalid = errors.Define("config: invalid value")

const (
	envOffset   = "UCLOCK_UTC_OFFSET"
	envPeriod   = "UCLOCK_PERIOD"
	envEntries  = "UCLOCK_ENTRIES"
	envColor    = "UCLOCK_COLOR"
	envLogLevel = "UCLOCK_LOG_LEVEL"
	envLogFile  = "UCLOCK_LOG_FILE"
)

type Config struct {
	Offset   time.Duration // added to unix time before rendering
	Period   time.Duration // redraw period
	Entries  uint          // submission queue size
	Color    string        // ansi color name
	LogLevel slog.Level
	LogFile  string // empty means stderr
}

// Load reads variables from the dotenv file at path, if it exists, and parses config from
// the environment. Variables already present in the environment take precedence over the
// file.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return nil, errors.New("config: failed to load dotenv file",
				errors.WithMeta("path", path),
				errors.WithWrap(err))
		}
	}
	return FromEnv()
}

// FromEnv parses config from the process environment.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Offset:   localOffset(),
		Period:   time.Second,
		Entries:  2,
		Color:    "br_blue",
		LogLevel: slog.LevelWarn,
		LogFile:  os.Getenv(envLogFile),
	}
	if v := os.Getenv(envOffset); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, invalid(envOffset, v, err)
		}
		cfg.Offset = d
	}
	if v := os.Getenv(envPeriod); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, invalid(envPeriod, v, err)
		}
		if d <= 0 {
			return nil, invalid(envPeriod, v, nil)
		}
		cfg.Period = d
	}
	if v := os.Getenv(envEntries); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, invalid(envEntries, v, err)
		}
		if n < 2 || n > 4096 {
			return nil, invalid(envEntries, v, nil)
		}
		cfg.Entries = uint(n)
	}
	if v := os.Getenv(envColor); v != "" {
		v = strings.ToLower(v)
		if _, ok := term.Colors[v]; !ok {
			return nil, invalid(envColor, v, nil)
		}
		cfg.Color = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, invalid(envLogLevel, v, err)
		}
	}
	return cfg, nil
}

func invalid(key, value string, err error) error {
	if err == nil {
		return errors.From(ErrInvalid,
			errors.WithMeta("key", key),
			errors.WithMeta("value", value))
	}
	return errors.From(ErrInvalid,
		errors.WithMeta("key", key),
		errors.WithMeta("value", value),
		errors.WithWrap(err))
}

func localOffset() time.Duration {
	_, offset := time.Now().Zone()
	return time.Duration(offset) * time.Second
}
