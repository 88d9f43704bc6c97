package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix of every environment variable read by Load
const Prefix = "CONVERTER"

// Config settings for the converter server
type Config struct {
	// HTTPAddr address the HTTP server listens on
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// MetricsPath where prometheus metrics are served
	MetricsPath string `envconfig:"METRICS_PATH" default:"/metrics"`

	// RatesFile optional JSON rates document loaded at start up and on every refresh
	RatesFile string `envconfig:"RATES_FILE"`

	// RefreshInterval how often RatesFile is reloaded
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"1m"`

	// ShutdownTimeout how long in-flight requests get to finish on shutdown
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	Log Log `envconfig:"LOG"`
}

// Log logger settings
type Log struct {
	// Level one of debug, info, warn, error
	Level string `envconfig:"LEVEL" default:"info"`

	// Format logfmt or json
	Format string `envconfig:"FORMAT" default:"logfmt"`
}

// Load reads an optional .env file and then the CONVERTER_* environment variables.
// With no envFiles a .env in the working directory is tried. Missing env files are not an error.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot check on its own
func (c *Config) Validate() error {
	if _, err := levelOption(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "logfmt", "json":
	default:
		return fmt.Errorf("log format %q: must be logfmt or json", c.Log.Format)
	}
	if c.RatesFile != "" && c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh interval %v: must be positive", c.RefreshInterval)
	}
	return nil
}

// NewLogger builds the process logger writing to w
func NewLogger(c Log, w io.Writer) (log.Logger, error) {
	allow, err := levelOption(c.Level)
	if err != nil {
		return nil, err
	}

	var logger log.Logger
	sw := log.NewSyncWriter(w)
	if c.Format == "json" {
		logger = log.NewJSONLogger(sw)
	} else {
		logger = log.NewLogfmtLogger(sw)
	}
	logger = level.NewFilter(logger, allow)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
	return logger, nil
}

func levelOption(l string) (level.Option, error) {
	switch l {
	case "debug":
		return level.AllowDebug(), nil
	case "info":
		return level.AllowInfo(), nil
	case "warn":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	}
	return nil, fmt.Errorf("log level %q: must be debug, info, warn or error", l)
}
