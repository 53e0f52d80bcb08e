// Package config loads settings for the dashboard and the reference backend.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultBackendURL is the backend the dashboard talks to unless told otherwise.
const DefaultBackendURL = "http://localhost:5001"

// Client holds dashboard settings.
type Client struct {
	BackendURL      string        `yaml:"backend_url" validate:"required,url"`
	RequestTimeout  time.Duration `yaml:"request_timeout" validate:"gt=0"`
	PollInterval    time.Duration `yaml:"poll_interval" validate:"gt=0"`
	NotificationTTL time.Duration `yaml:"notification_ttl" validate:"gt=0"`
	ChartWindow     int           `yaml:"chart_window" validate:"min=1"`
	StartRoute      string        `yaml:"start_route" validate:"oneof=/ /models /system /settings"`
	Logging         Logging       `yaml:"logging"`
}

// Server holds reference backend settings.
type Server struct {
	ListenAddr    string        `yaml:"listen_addr" validate:"required"`
	StatsInterval time.Duration `yaml:"stats_interval" validate:"gt=0"`
	LogBuffer     int           `yaml:"log_buffer" validate:"min=1"`
	StoragePath   string        `yaml:"storage_path"`
	DiskPath      string        `yaml:"disk_path" validate:"required"`
	Logging       Logging       `yaml:"logging"`
}

type Logging struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
	File   string `yaml:"file"`
}

func DefaultClient() Client {
	return Client{
		BackendURL:      DefaultBackendURL,
		RequestTimeout:  10 * time.Second,
		PollInterval:    5 * time.Second,
		NotificationTTL: 6 * time.Second,
		ChartWindow:     10,
		StartRoute:      "/",
		Logging: Logging{
			Level:  "info",
			Format: "text",
			File:   "aideck.log",
		},
	}
}

func DefaultServer() Server {
	return Server{
		ListenAddr:    "0.0.0.0:5001",
		StatsInterval: 2 * time.Second,
		LogBuffer:     500,
		DiskPath:      "/",
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadClient reads dashboard settings from path (optional), applies AIDECK_*
// environment overrides and validates the result.
func LoadClient(path string) (Client, error) {
	cfg := DefaultClient()
	if err := readFile(path, &cfg); err != nil {
		return Client{}, err
	}

	cfg.BackendURL = strings.TrimRight(stringFromEnv("AIDECK_BACKEND_URL", cfg.BackendURL), "/")
	cfg.RequestTimeout = durationFromEnv("AIDECK_REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.PollInterval = durationFromEnv("AIDECK_POLL_INTERVAL", cfg.PollInterval)
	cfg.StartRoute = stringFromEnv("AIDECK_START_ROUTE", cfg.StartRoute)
	cfg.Logging.Level = stringFromEnv("AIDECK_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.File = stringFromEnv("AIDECK_LOG_FILE", cfg.Logging.File)

	if err := Validate(cfg); err != nil {
		return Client{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadServer reads backend settings from path (optional), applies AIDECKD_*
// environment overrides and validates the result.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()
	if err := readFile(path, &cfg); err != nil {
		return Server{}, err
	}

	cfg.ListenAddr = stringFromEnv("AIDECKD_LISTEN_ADDR", cfg.ListenAddr)
	cfg.StatsInterval = durationFromEnv("AIDECKD_STATS_INTERVAL", cfg.StatsInterval)
	cfg.StoragePath = stringFromEnv("AIDECKD_STORAGE_PATH", cfg.StoragePath)
	cfg.Logging.Level = stringFromEnv("AIDECKD_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = stringFromEnv("AIDECKD_LOG_FORMAT", cfg.Logging.Format)

	if err := Validate(cfg); err != nil {
		return Server{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func readFile(path string, out any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

var validate = validator.New()

// Validate checks struct tags and reports every failing field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		messages = append(messages, formatFieldError(e))
	}
	return errors.New(strings.Join(messages, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "url":
		return fmt.Sprintf("%s must be an absolute URL", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, e.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, e.Tag())
	}
}

func durationFromEnv(name string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(value)
	if err == nil {
		return parsed
	}

	// Plain integers are read as milliseconds.
	if ms, parseErr := strconv.Atoi(value); parseErr == nil && ms >= 0 {
		return time.Duration(ms) * time.Millisecond
	}

	return fallback
}

func stringFromEnv(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}
