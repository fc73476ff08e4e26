package config

import (
	"errors"
	"fmt"
	"os"

	"venuebook/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Booking    BookingConfig    `yaml:"booking"`
	Exports    ExportConfig     `yaml:"exports"`
	Google     GoogleConfig     `yaml:"google"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Port      int                `yaml:"port"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	HeaderExtra  string         `yaml:"header_extra"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
	// Public paths skip the api-key check (the booking form is exposed
	// to guests); everything else requires a key when auth is enabled.
	PublicPaths []string `yaml:"public_paths"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Extra       string   `yaml:"extra"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// BookingConfig bounds what the validator admits before it ever consults
// the store.
type BookingConfig struct {
	MaxBookingDays    int `yaml:"max_booking_days"`
	SubmitLimitCount  int `yaml:"submit_limit_count"`
	SubmitLimitWindow int `yaml:"submit_limit_window"` // seconds
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type GoogleConfig struct {
	CredentialsFile          string `yaml:"credentials_file"`
	ReservationSpreadSheetID string `yaml:"reservations_spreadsheet_id"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; YAML values may reference its variables.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.API.Auth.Enabled && len(c.API.Auth.APIKeys) == 0 {
		return errors.New("api auth enabled but no api keys configured")
	}

	return nil
}

// ValidateEventTypes checks the venue catalog for duplicate or zero IDs.
func ValidateEventTypes(eventTypes []models.EventType) error {
	ids := make(map[int64]bool)
	for _, et := range eventTypes {
		if et.ID == 0 {
			return fmt.Errorf("event type %q has invalid ID 0", et.Name)
		}
		if ids[et.ID] {
			return fmt.Errorf("duplicate event type ID: %d", et.ID)
		}
		ids[et.ID] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "venuebook"
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.Auth.HeaderExtra == "" {
		c.API.Auth.HeaderExtra = "x-api-extra"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.Booking.MaxBookingDays == 0 {
		c.Booking.MaxBookingDays = 365
	}
	if c.Booking.SubmitLimitCount == 0 {
		c.Booking.SubmitLimitCount = models.SubmitLimitCount
	}
	if c.Booking.SubmitLimitWindow == 0 {
		c.Booking.SubmitLimitWindow = models.SubmitLimitWindow
	}

	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
