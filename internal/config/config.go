package config

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultDataBaseURL  = "https://static.gares-bretagne.fr"
	defaultStationsPath = "/data/villes_bretagne.json"
	defaultRoutesPath   = "/data/data_graphique.json"
	defaultTourismPath  = "/data/data_tourisme.json"
)

type Config struct {
	Environment   string
	LogLevel      zerolog.Level
	HTTPTimeout   time.Duration
	MaxRetries    int
	DataBaseURL   string
	StationsPath  string
	RoutesPath    string
	TourismPath   string
	StationBucket string
	Region        string
	Port          int
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil {
			parsedLevel = zerolog.InfoLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout allows setting the HTTP timeout
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

// WithDataBaseURL sets the host serving the JSON datasets
func WithDataBaseURL(url string) Option {
	return func(c *Config) {
		c.DataBaseURL = url
	}
}

// WithStationsPath sets the path of the station dataset
func WithStationsPath(path string) Option {
	return func(c *Config) {
		c.StationsPath = path
	}
}

func WithRoutesPath(path string) Option {
	return func(c *Config) {
		c.RoutesPath = path
	}
}

func WithTourismPath(path string) Option {
	return func(c *Config) {
		c.TourismPath = path
	}
}

// WithStationBucket sets the S3 bucket holding the station list snapshot.
// An empty bucket disables the snapshot.
func WithStationBucket(bucket string) Option {
	return func(c *Config) {
		c.StationBucket = bucket
	}
}

// WithRegion sets the dataset region key ("bretagne")
func WithRegion(region string) Option {
	return func(c *Config) {
		c.Region = region
	}
}

func WithPort(port int) Option {
	return func(c *Config) {
		c.Port = port
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment:  "production",
		LogLevel:     zerolog.InfoLevel,
		HTTPTimeout:  10 * time.Second,
		MaxRetries:   3,
		DataBaseURL:  defaultDataBaseURL,
		StationsPath: defaultStationsPath,
		RoutesPath:   defaultRoutesPath,
		TourismPath:  defaultTourismPath,
		Region:       "bretagne",
		Port:         8080,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// IsLocal reports whether the process runs on a developer machine
func (c *Config) IsLocal() bool {
	return c.Environment == "local" || c.Environment == "development"
}

// InitializeLogging sets up logging based on the configuration
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	if c.IsLocal() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		log.Logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	return New(
		WithEnvironment(getEnvOrDefault("ENV", "production")),
		WithLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		WithHTTPTimeout(getDurationEnvOrDefault("HTTP_TIMEOUT", 10*time.Second)),
		WithDataBaseURL(getEnvOrDefault("DATA_BASE_URL", defaultDataBaseURL)),
		WithStationsPath(getEnvOrDefault("STATIONS_PATH", defaultStationsPath)),
		WithRoutesPath(getEnvOrDefault("ROUTES_PATH", defaultRoutesPath)),
		WithTourismPath(getEnvOrDefault("TOURISM_PATH", defaultTourismPath)),
		WithStationBucket(os.Getenv("STATION_CACHE_BUCKET")),
		WithRegion(getEnvOrDefault("DATA_REGION", "bretagne")),
		WithPort(getEnvInt("PORT", 8080)),
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
