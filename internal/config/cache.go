package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// CacheConfig holds all cache-related configuration
type CacheConfig struct {
	// Route comparison LRU settings
	ComparisonLRUSize       int
	ComparisonLRUTTLMinutes int

	// DynamoDB settings
	ComparisonDynamoTTLDays int
	StationListTTLDays      int

	// Batch processing settings
	BatchSize       int
	MaxBatchRetries int

	EnableLRUCache    bool
	EnableDynamoCache bool
}

const (
	defaultComparisonLRUSize    = 256
	defaultComparisonTTLMinutes = 60
	defaultDynamoTTLDays        = 7
	defaultStationListTTLDays   = 1
	defaultBatchSize            = 25
	defaultMaxBatchRetries      = 3
)

// GetCacheConfig returns the cache configuration from environment variables or defaults
func GetCacheConfig() *CacheConfig {
	config := &CacheConfig{
		ComparisonLRUSize:       getEnvInt("CACHE_COMPARISON_LRU_SIZE", defaultComparisonLRUSize),
		ComparisonLRUTTLMinutes: getEnvInt("CACHE_COMPARISON_LRU_TTL_MINUTES", defaultComparisonTTLMinutes),
		ComparisonDynamoTTLDays: getEnvInt("CACHE_DYNAMO_TTL_DAYS", defaultDynamoTTLDays),
		StationListTTLDays:      getEnvInt("CACHE_STATION_LIST_TTL_DAYS", defaultStationListTTLDays),
		BatchSize:               getEnvInt("CACHE_BATCH_SIZE", defaultBatchSize),
		MaxBatchRetries:         getEnvInt("CACHE_MAX_BATCH_RETRIES", defaultMaxBatchRetries),
		EnableLRUCache:          getEnvBool("CACHE_ENABLE_LRU", true),
		EnableDynamoCache:       getEnvBool("CACHE_ENABLE_DYNAMO", false),
	}

	log.Debug().
		Int("ComparisonLRUSize", config.ComparisonLRUSize).
		Int("ComparisonLRUTTLMinutes", config.ComparisonLRUTTLMinutes).
		Int("ComparisonDynamoTTLDays", config.ComparisonDynamoTTLDays).
		Int("StationListTTLDays", config.StationListTTLDays).
		Int("BatchSize", config.BatchSize).
		Int("MaxBatchRetries", config.MaxBatchRetries).
		Bool("EnableLRUCache", config.EnableLRUCache).
		Bool("EnableDynamoCache", config.EnableDynamoCache).
		Msg("Cache configuration loaded")

	return config
}

func (c *CacheConfig) GetComparisonLRUTTL() time.Duration {
	return time.Duration(c.ComparisonLRUTTLMinutes) * time.Minute
}

func (c *CacheConfig) GetDynamoTTL() time.Duration {
	return time.Duration(c.ComparisonDynamoTTLDays) * 24 * time.Hour
}

func (c *CacheConfig) GetStationListTTL() time.Duration {
	return time.Duration(c.StationListTTLDays) * 24 * time.Hour
}

func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Msg("Invalid integer value in environment variable, using default")
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val, exists := os.LookupEnv(key); exists {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
