package cache

import (
	"sync"
	"time"

	"github.com/garesbzh/carte/backend-go/internal/config"
	"github.com/garesbzh/carte/backend-go/internal/models"
)

// StationCache keeps the parsed station list in memory.
type StationCache struct {
	stations    []models.Station
	lastUpdated time.Time
	ttl         time.Duration
	clock       clock
	mu          sync.RWMutex
}

func NewStationCache(cfg *config.CacheConfig) *StationCache {
	if cfg == nil {
		cfg = config.GetCacheConfig()
	}
	return &StationCache{
		stations:    nil,
		lastUpdated: time.Time{}, // Zero time to ensure first fetch
		ttl:         cfg.GetStationListTTL(),
		clock:       systemClock{},
	}
}

// GetStations returns the cached list, or nil when empty or expired
func (c *StationCache) GetStations() []models.Station {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.stations == nil || c.isExpired() {
		return nil
	}
	result := make([]models.Station, len(c.stations))
	copy(result, c.stations)
	return result
}

func (c *StationCache) SetStations(stations []models.Station) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stations = make([]models.Station, len(stations))
	copy(c.stations, stations)
	c.lastUpdated = c.clock.Now()
}

func (c *StationCache) isExpired() bool {
	return c.clock.Now().Sub(c.lastUpdated) > c.ttl
}
