package station

import (
	"context"
	"sync"

	"github.com/garesbzh/carte/backend-go/internal/cache"
	"github.com/garesbzh/carte/backend-go/internal/models"
	"github.com/garesbzh/carte/backend-go/pkg/http/client"
	"github.com/rs/zerolog/log"
)

// Loader fetches the station dataset, going through the memory cache and
// the optional S3 snapshot before the HTTP source.
type Loader struct {
	httpClient *client.Client
	path       string
	memCache   *cache.StationCache
	s3Cache    cache.StationListCacheProvider
	saveWG     sync.WaitGroup
}

var _ models.StationLoader = (*Loader)(nil)

type LoaderOption func(*Loader)

// WithS3Cache adds a persistent snapshot layer
func WithS3Cache(s3Cache cache.StationListCacheProvider) LoaderOption {
	return func(l *Loader) {
		l.s3Cache = s3Cache
	}
}

// WithMemCache replaces the default in-memory cache
func WithMemCache(memCache *cache.StationCache) LoaderOption {
	return func(l *Loader) {
		l.memCache = memCache
	}
}

func NewLoader(httpClient *client.Client, path string, opts ...LoaderOption) *Loader {
	l := &Loader{
		httpClient: httpClient,
		path:       path,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.memCache == nil {
		l.memCache = cache.NewStationCache(nil)
	}
	return l
}

// Load returns the station sequence in data-source order
func (l *Loader) Load(ctx context.Context) ([]models.Station, error) {
	if stations := l.memCache.GetStations(); stations != nil {
		log.Debug().Msg("Memory cache HIT for station list")
		return stations, nil
	}

	if l.s3Cache != nil {
		stations, err := l.s3Cache.GetStations(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Error getting stations from S3 cache")
		} else if stations != nil {
			log.Debug().Msg("S3 cache HIT for station list")
			l.memCache.SetStations(stations)
			return stations, nil
		}
	}

	log.Debug().Str("path", l.path).Msg("Cache MISS for station list, fetching dataset")

	resp, err := l.httpClient.GetOK(ctx, l.path)
	if err != nil {
		return nil, NewDataLoadError("fetching stations", err)
	}

	records, err := models.DecodeStationRecords(resp.Body)
	if err != nil {
		return nil, NewDataLoadError("parsing stations", err)
	}

	stations := BuildStations(records)
	for _, st := range stations {
		if err := st.Validate(); err != nil {
			log.Warn().Err(err).Str("station_id", st.ID).Msg("Station has out-of-range coordinates")
		}
	}
	log.Info().Int("station_count", len(stations)).Msg("Loaded station dataset")

	if l.s3Cache != nil {
		l.saveWG.Add(1)
		go func() {
			defer l.saveWG.Done()
			if err := l.s3Cache.SaveStations(context.Background(), stations); err != nil {
				log.Error().Err(err).Msg("Failed to save stations to S3 cache")
			}
		}()
	}

	l.memCache.SetStations(stations)
	return stations, nil
}

// Wait blocks until pending snapshot writes finish
func (l *Loader) Wait() {
	l.saveWG.Wait()
}
