// Package bootstrap builds the handlers from configuration, shared by the
// Lambda functions and the local server.
package bootstrap

import (
	"context"

	"github.com/garesbzh/carte/backend-go/internal/cache"
	"github.com/garesbzh/carte/backend-go/internal/chart"
	"github.com/garesbzh/carte/backend-go/internal/config"
	"github.com/garesbzh/carte/backend-go/internal/handler"
	"github.com/garesbzh/carte/backend-go/internal/station"
	"github.com/garesbzh/carte/backend-go/pkg/http/client"
	"github.com/rs/zerolog/log"
)

func newHTTPClient(cfg *config.Config) *client.Client {
	return client.New(client.Options{
		BaseURL: cfg.DataBaseURL,
		Timeout: cfg.HTTPTimeout,
	})
}

// NewStationLoader builds the loader, with an S3 snapshot when a bucket is configured
func NewStationLoader(ctx context.Context, cfg *config.Config, cacheCfg *config.CacheConfig) *station.Loader {
	opts := []station.LoaderOption{
		station.WithMemCache(cache.NewStationCache(cacheCfg)),
	}

	if cfg.StationBucket != "" {
		s3Client, err := cache.NewS3Client(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create S3 client, continuing without station snapshot")
		} else {
			opts = append(opts, station.WithS3Cache(
				cache.NewS3StationCache(s3Client, cfg.StationBucket, cacheCfg.GetStationListTTL()),
			))
		}
	}

	return station.NewLoader(newHTTPClient(cfg), cfg.StationsPath, opts...)
}

func NewStationsHandler(ctx context.Context, cfg *config.Config, cacheCfg *config.CacheConfig) *handler.StationsHandler {
	return handler.NewStationsHandler(NewStationLoader(ctx, cfg, cacheCfg))
}

// NewChartService builds the chart service and its comparison cache layers
func NewChartService(ctx context.Context, cfg *config.Config, cacheCfg *config.CacheConfig) *chart.Service {
	var provider chart.ComparisonCacheProvider
	if cacheCfg.EnableLRUCache {
		var store cache.ComparisonStore
		if cacheCfg.EnableDynamoCache {
			dynamoClient, err := cache.NewDynamoClient(ctx)
			if err != nil {
				log.Error().Err(err).Msg("Failed to create DynamoDB client, continuing without it")
			} else {
				store = cache.NewDynamoComparisonCache(dynamoClient, cacheCfg)
			}
		}
		comparisonCache, err := cache.NewComparisonCache(cacheCfg, store)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create comparison cache, continuing without it")
		} else {
			provider = comparisonCache
		}
	}

	return chart.NewService(newHTTPClient(cfg), provider, chart.Options{
		Region:      cfg.Region,
		RoutesPath:  cfg.RoutesPath,
		TourismPath: cfg.TourismPath,
	})
}

func NewChartsHandler(ctx context.Context, cfg *config.Config, cacheCfg *config.CacheConfig) *handler.ChartsHandler {
	return handler.NewChartsHandler(NewChartService(ctx, cfg, cacheCfg))
}
