package chart

import (
	"context"
	"fmt"
	"sync"

	"github.com/garesbzh/carte/backend-go/internal/cache"
	"github.com/garesbzh/carte/backend-go/internal/models"
	"github.com/garesbzh/carte/backend-go/pkg/http/client"
	"github.com/rs/zerolog/log"
)

// ComparisonCacheProvider is what the service needs from a comparison cache
type ComparisonCacheProvider interface {
	GetComparison(ctx context.Context, region, route string) (*models.RouteComparison, error)
	SaveComparisonsBatch(ctx context.Context, records []models.RouteComparison) error
}

var _ ComparisonCacheProvider = (*cache.ComparisonCache)(nil)

type Options struct {
	Region      string
	RoutesPath  string
	TourismPath string
}

// Service serves chart data. The two datasets are independent of each
// other and of station selection; each is fetched once, detached from the
// requesting caller's cancellation.
type Service struct {
	httpClient *client.Client
	cache      ComparisonCacheProvider
	opts       Options

	routesOnce  sync.Once
	routes      *RouteDataset
	routesErr   error
	tourismOnce sync.Once
	tourism     *TourismDataset
	tourismErr  error
}

// NewService creates the service; comparisonCache may be nil
func NewService(httpClient *client.Client, comparisonCache ComparisonCacheProvider, opts Options) *Service {
	return &Service{
		httpClient: httpClient,
		cache:      comparisonCache,
		opts:       opts,
	}
}

func (s *Service) routeDataset(ctx context.Context) (*RouteDataset, error) {
	s.routesOnce.Do(func() {
		ctx := context.WithoutCancel(ctx)
		resp, err := s.httpClient.GetOK(ctx, s.opts.RoutesPath)
		if err != nil {
			s.routesErr = fmt.Errorf("fetching route dataset: %w", err)
			return
		}
		s.routes, s.routesErr = DecodeRouteDataset(resp.Body, s.opts.Region)
		if s.routesErr != nil {
			return
		}
		if s.cache != nil {
			if err := s.cache.SaveComparisonsBatch(ctx, s.routes.CompareAll()); err != nil {
				log.Error().Err(err).Msg("Failed to warm comparison cache")
			}
		}
	})
	if s.routesErr != nil {
		log.Error().Err(s.routesErr).Msg("Route dataset unavailable")
	}
	return s.routes, s.routesErr
}

// Routes lists the sample routes in menu order
func (s *Service) Routes(ctx context.Context) ([]string, error) {
	d, err := s.routeDataset(ctx)
	if err != nil {
		return nil, err
	}
	return d.RouteNames(), nil
}

// DefaultComparison is the comparison for the first route
func (s *Service) DefaultComparison(ctx context.Context) (models.RouteComparison, error) {
	d, err := s.routeDataset(ctx)
	if err != nil {
		return models.RouteComparison{}, err
	}
	route, ok := d.DefaultRoute()
	if !ok {
		return models.RouteComparison{}, fmt.Errorf("route dataset is empty")
	}
	return s.Comparison(ctx, route)
}

// Comparison returns the emissions comparison for the chosen route
func (s *Service) Comparison(ctx context.Context, route string) (models.RouteComparison, error) {
	d, err := s.routeDataset(ctx)
	if err != nil {
		return models.RouteComparison{}, err
	}

	if s.cache != nil {
		cached, err := s.cache.GetComparison(ctx, d.Region, route)
		if err != nil {
			log.Warn().Err(err).Str("route", route).Msg("Comparison cache lookup failed")
		} else if cached != nil {
			return *cached, nil
		}
	}

	c, err := d.Compare(route)
	if err != nil {
		return models.RouteComparison{}, err
	}
	if s.cache != nil {
		if err := s.cache.SaveComparisonsBatch(ctx, []models.RouteComparison{c}); err != nil {
			log.Warn().Err(err).Str("route", route).Msg("Failed to cache comparison")
		}
	}
	return c, nil
}

// Tourism returns the rail-tourism pie series
func (s *Service) Tourism(ctx context.Context) (models.PieSeries, error) {
	s.tourismOnce.Do(func() {
		resp, err := s.httpClient.GetOK(context.WithoutCancel(ctx), s.opts.TourismPath)
		if err != nil {
			s.tourismErr = fmt.Errorf("fetching tourism dataset: %w", err)
			return
		}
		s.tourism, s.tourismErr = DecodeTourismDataset(resp.Body, s.opts.Region)
	})
	if s.tourismErr != nil {
		log.Error().Err(s.tourismErr).Msg("Tourism dataset unavailable")
		return models.PieSeries{}, s.tourismErr
	}
	return s.tourism.Series(), nil
}
