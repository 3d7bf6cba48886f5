package chart

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/garesbzh/carte/backend-go/internal/models"
	"github.com/garesbzh/carte/backend-go/pkg/http/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockComparisonCache struct {
	mu      sync.Mutex
	records map[string]models.RouteComparison
	gets    int
	getErr  error
	saveErr error
}

func newMockComparisonCache() *mockComparisonCache {
	return &mockComparisonCache{records: make(map[string]models.RouteComparison)}
}

func (m *mockComparisonCache) GetComparison(_ context.Context, region, route string) (*models.RouteComparison, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return nil, m.getErr
	}
	if r, ok := m.records[region+":"+route]; ok {
		return &r, nil
	}
	return nil, nil
}

func (m *mockComparisonCache) SaveComparisonsBatch(_ context.Context, records []models.RouteComparison) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	for _, r := range records {
		m.records[r.Region+":"+r.Route] = r
	}
	return nil
}

// fakeSource serves the two datasets by path and counts fetches
type fakeSource struct {
	mu       sync.Mutex
	bodies   map[string]string
	statuses map[string]int
	fetches  map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		bodies: map[string]string{
			"/routes.json":  testRoutesJSON,
			"/tourism.json": testTourismJSON,
		},
		statuses: map[string]int{},
		fetches:  map[string]int{},
	}
}

func (f *fakeSource) client() *client.Client {
	c := client.New(client.Options{})
	c.GetFunc = func(_ context.Context, path string) (*client.Response, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.fetches[path]++
		status := http.StatusOK
		if s, ok := f.statuses[path]; ok {
			status = s
		}
		return &client.Response{StatusCode: status, Body: []byte(f.bodies[path])}, nil
	}
	return c
}

func testOptions() Options {
	return Options{Region: "bretagne", RoutesPath: "/routes.json", TourismPath: "/tourism.json"}
}

func TestServiceRoutesAndDefault(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	svc := NewService(src.client(), nil, testOptions())
	ctx := context.Background()

	routes, err := svc.Routes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rennes-Brest", "Rennes-Vannes", "Brest-Quimper", "Lorient-Vannes"}, routes)

	def, err := svc.DefaultComparison(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Rennes-Brest", def.Route)
	assert.Equal(t, 47530.0, def.CarCO2Grams)

	c, err := svc.Comparison(ctx, "Rennes-Vannes")
	require.NoError(t, err)
	assert.Equal(t, 3190.0, c.TrainCO2Grams)

	// the dataset is fetched once
	assert.Equal(t, 1, src.fetches["/routes.json"])
}

func TestServiceWarmsCache(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	cache := newMockComparisonCache()
	svc := NewService(src.client(), cache, testOptions())
	ctx := context.Background()

	_, err := svc.Routes(ctx)
	require.NoError(t, err)
	assert.Len(t, cache.records, 4)

	// a cached record wins over recomputation
	cache.records["bretagne:Rennes-Brest"] = models.RouteComparison{Region: "bretagne", Route: "Rennes-Brest", DistanceKm: 1}
	c, err := svc.Comparison(ctx, "Rennes-Brest")
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.DistanceKm)
}

func TestServiceCacheFailuresAreNotFatal(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	cache := newMockComparisonCache()
	cache.getErr = errors.New("lookup failed")
	cache.saveErr = errors.New("save failed")
	svc := NewService(src.client(), cache, testOptions())

	c, err := svc.Comparison(context.Background(), "Brest-Quimper")
	require.NoError(t, err)
	assert.Equal(t, 73.0, c.DistanceKm)
	assert.Equal(t, 1, cache.gets)
}

func TestServiceUnknownRoute(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeSource().client(), newMockComparisonCache(), testOptions())

	_, err := svc.Comparison(context.Background(), "Rennes-Paris")
	var unknown *UnknownRouteError
	assert.True(t, errors.As(err, &unknown))
}

func TestServiceDatasetUnavailable(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	src.statuses["/routes.json"] = http.StatusInternalServerError
	src.statuses["/tourism.json"] = http.StatusNotFound
	svc := NewService(src.client(), nil, testOptions())
	ctx := context.Background()

	_, err := svc.Routes(ctx)
	require.Error(t, err)
	var statusErr *client.StatusError
	assert.True(t, errors.As(err, &statusErr))

	_, err = svc.DefaultComparison(ctx)
	assert.Error(t, err)

	_, err = svc.Tourism(ctx)
	assert.Error(t, err)

	// failures are remembered rather than retried
	assert.Equal(t, 1, src.fetches["/routes.json"])
	assert.Equal(t, 1, src.fetches["/tourism.json"])
}

func TestServiceEmptyRouteDataset(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	src.bodies["/routes.json"] = `{"bretagne": {"trajets_exemples": {}, "facteurs_emission": {"train": 29, "voiture": 194}}}`
	svc := NewService(src.client(), nil, testOptions())

	_, err := svc.DefaultComparison(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "route dataset is empty")
}

func TestServiceTourism(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	svc := NewService(src.client(), nil, testOptions())

	series, err := svc.Tourism(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Finistère", "Morbihan", "Ille-et-Vilaine", "Côtes-d'Armor"}, series.Labels)

	_, err = svc.Tourism(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, src.fetches["/tourism.json"])
	assert.Zero(t, src.fetches["/routes.json"])
}

func TestServiceCancelledFirstCaller(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	c := src.client()
	serve := c.GetFunc
	c.GetFunc = func(ctx context.Context, path string) (*client.Response, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return serve(ctx, path)
	}
	svc := NewService(c, nil, testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	routes, err := svc.Routes(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, routes)

	series, err := svc.Tourism(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, series.Labels)

	_, err = svc.Comparison(context.Background(), routes[0])
	require.NoError(t, err)
}
