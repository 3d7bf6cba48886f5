package station

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/garesbzh/carte/backend-go/internal/cache"
	"github.com/garesbzh/carte/backend-go/internal/config"
	"github.com/garesbzh/carte/backend-go/internal/models"
	"github.com/garesbzh/carte/backend-go/pkg/http/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDataset = `[
	{"nom": "Rennes", "lat": 48.11, "lon": -1.68, "description": "Capitale bretonne"},
	{"nom": "Brest", "lat": 48.39, "lon": -4.49},
	{"nom": "Vannes", "lat": 47.66, "lon": -2.76}
]`

type mockS3Cache struct {
	getStationsFunc  func(context.Context) ([]models.Station, error)
	saveStationsFunc func(context.Context, []models.Station) error
}

func (m *mockS3Cache) GetStations(ctx context.Context) ([]models.Station, error) {
	if m.getStationsFunc != nil {
		return m.getStationsFunc(ctx)
	}
	return nil, nil
}

func (m *mockS3Cache) SaveStations(ctx context.Context, stations []models.Station) error {
	if m.saveStationsFunc != nil {
		return m.saveStationsFunc(ctx, stations)
	}
	return nil
}

func newMemCache() *cache.StationCache {
	return cache.NewStationCache(&config.CacheConfig{StationListTTLDays: 1})
}

func TestLoaderFetchesAndCaches(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "/data/villes_bretagne.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(testDataset))
	}))
	defer srv.Close()

	var mu sync.Mutex
	var saved []models.Station
	s3 := &mockS3Cache{
		saveStationsFunc: func(_ context.Context, stations []models.Station) error {
			mu.Lock()
			defer mu.Unlock()
			saved = stations
			return nil
		},
	}

	loader := NewLoader(
		client.New(client.Options{BaseURL: srv.URL, Timeout: 5 * time.Second}),
		"/data/villes_bretagne.json",
		WithMemCache(newMemCache()),
		WithS3Cache(s3),
	)

	stations, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, stations, 3)
	assert.Equal(t, "rennes", stations[0].ID)
	assert.Equal(t, "Capitale bretonne", stations[0].Description)
	assert.Equal(t, "Vannes", stations[2].Name)

	// second load is served from memory
	again, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stations, again)
	assert.Equal(t, int32(1), requests.Load())

	loader.Wait()
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, stations, saved)
}

func TestLoaderUsesS3Snapshot(t *testing.T) {
	t.Parallel()

	snapshot := []models.Station{{ID: "rennes", Name: "Rennes", Latitude: 48.11, Longitude: -1.68}}
	httpClient := client.New(client.Options{})
	httpClient.GetFunc = func(ctx context.Context, path string) (*client.Response, error) {
		t.Fatal("HTTP source must not be called when the snapshot is valid")
		return nil, nil
	}

	loader := NewLoader(httpClient, "/stations.json",
		WithMemCache(newMemCache()),
		WithS3Cache(&mockS3Cache{
			getStationsFunc: func(context.Context) ([]models.Station, error) {
				return snapshot, nil
			},
		}),
	)

	stations, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snapshot, stations)
}

func TestLoaderFallsBackWhenS3Fails(t *testing.T) {
	t.Parallel()

	httpClient := client.New(client.Options{})
	httpClient.GetFunc = func(ctx context.Context, path string) (*client.Response, error) {
		return &client.Response{StatusCode: http.StatusOK, Body: []byte(testDataset)}, nil
	}

	loader := NewLoader(httpClient, "/stations.json",
		WithMemCache(newMemCache()),
		WithS3Cache(&mockS3Cache{
			getStationsFunc: func(context.Context) ([]models.Station, error) {
				return nil, errors.New("access denied")
			},
		}),
	)

	stations, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, stations, 3)
	loader.Wait()
}

func TestLoaderErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		resp    *client.Response
		err     error
		wantMsg string
	}{
		{
			name:    "network failure",
			err:     errors.New("connection refused"),
			wantMsg: "fetching stations",
		},
		{
			name:    "not found",
			resp:    &client.Response{StatusCode: http.StatusNotFound, Body: []byte("missing")},
			wantMsg: "unexpected HTTP status 404",
		},
		{
			name:    "malformed JSON",
			resp:    &client.Response{StatusCode: http.StatusOK, Body: []byte(`{"nom": "Rennes"`)},
			wantMsg: "parsing stations",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			httpClient := client.New(client.Options{})
			httpClient.GetFunc = func(ctx context.Context, path string) (*client.Response, error) {
				return tt.resp, tt.err
			}
			loader := NewLoader(httpClient, "/stations.json", WithMemCache(newMemCache()))

			stations, err := loader.Load(context.Background())
			require.Error(t, err)
			assert.Nil(t, stations)

			var loadErr *DataLoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
