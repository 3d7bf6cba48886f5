package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/garesbzh/carte/backend-go/internal/api"
	"github.com/garesbzh/carte/backend-go/internal/chart"
	"github.com/garesbzh/carte/backend-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChartService struct {
	routesFn     func(ctx context.Context) ([]string, error)
	defaultFn    func(ctx context.Context) (models.RouteComparison, error)
	comparisonFn func(ctx context.Context, route string) (models.RouteComparison, error)
	tourismFn    func(ctx context.Context) (models.PieSeries, error)
}

func (m *mockChartService) Routes(ctx context.Context) ([]string, error) {
	if m.routesFn != nil {
		return m.routesFn(ctx)
	}
	return []string{"Rennes-Brest", "Rennes-Vannes"}, nil
}

func (m *mockChartService) DefaultComparison(ctx context.Context) (models.RouteComparison, error) {
	if m.defaultFn != nil {
		return m.defaultFn(ctx)
	}
	return m.Comparison(ctx, "Rennes-Brest")
}

func (m *mockChartService) Comparison(ctx context.Context, route string) (models.RouteComparison, error) {
	if m.comparisonFn != nil {
		return m.comparisonFn(ctx, route)
	}
	return models.RouteComparison{Region: "bretagne", Route: route, DistanceKm: 245, TrainCO2Grams: 7105, CarCO2Grams: 47530}, nil
}

func (m *mockChartService) Tourism(ctx context.Context) (models.PieSeries, error) {
	if m.tourismFn != nil {
		return m.tourismFn(ctx)
	}
	return models.PieSeries{Labels: []string{"Finistère", "Morbihan"}, Values: []float64{31.5, 24}}, nil
}

func TestChartsHandler_HandleRequest(t *testing.T) {
	t.Parallel()

	unavailable := errors.New("fetching route dataset: unexpected HTTP status 500")

	tests := []struct {
		name           string
		params         map[string]string
		service        *mockChartService
		expectedStatus int
		check          func(*testing.T, string)
	}{
		{
			name:           "routes with default comparison",
			service:        &mockChartService{},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body string) {
				var resp api.RoutesResponse
				require.NoError(t, json.Unmarshal([]byte(body), &resp))
				assert.Equal(t, "routes", resp.ResponseType)
				assert.Equal(t, []string{"Rennes-Brest", "Rennes-Vannes"}, resp.Routes)
				assert.Equal(t, "Rennes-Brest", resp.Comparison.Route)
			},
		},
		{
			name:           "comparison for a route",
			params:         map[string]string{"route": "Rennes-Vannes"},
			service:        &mockChartService{},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body string) {
				var resp api.ComparisonResponse
				require.NoError(t, json.Unmarshal([]byte(body), &resp))
				assert.Equal(t, "comparison", resp.ResponseType)
				assert.Equal(t, "Rennes-Vannes", resp.Route)
				assert.Equal(t, 47530.0, resp.CarCO2Grams)
			},
		},
		{
			name:   "unknown route",
			params: map[string]string{"route": "Rennes-Paris"},
			service: &mockChartService{
				comparisonFn: func(_ context.Context, route string) (models.RouteComparison, error) {
					return models.RouteComparison{}, &chart.UnknownRouteError{Route: route}
				},
			},
			expectedStatus: http.StatusNotFound,
			check: func(t *testing.T, body string) {
				assert.Contains(t, body, "unknown route: Rennes-Paris")
			},
		},
		{
			name:   "route dataset unavailable",
			params: map[string]string{"route": "Rennes-Brest"},
			service: &mockChartService{
				comparisonFn: func(context.Context, string) (models.RouteComparison, error) {
					return models.RouteComparison{}, unavailable
				},
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name: "routes unavailable",
			service: &mockChartService{
				routesFn: func(context.Context) ([]string, error) {
					return nil, unavailable
				},
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name: "default comparison unavailable",
			service: &mockChartService{
				defaultFn: func(context.Context) (models.RouteComparison, error) {
					return models.RouteComparison{}, errors.New("route dataset is empty")
				},
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "tourism series",
			params:         map[string]string{"tourism": ""},
			service:        &mockChartService{},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body string) {
				var resp api.TourismResponse
				require.NoError(t, json.Unmarshal([]byte(body), &resp))
				assert.Equal(t, "tourism", resp.ResponseType)
				assert.Equal(t, []string{"Finistère", "Morbihan"}, resp.Labels)
				assert.Equal(t, []float64{31.5, 24}, resp.Values)
			},
		},
		{
			name:   "tourism unavailable",
			params: map[string]string{"tourism": "1"},
			service: &mockChartService{
				tourismFn: func(context.Context) (models.PieSeries, error) {
					return models.PieSeries{}, unavailable
				},
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewChartsHandler(tt.service)
			got, err := h.HandleRequest(context.Background(), request(tt.params))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, got.StatusCode)
			if tt.check != nil {
				tt.check(t, got.Body)
			}
		})
	}
}
