package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/garesbzh/carte/backend-go/internal/api"
	"github.com/garesbzh/carte/backend-go/internal/chart"
	"github.com/garesbzh/carte/backend-go/internal/models"
)

// ChartService is the chart data source used by ChartsHandler
type ChartService interface {
	Routes(ctx context.Context) ([]string, error)
	DefaultComparison(ctx context.Context) (models.RouteComparison, error)
	Comparison(ctx context.Context, route string) (models.RouteComparison, error)
	Tourism(ctx context.Context) (models.PieSeries, error)
}

var _ ChartService = (*chart.Service)(nil)

type ChartsHandler struct {
	charts ChartService
}

func NewChartsHandler(charts ChartService) *ChartsHandler {
	return &ChartsHandler{charts: charts}
}

func (h *ChartsHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	params := request.QueryStringParameters

	if _, ok := params["tourism"]; ok {
		series, err := h.charts.Tourism(ctx)
		if err != nil {
			return api.Error("Tourism data unavailable", http.StatusServiceUnavailable)
		}
		return api.Success(api.NewTourismResponse(series))
	}

	if route, ok := params["route"]; ok {
		comparison, err := h.charts.Comparison(ctx, route)
		if err != nil {
			var unknown *chart.UnknownRouteError
			if errors.As(err, &unknown) {
				return api.Error(err.Error(), http.StatusNotFound)
			}
			return api.Error("Route data unavailable", http.StatusServiceUnavailable)
		}
		return api.Success(api.NewComparisonResponse(comparison))
	}

	routes, err := h.charts.Routes(ctx)
	if err != nil {
		return api.Error("Route data unavailable", http.StatusServiceUnavailable)
	}
	comparison, err := h.charts.DefaultComparison(ctx)
	if err != nil {
		return api.Error("Route data unavailable", http.StatusServiceUnavailable)
	}
	return api.Success(api.NewRoutesResponse(routes, comparison))
}
