package api

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/garesbzh/carte/backend-go/internal/models"
	"github.com/garesbzh/carte/backend-go/internal/session"
)

type APIResponse struct {
	ResponseType string `json:"responseType"`
}

func (r APIResponse) GetResponseType() string {
	return r.ResponseType
}

type StationsResponse struct {
	APIResponse
	Menu     []session.MenuItem `json:"menu"`
	Stations []models.Station   `json:"stations"`
}

type SelectionResponse struct {
	APIResponse
	session.View
}

type NearestResponse struct {
	APIResponse
	Latitude  float64                `json:"latitude"`
	Longitude float64                `json:"longitude"`
	Nearest   []models.NearbyStation `json:"nearest"`
}

type RoutesResponse struct {
	APIResponse
	Routes     []string               `json:"routes"`
	Comparison models.RouteComparison `json:"comparison"`
}

type ComparisonResponse struct {
	APIResponse
	models.RouteComparison
}

type TourismResponse struct {
	APIResponse
	models.PieSeries
}

type ErrorResponse struct {
	APIResponse
	Error string `json:"error"`
}

func NewStationsResponse(menu []session.MenuItem, stations []models.Station) *StationsResponse {
	return &StationsResponse{
		APIResponse: APIResponse{ResponseType: "stations"},
		Menu:        menu,
		Stations:    stations,
	}
}

func NewSelectionResponse(view session.View) *SelectionResponse {
	return &SelectionResponse{
		APIResponse: APIResponse{ResponseType: "selection"},
		View:        view,
	}
}

func NewNearestResponse(lat, lon float64, nearest []models.NearbyStation) *NearestResponse {
	return &NearestResponse{
		APIResponse: APIResponse{ResponseType: "nearest"},
		Latitude:    lat,
		Longitude:   lon,
		Nearest:     nearest,
	}
}

func NewRoutesResponse(routes []string, comparison models.RouteComparison) *RoutesResponse {
	return &RoutesResponse{
		APIResponse: APIResponse{ResponseType: "routes"},
		Routes:      routes,
		Comparison:  comparison,
	}
}

func NewComparisonResponse(c models.RouteComparison) *ComparisonResponse {
	return &ComparisonResponse{
		APIResponse:     APIResponse{ResponseType: "comparison"},
		RouteComparison: c,
	}
}

func NewTourismResponse(s models.PieSeries) *TourismResponse {
	return &TourismResponse{
		APIResponse: APIResponse{ResponseType: "tourism"},
		PieSeries:   s,
	}
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		APIResponse: APIResponse{ResponseType: "error"},
		Error:       message,
	}
}

func headers() map[string]string {
	return map[string]string{
		"Content-Type":                "application/json",
		"Access-Control-Allow-Origin": "*",
	}
}

// Response helpers
func Success(body interface{}) (events.APIGatewayProxyResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return Error("Internal Server Error", http.StatusInternalServerError)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers(),
		Body:       string(jsonBody),
	}, nil
}

func Error(message string, statusCode int) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(NewErrorResponse(message))

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers(),
		Body:       string(body),
	}, nil
}

// ParseIndex reads a menu position. A missing or blank value yields -1
// (nothing chosen); anything else that is not an integer is an error.
func ParseIndex(params map[string]string, key string) (int, error) {
	raw := strings.TrimSpace(params[key])
	if raw == "" {
		return -1, nil
	}
	idx, err := strconv.Atoi(raw)
	if err != nil {
		return 0, InvalidIndexError{Value: raw}
	}
	return idx, nil
}

// ParseCoordinates reads lat/lon. ok is false when either is absent.
func ParseCoordinates(params map[string]string) (lat, lon float64, ok bool, err error) {
	latStr, hasLat := params["lat"]
	lonStr, hasLon := params["lon"]

	if !hasLat || !hasLon {
		return 0, 0, false, nil
	}

	lat, err = strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, true, InvalidCoordinatesError{}
	}

	lon, err = strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, true, InvalidCoordinatesError{}
	}

	if math.IsNaN(lat) || math.IsNaN(lon) {
		return 0, 0, true, InvalidCoordinatesError{}
	}

	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, true, InvalidCoordinatesError{}
	}

	return lat, lon, true, nil
}

// ParseLimit reads an optional positive limit
func ParseLimit(params map[string]string, defaultLimit int) int {
	if limitStr, ok := params["limit"]; ok {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultLimit
}

type InvalidCoordinatesError struct{}

func (e InvalidCoordinatesError) Error() string {
	return "Invalid coordinates"
}

type InvalidIndexError struct {
	Value string
}

func (e InvalidIndexError) Error() string {
	return fmt.Sprintf("Invalid station index: %q", e.Value)
}
