package chart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/garesbzh/carte/backend-go/internal/models"
)

// OrderedValues is a JSON object of numbers that remembers key order.
type OrderedValues struct {
	Keys   []string
	Values map[string]float64
}

func (o *OrderedValues) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	o.Keys = nil
	o.Values = make(map[string]float64)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var v float64
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("value of %q: %w", key, err)
		}
		if _, dup := o.Values[key]; !dup {
			o.Keys = append(o.Keys, key)
		}
		o.Values[key] = v
	}
	_, err = dec.Token()
	return err
}

// EmissionFactors are grams of CO2 per kilometer
type EmissionFactors struct {
	Train float64 `json:"train"`
	Car   float64 `json:"voiture"`
}

type routeRegion struct {
	Routes  OrderedValues   `json:"trajets_exemples"`
	Factors EmissionFactors `json:"facteurs_emission"`
}

// RouteDataset is the sample-route emissions dataset of one region
type RouteDataset struct {
	Region  string
	Routes  OrderedValues
	Factors EmissionFactors
}

// UnknownRouteError is returned for a route not in the dataset
type UnknownRouteError struct {
	Route string
}

func (e *UnknownRouteError) Error() string {
	return fmt.Sprintf("unknown route: %s", e.Route)
}

// DecodeRouteDataset reads the region's block of a route dataset document
func DecodeRouteDataset(data []byte, region string) (*RouteDataset, error) {
	var doc map[string]routeRegion
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding route dataset: %w", err)
	}
	r, ok := doc[region]
	if !ok {
		return nil, fmt.Errorf("route dataset has no region %q", region)
	}
	return &RouteDataset{Region: region, Routes: r.Routes, Factors: r.Factors}, nil
}

// RouteNames lists the routes in dataset order
func (d *RouteDataset) RouteNames() []string {
	names := make([]string, len(d.Routes.Keys))
	copy(names, d.Routes.Keys)
	return names
}

// DefaultRoute is the first route, shown before any choice is made
func (d *RouteDataset) DefaultRoute() (string, bool) {
	if len(d.Routes.Keys) == 0 {
		return "", false
	}
	return d.Routes.Keys[0], true
}

// Compare computes the train and car emissions for a route, rounded to
// whole grams and kilometers.
func (d *RouteDataset) Compare(route string) (models.RouteComparison, error) {
	distance, ok := d.Routes.Values[route]
	if !ok {
		return models.RouteComparison{}, &UnknownRouteError{Route: route}
	}
	return models.RouteComparison{
		Region:        d.Region,
		Route:         route,
		DistanceKm:    round(distance),
		TrainCO2Grams: round(distance * d.Factors.Train),
		CarCO2Grams:   round(distance * d.Factors.Car),
	}, nil
}

// CompareAll computes every route, in dataset order
func (d *RouteDataset) CompareAll() []models.RouteComparison {
	out := make([]models.RouteComparison, 0, len(d.Routes.Keys))
	for _, name := range d.Routes.Keys {
		c, _ := d.Compare(name)
		out = append(out, c)
	}
	return out
}

// round matches the dashboard's rounding: halves go up.
func round(v float64) float64 {
	return math.Floor(v + 0.5)
}

type tourismRegion struct {
	Shares OrderedValues `json:"tourisme_ferroviaire"`
}

// TourismDataset is the rail-tourism share per department of one region
type TourismDataset struct {
	Region string
	Shares OrderedValues
}

func DecodeTourismDataset(data []byte, region string) (*TourismDataset, error) {
	var doc map[string]tourismRegion
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding tourism dataset: %w", err)
	}
	r, ok := doc[region]
	if !ok {
		return nil, fmt.Errorf("tourism dataset has no region %q", region)
	}
	return &TourismDataset{Region: region, Shares: r.Shares}, nil
}

// Series returns the pie labels and values in dataset order
func (d *TourismDataset) Series() models.PieSeries {
	s := models.PieSeries{
		Labels: make([]string, len(d.Shares.Keys)),
		Values: make([]float64, len(d.Shares.Keys)),
	}
	for i, k := range d.Shares.Keys {
		s.Labels[i] = k
		s.Values[i] = d.Shares.Values[k]
	}
	return s
}
