package models

import "fmt"

// RouteComparison is the emissions and distance comparison for one sample route.
type RouteComparison struct {
	Region        string  `json:"region" dynamodbav:"region"`
	Route         string  `json:"route" dynamodbav:"route"`
	DistanceKm    float64 `json:"distanceKm" dynamodbav:"distanceKm"`
	TrainCO2Grams float64 `json:"trainCo2Grams" dynamodbav:"trainCo2Grams"`
	CarCO2Grams   float64 `json:"carCo2Grams" dynamodbav:"carCo2Grams"`
	LastUpdated   int64   `json:"-" dynamodbav:"lastUpdated"`
	TTL           int64   `json:"-" dynamodbav:"ttl"`
}

func (c *RouteComparison) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("region is required")
	}
	if c.Route == "" {
		return fmt.Errorf("route is required")
	}
	if c.DistanceKm < 0 {
		return fmt.Errorf("invalid distance: %f", c.DistanceKm)
	}
	return nil
}

// PieSeries holds ordered labels and their values for a share chart.
type PieSeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}
