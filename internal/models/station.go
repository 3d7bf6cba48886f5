package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultImpactNote is shown when a station carries no impact text of its own.
const DefaultImpactNote = "Voyager en train, c’est réduire l’empreinte carbone 🌿"

// Station is a rail station of the active dataset. Stations are built once
// from the data source and never mutated afterwards.
type Station struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	ImageURL    *string `json:"imageUrl,omitempty"`
	Description string  `json:"description"`
	ImpactNote  *string `json:"impactNote,omitempty"`
}

// ImpactText returns the station's impact note, or the default one
func (s Station) ImpactText() string {
	if s.ImpactNote != nil && *s.ImpactNote != "" {
		return *s.ImpactNote
	}
	return DefaultImpactNote
}

func (s *Station) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("station ID is required")
	}
	if s.Latitude < -90 || s.Latitude > 90 {
		return fmt.Errorf("invalid latitude: %f", s.Latitude)
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		return fmt.Errorf("invalid longitude: %f", s.Longitude)
	}
	return nil
}

// OptionalText is an optional string field of a raw station record. Values
// that are not JSON strings are treated as absent.
type OptionalText struct {
	Value string
	Set   bool
}

func (o *OptionalText) UnmarshalJSON(data []byte) error {
	*o = OptionalText{}
	if len(data) == 0 || data[0] != '"' {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = s
	o.Set = true
	return nil
}

func (o OptionalText) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// NonEmpty reports whether the field holds a string with visible content.
func (o OptionalText) NonEmpty() bool {
	return o.Set && strings.TrimSpace(o.Value) != ""
}

// Ptr returns the value as a pointer, nil when absent or empty.
func (o OptionalText) Ptr() *string {
	if !o.Set || o.Value == "" {
		return nil
	}
	v := o.Value
	return &v
}

// StationRecord is one entry of the station data source, as published.
type StationRecord struct {
	Name         string       `json:"nom"`
	Latitude     float64      `json:"lat"`
	Longitude    float64      `json:"lon"`
	Image        OptionalText `json:"image"`
	Impact       OptionalText `json:"impact"`
	Description  OptionalText `json:"description"`
	Desc         OptionalText `json:"desc"`
	Resume       OptionalText `json:"resume"`
	ResumeAccent OptionalText `json:"résumé"`
	Presentation OptionalText `json:"presentation"`
	Texte        OptionalText `json:"texte"`
	TexteCourt   OptionalText `json:"texteCourt"`
	Apercu       OptionalText `json:"apercu"`
	ApercuCourt  OptionalText `json:"apercu_court"`
}

// DescriptionField names one candidate description field of a record.
type DescriptionField struct {
	Key string
	Get func(r *StationRecord) OptionalText
}

// DescriptionFields is the precedence order used to resolve a station
// description. Callers depend on this order.
var DescriptionFields = []DescriptionField{
	{Key: "description", Get: func(r *StationRecord) OptionalText { return r.Description }},
	{Key: "desc", Get: func(r *StationRecord) OptionalText { return r.Desc }},
	{Key: "resume", Get: func(r *StationRecord) OptionalText { return r.Resume }},
	{Key: "résumé", Get: func(r *StationRecord) OptionalText { return r.ResumeAccent }},
	{Key: "presentation", Get: func(r *StationRecord) OptionalText { return r.Presentation }},
	{Key: "texte", Get: func(r *StationRecord) OptionalText { return r.Texte }},
	{Key: "texteCourt", Get: func(r *StationRecord) OptionalText { return r.TexteCourt }},
	{Key: "apercu", Get: func(r *StationRecord) OptionalText { return r.Apercu }},
	{Key: "apercu_court", Get: func(r *StationRecord) OptionalText { return r.ApercuCourt }},
}

// ResolveDescription returns the first candidate field that is non-empty
// after trimming, untrimmed, or "" when none is.
func (r *StationRecord) ResolveDescription() string {
	for _, f := range DescriptionFields {
		if v := f.Get(r); v.NonEmpty() {
			return v.Value
		}
	}
	return ""
}

// DecodeStationRecords decodes a station data-source document.
func DecodeStationRecords(data []byte) ([]StationRecord, error) {
	var records []StationRecord
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding station records: %w", err)
	}
	return records, nil
}

// NearbyStation is one entry of a nearest list.
type NearbyStation struct {
	Station    Station `json:"station"`
	DistanceKm float64 `json:"distanceKm"`
}

// SelectionResult is the outcome of selecting a station.
type SelectionResult struct {
	Selected Station         `json:"selected"`
	Nearest  []NearbyStation `json:"nearest"`
}
