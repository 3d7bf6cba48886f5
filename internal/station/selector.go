package station

import (
	"fmt"
	"sort"
	"sync"

	"github.com/garesbzh/carte/backend-go/internal/models"
	"github.com/rs/zerolog/log"
)

// NearestCount is the length of a nearest list.
const NearestCount = 4

// Selector owns the session's station sequence and the current selection.
// A fresh dataset requires a fresh Selector.
type Selector struct {
	stations []models.Station
	byID     map[string]int
	selected *models.Station
	mu       sync.RWMutex
}

// NewSelector retains a copy of stations; their order is the tie-break and
// display order for everything derived from the selector.
func NewSelector(stations []models.Station) *Selector {
	s := &Selector{
		stations: make([]models.Station, len(stations)),
		byID:     make(map[string]int, len(stations)),
	}
	copy(s.stations, stations)
	for i, st := range s.stations {
		if _, dup := s.byID[st.ID]; dup {
			log.Warn().Str("station_id", st.ID).Msg("Duplicate station ID, keeping first")
			continue
		}
		s.byID[st.ID] = i
	}
	return s
}

// Select makes station the current selection and ranks the other stations
// by distance. A station outside the dataset is still accepted.
func (s *Selector) Select(station models.Station) models.SelectionResult {
	member := s.isMember(station)
	if !member {
		log.Warn().
			Str("station_id", station.ID).
			Str("station_name", station.Name).
			Msg("Selected station is not part of the loaded dataset")
	}

	nearest := s.rank(station.Latitude, station.Longitude, NearestCount, func(candidate models.Station) bool {
		if member {
			return candidate.ID == station.ID
		}
		return candidate.Name == station.Name
	})

	s.mu.Lock()
	selected := station
	s.selected = &selected
	s.mu.Unlock()

	return models.SelectionResult{
		Selected: station,
		Nearest:  nearest,
	}
}

// NearestTo ranks all stations by distance to an arbitrary point.
func (s *Selector) NearestTo(lat, lon float64, limit int) ([]models.NearbyStation, error) {
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("invalid latitude: %f", lat)
	}
	if lon < -180 || lon > 180 {
		return nil, fmt.Errorf("invalid longitude: %f", lon)
	}
	if limit <= 0 {
		limit = NearestCount
	}
	return s.rank(lat, lon, limit, nil), nil
}

func (s *Selector) rank(lat, lon float64, limit int, exclude func(models.Station) bool) []models.NearbyStation {
	candidates := make([]models.NearbyStation, 0, len(s.stations))
	for _, st := range s.stations {
		if exclude != nil && exclude(st) {
			continue
		}
		candidates = append(candidates, models.NearbyStation{
			Station:    st,
			DistanceKm: DistanceKm(lat, lon, st.Latitude, st.Longitude),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].DistanceKm < candidates[j].DistanceKm
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

func (s *Selector) isMember(station models.Station) bool {
	i, ok := s.byID[station.ID]
	if !ok {
		return false
	}
	st := s.stations[i]
	return st.Name == station.Name && st.Latitude == station.Latitude && st.Longitude == station.Longitude
}

// Selected returns the current selection, if any
func (s *Selector) Selected() (models.Station, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.selected == nil {
		return models.Station{}, false
	}
	return *s.selected, true
}

// Stations returns the station sequence in insertion order
func (s *Selector) Stations() []models.Station {
	result := make([]models.Station, len(s.stations))
	copy(result, s.stations)
	return result
}

func (s *Selector) Len() int {
	return len(s.stations)
}

// StationAt returns the station at a menu position
func (s *Selector) StationAt(index int) (models.Station, error) {
	if index < 0 || index >= len(s.stations) {
		return models.Station{}, &InvalidSelectionError{Index: index, Count: len(s.stations)}
	}
	return s.stations[index], nil
}

// FindStation looks a station up by ID
func (s *Selector) FindStation(id string) (models.Station, error) {
	i, ok := s.byID[id]
	if !ok {
		return models.Station{}, &UnknownStationError{ID: id}
	}
	return s.stations[i], nil
}
