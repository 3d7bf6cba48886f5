// Package session maps user interaction events onto station selection and
// builds the view models the map, panel and nearby list render.
package session

import (
	"fmt"
	"sync"

	"github.com/garesbzh/carte/backend-go/internal/models"
	"github.com/garesbzh/carte/backend-go/internal/station"
	"github.com/rs/zerolog/log"
)

// SelectedZoom is the map zoom level used when focusing a station.
const SelectedZoom = 10

type MenuItem struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

type Panel struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Impact      string  `json:"impact"`
	ImageURL    *string `json:"imageUrl,omitempty"`
	ImageAlt    string  `json:"imageAlt,omitempty"`
}

// MapFocus tells the map where to pan and which marker carries the open
// label. At most one label is open; ClosedLabelStationID is the one the
// new selection replaced.
type MapFocus struct {
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`
	Zoom                 int     `json:"zoom"`
	LabelStationID       string  `json:"labelStationId,omitempty"`
	LabelText            string  `json:"labelText"`
	ClosedLabelStationID string  `json:"closedLabelStationId,omitempty"`
}

type NearbyCard struct {
	StationID     string  `json:"stationId"`
	Name          string  `json:"name"`
	DistanceKm    float64 `json:"distanceKm"`
	DistanceLabel string  `json:"distanceLabel"`
	ImageURL      *string `json:"imageUrl,omitempty"`
}

// View is everything the front end redraws after a selection
type View struct {
	Selection models.SelectionResult `json:"selection"`
	Panel     Panel                  `json:"panel"`
	Map       MapFocus               `json:"map"`
	Nearby    []NearbyCard           `json:"nearby"`
}

// Session is the per-dataset interaction state. Handlers share one Session
// by reference.
type Session struct {
	selector  *station.Selector
	openLabel string
	mu        sync.Mutex
}

func New(selector *station.Selector) *Session {
	return &Session{selector: selector}
}

// Selector exposes the underlying selector
func (s *Session) Selector() *station.Selector {
	return s.selector
}

// Menu lists the stations keyed by position, in dataset order
func (s *Session) Menu() []MenuItem {
	stations := s.selector.Stations()
	items := make([]MenuItem, len(stations))
	for i, st := range stations {
		items[i] = MenuItem{Index: i, Label: st.Name}
	}
	return items
}

// OnStationChosen handles a menu confirmation. A negative index means
// nothing was chosen. Invalid choices leave the selection unchanged.
func (s *Session) OnStationChosen(index int) (View, error) {
	if index < 0 {
		return View{}, &station.InvalidSelectionError{Index: -1, Count: s.selector.Len()}
	}
	st, err := s.selector.StationAt(index)
	if err != nil {
		return View{}, err
	}
	return s.selectStation(st), nil
}

// OnMapMarkerClicked handles a click on a station marker
func (s *Session) OnMapMarkerClicked(stationID string) (View, error) {
	st, err := s.selector.FindStation(stationID)
	if err != nil {
		return View{}, err
	}
	return s.selectStation(st), nil
}

// OnNearbyCardClicked handles activation of a nearby card
func (s *Session) OnNearbyCardClicked(stationID string) (View, error) {
	return s.OnMapMarkerClicked(stationID)
}

// SelectRecord selects a station record the caller built itself. Records
// outside the dataset are accepted with a diagnostic.
func (s *Session) SelectRecord(st models.Station) View {
	return s.selectStation(st)
}

func (s *Session) selectStation(st models.Station) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.selector.Select(st)

	closed := s.openLabel
	if closed == st.ID {
		closed = ""
	}
	s.openLabel = st.ID

	log.Debug().
		Str("station_id", st.ID).
		Int("nearest_count", len(result.Nearest)).
		Msg("Station selected")

	return View{
		Selection: result,
		Panel:     buildPanel(st),
		Map: MapFocus{
			Latitude:             st.Latitude,
			Longitude:            st.Longitude,
			Zoom:                 SelectedZoom,
			LabelStationID:       st.ID,
			LabelText:            st.Name,
			ClosedLabelStationID: closed,
		},
		Nearby: buildNearby(result.Nearest),
	}
}

func buildPanel(st models.Station) Panel {
	p := Panel{
		Title:       fmt.Sprintf("Gare de la Ville de %s", st.Name),
		Description: st.Description,
		Impact:      st.ImpactText(),
		ImageURL:    st.ImageURL,
	}
	if st.ImageURL != nil {
		p.ImageAlt = fmt.Sprintf("Photo de %s", st.Name)
	}
	return p
}

func buildNearby(nearest []models.NearbyStation) []NearbyCard {
	cards := make([]NearbyCard, len(nearest))
	for i, n := range nearest {
		cards[i] = NearbyCard{
			StationID:     n.Station.ID,
			Name:          n.Station.Name,
			DistanceKm:    n.DistanceKm,
			DistanceLabel: fmt.Sprintf("%.1f km", n.DistanceKm),
			ImageURL:      n.Station.ImageURL,
		}
	}
	return cards
}
