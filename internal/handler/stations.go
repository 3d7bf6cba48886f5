package handler

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/garesbzh/carte/backend-go/internal/api"
	"github.com/garesbzh/carte/backend-go/internal/models"
	"github.com/garesbzh/carte/backend-go/internal/session"
	"github.com/garesbzh/carte/backend-go/internal/station"
	"github.com/rs/zerolog/log"
)

const (
	dataUnavailableMessage = "Impossible de charger les données des gares"
	invalidChoiceMessage   = "Veuillez choisir une gare valide."
)

// StationsHandler serves the station menu and selection events. The
// dataset is loaded once; if that fails the session stays uninitialized.
// The load is detached from the first caller's cancellation so a dropped
// request cannot fail it for everyone.
type StationsHandler struct {
	loader  models.StationLoader
	once    sync.Once
	session *session.Session
	loadErr error
}

func NewStationsHandler(loader models.StationLoader) *StationsHandler {
	return &StationsHandler{
		loader: loader,
	}
}

func (h *StationsHandler) getSession(ctx context.Context) (*session.Session, error) {
	h.once.Do(func() {
		stations, err := h.loader.Load(context.WithoutCancel(ctx))
		if err != nil {
			log.Error().Err(err).Msg("Error loading station dataset")
			h.loadErr = err
			return
		}
		h.session = session.New(station.NewSelector(stations))
	})
	return h.session, h.loadErr
}

func (h *StationsHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	params := request.QueryStringParameters

	sess, err := h.getSession(ctx)
	if err != nil {
		return api.Error(dataUnavailableMessage, http.StatusServiceUnavailable)
	}

	if _, ok := params["index"]; ok {
		index, err := api.ParseIndex(params, "index")
		if err != nil {
			return api.Error(invalidChoiceMessage, http.StatusBadRequest)
		}
		view, err := sess.OnStationChosen(index)
		return h.selectionResponse(view, err)
	}

	if stationID, ok := params["stationId"]; ok {
		view, err := sess.OnMapMarkerClicked(stationID)
		return h.selectionResponse(view, err)
	}

	if stationID, ok := params["nearbyId"]; ok {
		view, err := sess.OnNearbyCardClicked(stationID)
		return h.selectionResponse(view, err)
	}

	lat, lon, hasCoords, err := api.ParseCoordinates(params)
	if err != nil {
		return api.Error(err.Error(), http.StatusBadRequest)
	}
	if hasCoords {
		limit := api.ParseLimit(params, station.NearestCount)
		nearest, err := sess.Selector().NearestTo(lat, lon, limit)
		if err != nil {
			return api.Error(err.Error(), http.StatusBadRequest)
		}
		return api.Success(api.NewNearestResponse(lat, lon, nearest))
	}

	return api.Success(api.NewStationsResponse(sess.Menu(), sess.Selector().Stations()))
}

func (h *StationsHandler) selectionResponse(view session.View, err error) (events.APIGatewayProxyResponse, error) {
	if err != nil {
		var invalid *station.InvalidSelectionError
		var unknown *station.UnknownStationError
		switch {
		case errors.As(err, &invalid):
			return api.Error(invalidChoiceMessage, http.StatusBadRequest)
		case errors.As(err, &unknown):
			return api.Error("Station not found", http.StatusNotFound)
		default:
			log.Error().Err(err).Msg("Error selecting station")
			return api.Error("Error selecting station", http.StatusInternalServerError)
		}
	}
	return api.Success(api.NewSelectionResponse(view))
}
