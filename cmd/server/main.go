// Command server runs the stations and charts handlers behind a plain HTTP
// server for local development.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/garesbzh/carte/backend-go/internal/bootstrap"
	"github.com/garesbzh/carte/backend-go/internal/config"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type lambdaHandler func(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// toProxyRequest converts an HTTP request into the event API Gateway would send.
// The request ID comes from X-Request-Id when the caller sets one.
func toProxyRequest(r *http.Request) (events.APIGatewayProxyRequest, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return events.APIGatewayProxyRequest{}, err
	}

	params := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	headers := make(map[string]string)
	for key := range r.Header {
		headers[key] = r.Header.Get(key)
	}

	requestID := r.Header.Get("X-Request-Id")
	if requestID == "" {
		requestID = uuid.New().String()
	}

	return events.APIGatewayProxyRequest{
		HTTPMethod:            r.Method,
		Path:                  r.URL.Path,
		QueryStringParameters: params,
		Headers:               headers,
		Body:                  string(body),
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID: requestID,
		},
	}, nil
}

func adapt(h lambdaHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event, err := toProxyRequest(r)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}

		w.Header().Set("X-Request-Id", event.RequestContext.RequestID)
		resp, err := h(r.Context(), event)
		if err != nil {
			log.Error().Err(err).
				Str("path", r.URL.Path).
				Str("request_id", event.RequestContext.RequestID).
				Msg("Handler error")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if _, err := io.WriteString(w, resp.Body); err != nil {
			log.Error().Err(err).Msg("Error writing response")
		}
	}
}

func newMux(stations, charts lambdaHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/stations", adapt(stations))
	mux.HandleFunc("/api/charts", adapt(charts))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	})
	return mux
}

func main() {
	// a missing .env file is fine
	_ = godotenv.Load()

	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()
	cacheCfg := config.GetCacheConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stationsHandler := bootstrap.NewStationsHandler(ctx, cfg, cacheCfg)
	chartsHandler := bootstrap.NewChartsHandler(ctx, cfg, cacheCfg)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newMux(stationsHandler.HandleRequest, chartsHandler.HandleRequest),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("Shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error during shutdown")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server starting")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
