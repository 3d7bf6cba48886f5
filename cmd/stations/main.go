package main

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/garesbzh/carte/backend-go/internal/bootstrap"
	"github.com/garesbzh/carte/backend-go/internal/config"
	"github.com/garesbzh/carte/backend-go/internal/handler"
	"github.com/rs/zerolog/log"
)

// RequestHandler is the Lambda-facing surface of the stations handler
type RequestHandler interface {
	HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)
}

var _ RequestHandler = (*handler.StationsHandler)(nil)

var (
	lambdaStart     = lambda.Start // Allow mocking of lambda.Start in tests
	stationsHandler RequestHandler
	setupOnce       sync.Once
)

func setup() {
	setupOnce.Do(func() {
		cfg := config.LoadFromEnv()
		cfg.InitializeLogging()
		log.Info().Str("env", cfg.Environment).Msg("Environment")

		stationsHandler = bootstrap.NewStationsHandler(context.Background(), cfg, config.GetCacheConfig())
	})
}

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log.Debug().
		Str("request_id", request.RequestContext.RequestID).
		Interface("params", request.QueryStringParameters).
		Msg("Handling stations request")
	return stationsHandler.HandleRequest(ctx, request)
}

func main() {
	setup()
	lambdaStart(handleRequest)
}
