package main

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/garesbzh/carte/backend-go/internal/bootstrap"
	"github.com/garesbzh/carte/backend-go/internal/config"
	"github.com/rs/zerolog/log"
)

type RequestHandler interface {
	HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)
}

var (
	lambdaStart   = lambda.Start
	chartsHandler RequestHandler
	setupOnce     sync.Once
)

func setup() {
	setupOnce.Do(func() {
		cfg := config.LoadFromEnv()
		cfg.InitializeLogging()

		chartsHandler = bootstrap.NewChartsHandler(context.Background(), cfg, config.GetCacheConfig())
	})
}

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log.Debug().
		Str("request_id", request.RequestContext.RequestID).
		Interface("params", request.QueryStringParameters).
		Msg("Handling charts request")
	return chartsHandler.HandleRequest(ctx, request)
}

func main() {
	setup()
	lambdaStart(handleRequest)
}
