package main

import (
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	httpclient "github.com/cyphera/remote-accounts/internal/client/http"
	"github.com/cyphera/remote-accounts/internal/client/relay"
	"github.com/cyphera/remote-accounts/internal/config"
	"github.com/cyphera/remote-accounts/internal/constants"
	"github.com/cyphera/remote-accounts/internal/logger"
	"go.uber.org/zap"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Warning: %v. Proceeding with environment variables.", err)
	}

	stage, err := config.Stage(os.Getenv)
	if err != nil {
		log.Fatal(err)
	}
	logger.InitLogger(stage)
	logger.Info("Lambda Cold Start: Initializing message processor", zap.String("stage", stage))
	defer func() { _ = logger.Sync() }()

	relayURL := os.Getenv("RELAY_URL")
	if relayURL == "" {
		logger.Fatal("RELAY_URL environment variable is required and not set")
	}

	opts := []httpclient.ClientOption{httpclient.WithTimeout(20 * time.Second)}
	if apiKey := os.Getenv("RELAY_API_KEY"); apiKey != "" {
		opts = append(opts, httpclient.WithDefaultHeader(constants.APIKeyHeader, apiKey))
	}
	app := NewApplication(relay.New(relayURL, opts...), logger.Log)

	lambda.Start(app.HandleSQSEvent)
}
