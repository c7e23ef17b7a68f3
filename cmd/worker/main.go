package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"

	"github.com/imrishuroy/storefront-checkout/internal/attempts"
	"github.com/imrishuroy/storefront-checkout/internal/aws"
	"github.com/imrishuroy/storefront-checkout/internal/config"
	"github.com/imrishuroy/storefront-checkout/internal/logger"
)

const serviceName = "storefront-worker"

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: serviceName}).Error(ctx, "failed to load config", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})

	clients, err := aws.NewAWSClients(ctx, cfg.AWS)
	if err != nil {
		log.Error(ctx, "failed to init aws clients", err)
		os.Exit(1)
	}
	p := NewProcessor(
		attempts.NewStore(clients.DynamoDB, cfg.Checkout.AttemptsTable),
		aws.NewMetrics(clients.CloudWatch, cfg.Checkout.MetricNamespace),
		log,
	)

	// RUN_LOCAL=true feeds one event from LOCAL_SQS_BODY instead of starting the lambda runtime.
	if cfg.App.RunLocal {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			body = `{"event_type":"checkout.succeeded","attempt_id":"local-attempt-1","idempotency_key":"local-key-1"}`
		}
		resp, _ := p.Handle(ctx, events.SQSEvent{Records: []events.SQSMessage{{MessageId: "local-1", Body: body}}})
		if len(resp.BatchItemFailures) > 0 {
			log.Error(ctx, "local message failed", nil)
			os.Exit(1)
		}
		return
	}

	lambda.Start(p.Handle)
}
