package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/imrishuroy/storefront-checkout/internal/attempts"
	"github.com/imrishuroy/storefront-checkout/internal/aws"
	"github.com/imrishuroy/storefront-checkout/internal/backend"
	"github.com/imrishuroy/storefront-checkout/internal/cart"
	"github.com/imrishuroy/storefront-checkout/internal/cartcache"
	"github.com/imrishuroy/storefront-checkout/internal/checkout"
	"github.com/imrishuroy/storefront-checkout/internal/config"
	"github.com/imrishuroy/storefront-checkout/internal/currency"
	"github.com/imrishuroy/storefront-checkout/internal/handlers"
	"github.com/imrishuroy/storefront-checkout/internal/i18n"
	"github.com/imrishuroy/storefront-checkout/internal/idempotency"
	"github.com/imrishuroy/storefront-checkout/internal/ledger"
	"github.com/imrishuroy/storefront-checkout/internal/logger"
	"github.com/imrishuroy/storefront-checkout/internal/session"
)

const (
	serviceName   = "storefront-api"
	sweepInterval = time.Minute
)

func setupRouter(log *logger.Logger, cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), handlers.RequestLogger(log))
	handlers.RegisterRoutes(r, cfg)
	return r
}

func newProcessor(cfg *config.Config, client *backend.Client) checkout.PaymentProcessor {
	if cfg.Checkout.PaymentMode == config.PaymentModeBackend {
		return client
	}
	return checkout.SimulatedProcessor{Delay: cfg.Checkout.SimulatedDelay}
}

func newLedger(ctx context.Context, cfg *config.Config, log *logger.Logger) (*ledger.Recorder, error) {
	clients, err := aws.NewAWSClients(ctx, cfg.AWS)
	if err != nil {
		return nil, err
	}
	return ledger.NewRecorder(
		attempts.NewStore(clients.DynamoDB, cfg.Checkout.AttemptsTable),
		idempotency.NewStore(clients.DynamoDB, cfg.Checkout.IdempotencyTbl, cfg.Checkout.IdempotencyTTL),
		aws.NewPublisher(clients.SQS, cfg.Checkout.QueueURL),
		aws.NewMetrics(clients.CloudWatch, cfg.Checkout.MetricNamespace),
		log,
	), nil
}

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
	if cfg.App.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	var cache cart.Cache
	if cfg.Redis.Enabled() {
		client, err := cartcache.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn(ctx, "redis unavailable, cart cache disabled", err)
		} else {
			cache = cartcache.NewRedisCache(client, cfg.Redis.CartTTL)
		}
	}

	backendClient := backend.New(cfg.Backend)

	var recorder checkout.Recorder
	var replayer handlers.Replayer
	if cfg.Checkout.LedgerEnabled {
		rec, err := newLedger(ctx, cfg, log)
		if err != nil {
			log.Error(ctx, "failed to init aws clients", err)
			os.Exit(1)
		}
		recorder, replayer = rec, rec
	}

	sessions := session.NewManager(session.Options{
		Backend:       backendClient,
		Cache:         cache,
		Processor:     newProcessor(cfg, backendClient),
		Recorder:      recorder,
		Logger:        log,
		Idle:          cfg.App.SessionIdle,
		RedirectDelay: cfg.Checkout.RedirectDelay,
		RedirectPath:  cfg.Checkout.RedirectPath,
	})
	go sessions.Run(ctx, sweepInterval)

	r := setupRouter(log, handlers.HandlerConfig{
		Sessions:      sessions,
		Catalog:       i18n.MustNew(),
		Formatter:     &currency.Default,
		Replayer:      replayer,
		Logger:        log,
		DefaultLocale: cfg.App.DefaultLocale,
		SecureCookies: cfg.App.IsProd(),
		CookieMaxAge:  int(cfg.App.SessionIdle.Seconds()),
	})

	// RUN_LOCAL=true serves plain HTTP for development.
	if cfg.App.RunLocal {
		addr := ":" + cfg.App.Port
		log.Info(log.WithField(ctx, "addr", addr), "running local server")
		if err := r.Run(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "failed to run local server", err)
			os.Exit(1)
		}
		return
	}

	// Sessions live in this container's memory; the function must run with
	// reserved concurrency 1.
	adapter := ginadapter.New(r)
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
