// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"elevate-workers/internal/common/auth"
	"elevate-workers/internal/common/aws"
	"elevate-workers/internal/common/camunda"
	"elevate-workers/internal/common/config"
	"elevate-workers/internal/common/database"
	"elevate-workers/internal/common/logger"
	"elevate-workers/internal/common/observability"
	"elevate-workers/internal/profiletest"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	zapLog.Info("Starting worker manager...", zap.String("environment", cfg.App.Environment))

	var obs *observability.Observability
	if cfg.Observability.TracingEnabled {
		opts := observability.Options{SampleRate: cfg.Observability.TraceSampleRate}
		if endpoint := cfg.Observability.JaegerEndpoint; endpoint != "" {
			exp, err := observability.NewJaegerExporter(endpoint)
			if err != nil {
				zapLog.Fatal("jaeger exporter setup failed", zap.Error(err))
			}
			opts.SpanProcessors = append(opts.SpanProcessors, sdktrace.NewBatchSpanProcessor(exp))
		}
		obs, err = observability.New(cfg.Observability.ServiceName, opts)
		if err != nil {
			zapLog.Fatal("observability setup failed", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Elasticsearch ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Redis ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Questionnaire ---
	questionnaire, err := profiletest.Load(cfg.ProfileTest.QuestionnairePath)
	if err != nil {
		zapLog.Fatal("questionnaire load failed", zap.Error(err))
	}
	zapLog.Info("Questionnaire loaded", zap.Int("questions", len(questionnaire.Questions())))

	// --- External services ---
	deps := &workerDeps{
		cfg:           cfg,
		db:            pg.DB,
		redis:         redis.Client,
		es:            esClient.Client,
		questionnaire: questionnaire,
		sessions: auth.NewSessionClient(cfg.APIs.Auth.BaseURL, cfg.APIs.Auth.APIKey,
			config.GetDuration(cfg.APIs.Auth.Timeout)),
	}

	awsCfg := cfg.Integrations.AWS
	if awsCfg.SES.Enabled {
		ses, err := aws.NewSESClient(ctx, awsCfg.Region, awsCfg.SES.FromEmail)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		deps.mailer = ses
	}
	if awsCfg.SNS.Enabled {
		sns, err := aws.NewSNSClient(ctx, awsCfg.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		deps.publisher = sns
	}
	zapLog.Info("All external service clients initialized")

	// --- Workers ---
	checkRegistry(cfg.Registry.Path, log)
	workers, err := startWorkers(zeebe.GetClient(), deps, obs, log)
	if err != nil {
		zapLog.Fatal("worker registration failed", zap.Error(err))
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Ops server ---
	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: newOpsRouter(map[string]readinessCheck{
			"zeebe":         zeebe.HealthCheck,
			"postgres":      pg.Ping,
			"redis":         redis.Ping,
			"elasticsearch": esClient.Ping,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ops server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		zapLog.Info("Shutdown signal received, stopping workers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
		defer cancel()

		for _, w := range workers {
			w.Stop()
		}
		shutdownErr := srv.Shutdown(shutdownCtx)
		if obs != nil {
			shutdownErr = errors.Join(shutdownErr, obs.Shutdown(shutdownCtx))
		}
		return errors.Join(shutdownErr, zeebe.Close())
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("Worker manager stopped with error", zap.Error(err))
		return
	}
	zapLog.Info("Worker manager stopped gracefully")
}
