package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"fieldtel/internal/authority"
	"fieldtel/internal/config"
	"fieldtel/internal/constants"
	"fieldtel/internal/ingest"
	"fieldtel/internal/logger"
	"fieldtel/internal/store"
	"fieldtel/pkg/bootstrap"
	"fieldtel/pkg/circuitbreaker"
	"fieldtel/pkg/health"
	"fieldtel/pkg/logging"
	"fieldtel/pkg/metrics"
	"fieldtel/pkg/migrations"
	"fieldtel/pkg/policy"
	"fieldtel/pkg/telemetry"
)

type App struct {
	*bootstrap.Base
	dbConnector *bootstrap.DatabaseConnector
	mongoClient *mongo.Client
	sqlDB       *sql.DB
	redis       *redis.Client
	repo        store.Repository
	relay       *ingest.Relay
	service     *ingest.Service
	server      *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName("ingest-service")
	}
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initStore(ctx); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	if err := a.InitBroker("ingest-service"); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	if err := a.initService(); err != nil {
		return fmt.Errorf("failed to initialize service: %w", err)
	}

	metrics.RegisterIngestMetrics()
	metrics.RegisterBrokerMetrics()
	if a.Config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	if err := a.initHTTPServer(); err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	return nil
}

func (a *App) initStore(ctx context.Context) error {
	var mongoDB *mongo.Database

	switch a.Config.Database.Driver {
	case "", "mongodb":
		client, err := a.dbConnector.InitMongoDB(ctx)
		if err != nil {
			return err
		}
		a.mongoClient = client

		dbName := a.Config.Database.MongoDB.Database
		if dbName == "" {
			dbName = constants.DefaultMongoDBName
		}
		mongoDB = client.Database(dbName)

		if a.Config.Database.RunMigrations {
			if err := migrations.EnsureMessageIndexes(ctx, mongoDB); err != nil {
				return fmt.Errorf("failed to ensure indexes: %w", err)
			}
		}
	case "postgres":
		db, err := a.dbConnector.InitPostgreSQL(ctx)
		if err != nil {
			return err
		}
		a.sqlDB = db

		if a.Config.Database.RunMigrations {
			path := a.Config.Database.Postgres.MigrationsPath
			if path == "" {
				path = constants.DefaultMigrationsPath
			}
			if err := migrations.RunPostgresMigrations(db, path); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}
	default:
		return fmt.Errorf("unknown store driver: %s", a.Config.Database.Driver)
	}

	repo, err := store.NewRepository(a.Config.Database, mongoDB, a.sqlDB)
	if err != nil {
		return err
	}
	a.repo = repo

	rdb, err := a.dbConnector.InitRedis(ctx)
	if err != nil {
		return err
	}
	a.redis = rdb

	return nil
}

func (a *App) initService() error {
	if err := config.ValidateAuthority(a.Config.Authority); err != nil {
		return fmt.Errorf("invalid authority configuration: %w", err)
	}

	var breaker *circuitbreaker.Wrapper
	if a.Config.CircuitBreaker.Enabled {
		breaker = circuitbreaker.NewWrapper(circuitbreaker.RatioConfig(
			"machine-authority",
			a.Config.CircuitBreaker.MinRequests,
			a.Config.CircuitBreaker.FailureRatio,
		))
		initCtx := logging.WithServiceName(context.Background(), "ingest-service")
		a.Logger.InfowCtx(initCtx, "Circuit breaker enabled for machine authority client")
	}

	validator := authority.NewClient(a.Config.Authority, breaker, a.Logger)

	var admission *policy.Policy
	if expr := a.Config.Ingest.PolicyExpression; expr != "" {
		compiled, err := policy.Compile(expr)
		if err != nil {
			return fmt.Errorf("failed to compile admission policy: %w", err)
		}
		admission = compiled
	}

	var cache ingest.SeenCache
	if a.redis != nil {
		cache = ingest.NewRedisSeenCache(a.redis, a.Config.Ingest.SeenCacheTTLSeconds)
	}
	guard := ingest.NewGuard(a.repo, cache, a.Logger)

	a.relay = ingest.NewRelay(a.Producer, a.Config.Broker.Kafka.OutputTopic, a.Logger)

	a.service = ingest.NewService(a.repo, validator, a.Config.Ingest.Whitelist, guard, a.relay, admission, a.Logger)
	return nil
}

func (a *App) initHTTPServer() error {
	mux := http.NewServeMux()

	healthRegistry := health.NewCheckerRegistry()
	if a.mongoClient != nil {
		healthRegistry.Register(health.NewMongoDBChecker(a.mongoClient))
	}
	if a.sqlDB != nil {
		healthRegistry.Register(health.NewPostgreSQLChecker(a.sqlDB))
	}
	if a.redis != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redis))
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		h := healthRegistry.Check(r.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		fmt.Fprintf(w, `{"status":"%s","timestamp":"%s"}`, h.Status, h.Timestamp.Format(time.RFC3339))
	})

	mux.Handle("/metrics", promhttp.Handler())

	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler: mux,
	}

	return nil
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	if a.server != nil {
		g.Go(func() error {
			a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
			if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})
	}

	inputTopic := a.Config.Broker.Kafka.InputTopic
	if inputTopic == "" {
		inputTopic = constants.DefaultInputTopic
	}

	g.Go(func() error {
		consumeCtx := logging.WithServiceName(gCtx, "ingest-service")
		a.Logger.InfowCtx(consumeCtx, "Starting inbound message consumer",
			"topic", inputTopic,
		)
		return a.Consumer.Consume(gCtx, inputTopic, func(cCtx context.Context, msg *telemetry.Message) error {
			return a.service.Process(cCtx, msg)
		})
	})

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx := logging.WithServiceName(ctx, "ingest-service")
	a.Logger.InfowCtx(shutdownCtx, "Shutting down ingest service")

	// Drain before the broker closes so in-flight relays finish against a
	// live producer.
	if a.relay != nil {
		if drained := a.relay.Drain(constants.RelayDrainWait); !drained {
			a.Logger.WarnwCtx(shutdownCtx, "Relay drain timed out, in-flight publishes abandoned",
				"timeout", constants.RelayDrainWait,
			)
		}
	}

	additionalShutdown := func(ctx context.Context) []error {
		var errs []error

		if a.server != nil {
			serverCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()
			if err := a.server.Shutdown(serverCtx); err != nil {
				errs = append(errs, fmt.Errorf("HTTP server shutdown error: %w", err))
			}
		}

		errs = append(errs, a.dbConnector.ShutdownDatabases(ctx, a.redis, a.sqlDB, a.mongoClient)...)

		return errs
	}

	return a.Base.Shutdown(ctx, additionalShutdown)
}
