package factory

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"securebank/internal/audit"
	"securebank/internal/client"
	"securebank/internal/clock"
	"securebank/internal/config"
	"securebank/internal/handler"
	"securebank/internal/hashing"
	"securebank/internal/metrics"
	"securebank/internal/ratelimit"
	"securebank/internal/repository"
	"securebank/internal/repository/memory"
	redisstore "securebank/internal/repository/redis"
	"securebank/internal/service"
	"securebank/internal/util"

	"github.com/prometheus/client_golang/prometheus"
)

// Factory manages the lifecycle of all application dependencies
type Factory struct {
	config *config.Config
	clock  clock.Clock

	// Clients
	redisClient      *client.RedisClient
	kafkaProducer    *client.KafkaProducer
	esClient         *client.ESClient
	clickhouseClient *client.ClickHouseClient

	hasher      *hashing.Hasher
	store       repository.Store
	limiter     ratelimit.Limiter
	dispatcher  *audit.Dispatcher
	securityLog *audit.SecurityLog
	registry    *prometheus.Registry

	serviceFactory *service.ServiceFactory

	closeOnce sync.Once
}

// NewFactory creates and initializes all application dependencies
func NewFactory() (*Factory, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)

	factory := &Factory{
		config:   cfg,
		clock:    clock.Real(),
		registry: prometheus.NewRegistry(),
	}
	metrics.Register(factory.registry)

	if err := factory.initializeClients(); err != nil {
		return nil, fmt.Errorf("failed to initialize clients: %w", err)
	}

	if err := factory.initializeStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := factory.initializeAudit(); err != nil {
		return nil, fmt.Errorf("failed to initialize audit sinks: %w", err)
	}

	factory.hasher = hashing.NewHasher(cfg)

	services, err := service.NewServiceFactory(cfg, factory.clock, factory.hasher, factory.store, factory.securityLog, util.Get())
	if err != nil {
		return nil, fmt.Errorf("failed to create services: %w", err)
	}
	factory.serviceFactory = services

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := services.Ledger().Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	util.Info("Factory initialized successfully",
		util.String("environment", cfg.Environment),
		util.String("storage_backend", cfg.Storage.Backend),
		util.Bool("tls_enabled", cfg.TLSEnabled()),
		util.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		util.Int("audit_sinks", len(factory.auditSinks())),
	)

	return factory, nil
}

// initializeClients connects the optional backends. Redis is only required
// when it backs storage; the audit sinks are best effort outside production.
func (f *Factory) initializeClients() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var initErrors []error

	// Redis
	if f.config.Storage.Backend == "redis" {
		rc, err := client.NewRedisClient(f.config, util.Named("redis"))
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		f.redisClient = rc
		if err := f.redisClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("redis health check: %w", err)
		}
		util.Info("Redis client initialized and healthy")
	}

	// Kafka
	if f.config.Kafka.Enabled {
		if producer, err := client.NewKafkaProducer(f.config, util.Named("kafka")); err != nil {
			util.Warn("Kafka producer initialization failed - proceeding without Kafka", util.ErrorField(err))
		} else {
			f.kafkaProducer = producer
			util.Info("Kafka producer initialized")
		}
	}

	// Elasticsearch
	if f.config.Elasticsearch.Enabled {
		if es, err := client.NewElasticsearchClient(f.config, util.Named("elasticsearch")); err != nil {
			initErrors = append(initErrors, fmt.Errorf("elasticsearch: %w", err))
		} else {
			f.esClient = es
			util.Info("Elasticsearch client initialized and healthy")
		}
	}

	// ClickHouse
	if f.config.Clickhouse.Enabled {
		if chClient, err := client.NewClickHouseClient(f.config, util.Named("clickhouse")); err != nil {
			initErrors = append(initErrors, fmt.Errorf("clickhouse: %w", err))
		} else {
			f.clickhouseClient = chClient
			if err := f.clickhouseClient.HealthCheck(ctx); err != nil {
				initErrors = append(initErrors, fmt.Errorf("clickhouse health check: %w", err))
			} else {
				util.Info("ClickHouse client initialized and healthy")
			}
		}
	}

	if len(initErrors) > 0 {
		if f.config.IsProduction() {
			return fmt.Errorf("critical service initialization failed: %v", initErrors)
		}
		for _, err := range initErrors {
			util.Warn("Service initialization warning", util.ErrorField(err))
		}
	}

	return nil
}

func (f *Factory) initializeStorage() error {
	switch f.config.Storage.Backend {
	case "redis":
		f.store = redisstore.NewStore(f.redisClient)
	default:
		f.store = memory.NewStore()
	}

	if !f.config.RateLimit.Enabled {
		return nil
	}
	if f.redisClient != nil {
		f.limiter = ratelimit.NewRedisLimiter(f.redisClient.Client, f.config.RateLimit.Requests, f.config.RateLimit.Window, f.redisClient.KeyPrefix()+"rl:")
	} else {
		f.limiter = ratelimit.NewMemory(f.config.RateLimit.Requests, f.config.RateLimit.Window)
	}
	return nil
}

func (f *Factory) initializeAudit() error {
	sinks := f.auditSinks()

	if f.clickhouseClient != nil {
		chSink, err := audit.NewClickHouseSink(f.clickhouseClient, f.config.Clickhouse.Database+"."+f.config.Clickhouse.Table)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := chSink.EnsureTable(ctx); err != nil {
			if f.config.IsProduction() {
				return fmt.Errorf("clickhouse table: %w", err)
			}
			util.Warn("ClickHouse audit table unavailable - proceeding without it", util.ErrorField(err))
		} else {
			sinks = append(sinks, chSink)
		}
	}

	f.dispatcher = audit.NewDispatcher(sinks, f.config.Audit.BufferSize, f.config.Audit.PublishTimeout, util.Named("audit"))
	f.securityLog = audit.NewSecurityLog(f.clock, f.dispatcher, util.Named("security_log"))
	return nil
}

// auditSinks returns the sinks backed by clients that need no setup.
func (f *Factory) auditSinks() []audit.Sink {
	var sinks []audit.Sink
	if f.kafkaProducer != nil {
		sinks = append(sinks, audit.NewKafkaSink(f.kafkaProducer, f.config.Kafka.Topic))
	}
	if f.esClient != nil {
		sinks = append(sinks, audit.NewElasticsearchSink(f.esClient, f.config.Elasticsearch.Index))
	}
	return sinks
}

// ==============================
// HTTP
// ==============================

func (f *Factory) Router() http.Handler {
	return handler.NewRouter(f.serviceFactory, handler.RouterOptions{
		AllowedOrigins:    f.config.Server.AllowedOrigins,
		TrustProxyHeaders: f.config.Server.TrustProxyHeaders,
		RequestTimeout:    f.config.Server.WriteTimeout,
		Limiter:           f.limiter,
		Clock:             f.clock,
		Metrics:           metrics.Handler(f.registry),
		Health:            f.HealthCheck,
	}, util.Named("http"))
}

// ==============================
// Health Checks
// ==============================

func (f *Factory) HealthCheck(ctx context.Context) map[string]error {
	healthErrors := make(map[string]error)

	if f.redisClient != nil {
		if err := f.redisClient.HealthCheck(ctx); err != nil {
			healthErrors["redis"] = err
		}
	} else if f.config.Storage.Backend == "redis" {
		healthErrors["redis"] = fmt.Errorf("redis client not initialized")
	}

	if f.esClient != nil {
		if err := f.esClient.HealthCheck(ctx); err != nil {
			healthErrors["elasticsearch"] = err
		}
	}

	if f.clickhouseClient != nil {
		if err := f.clickhouseClient.HealthCheck(ctx); err != nil {
			healthErrors["clickhouse"] = err
		}
	}

	if f.kafkaProducer != nil {
		if err := f.kafkaProducer.HealthCheck(ctx); err != nil {
			healthErrors["kafka"] = err
		}
	}

	if f.hasher == nil {
		healthErrors["hasher"] = fmt.Errorf("hasher not initialized")
	}
	if f.serviceFactory == nil {
		healthErrors["services"] = fmt.Errorf("service factory not initialized")
	}

	return healthErrors
}

// IsHealthy ignores Kafka, whose brokers are only reached on write.
func (f *Factory) IsHealthy(ctx context.Context) bool {
	healthErrors := f.HealthCheck(ctx)
	delete(healthErrors, "kafka")
	return len(healthErrors) == 0
}

// ==============================
// Other Utility Methods
// ==============================

func (f *Factory) Close() error {
	f.closeOnce.Do(func() {
		util.Info("Shutting down factory...")

		if f.serviceFactory != nil {
			f.serviceFactory.Cleanup()
			util.Info("Service factory cleaned up")
		}

		if f.clickhouseClient != nil {
			if err := f.clickhouseClient.Close(); err != nil {
				util.Error("Failed to close ClickHouse client", util.ErrorField(err))
			} else {
				util.Info("ClickHouse client closed")
			}
		}

		if f.esClient != nil {
			f.esClient.Close()
			util.Info("Elasticsearch client closed")
		}

		if f.kafkaProducer != nil {
			if err := f.kafkaProducer.Close(); err != nil {
				util.Error("Failed to close Kafka producer", util.ErrorField(err))
			} else {
				util.Info("Kafka producer closed")
			}
		}

		if f.redisClient != nil {
			if err := f.redisClient.Close(); err != nil {
				util.Error("Failed to close Redis client", util.ErrorField(err))
			} else {
				util.Info("Redis client closed")
			}
		}

		util.Info("Factory shutdown completed")
		util.Sync()
	})

	return nil
}

func (f *Factory) Config() *config.Config {
	return f.config
}

// Dispatcher must be run by the caller for entries to reach the audit sinks.
func (f *Factory) Dispatcher() *audit.Dispatcher {
	return f.dispatcher
}

func (f *Factory) ServiceFactory() *service.ServiceFactory {
	return f.serviceFactory
}
