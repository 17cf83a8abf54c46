package di

import (
	"context"
	"fmt"
	"time"

	domrepo "ScoreFuse/internal/domain/repository"
	"ScoreFuse/internal/engine"
	"ScoreFuse/internal/handler/api"
	"ScoreFuse/internal/history"
	internalrepo "ScoreFuse/internal/repository"
	"ScoreFuse/internal/service/feed"
	"ScoreFuse/internal/usecase"
	pkgcache "ScoreFuse/pkg/cache"
	pkgch "ScoreFuse/pkg/clickhouse"
	"ScoreFuse/pkg/config"
	xhttp "ScoreFuse/pkg/http"
	pkgkafka "ScoreFuse/pkg/kafka"
	applogger "ScoreFuse/pkg/logger"
	"ScoreFuse/pkg/metrics"
	"ScoreFuse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideEngine loads the engine tuning file and builds the pipeline.
func ProvideEngine(cfg *config.Config) (*engine.Engine, error) {
	ecfg, err := engine.LoadConfig(cfg.Engine.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	return engine.NewEngine(ecfg)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when the
// memory history backend is configured.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.History.Backend != "clickhouse" {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.HistorySchema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideRedisCache creates the shared Redis cache, or nil when disabled.
func ProvideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	return pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Redis.Host),
		pkgcache.WithRedisPort(cfg.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
		pkgcache.WithRedisPrefix(cfg.Redis.Prefix),
	)
}

// ProvideAmbientStore picks the Redis-backed ambient store when Redis is
// available, otherwise in-process state.
func ProvideAmbientStore(redisCache *pkgcache.RedisCache) domrepo.AmbientStore {
	if redisCache != nil {
		return internalrepo.NewRedisAmbientStore(redisCache)
	}
	return internalrepo.NewMemoryAmbientStore()
}

// ProvideHistoryStore creates the configured history backend.
func ProvideHistoryStore(cfg *config.Config, chClient *pkgch.Client, l *applogger.Logger) domrepo.HistoryStore {
	if cfg.History.Backend == "clickhouse" && chClient != nil {
		store := internalrepo.NewCHHistoryStore(chClient)
		store.SetLogger(l)
		return store
	}
	return history.NewMemoryStore(cfg.History.MaxPerSymbol)
}

// ProvideResultPublisher creates the Kafka publisher, or a no-op when
// Kafka is disabled.
func ProvideResultPublisher(cfg *config.Config) (domrepo.ResultPublisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopResultPublisher{}, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaResultPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideScoreUsecase creates the scoring use case.
func ProvideScoreUsecase(
	eng *engine.Engine,
	ambient domrepo.AmbientStore,
	historyStore domrepo.HistoryStore,
	publisher domrepo.ResultPublisher,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.ScoreUsecase {
	return usecase.NewScoreUsecase(eng, ambient, historyStore, publisher, m, l)
}

// ProvideAdminUsecase creates the ambient admin use case.
func ProvideAdminUsecase(ambient domrepo.AmbientStore, l *applogger.Logger) *usecase.AdminUsecase {
	return usecase.NewAdminUsecase(ambient, l)
}

// ProvideHistoryUsecase creates the history query use case.
func ProvideHistoryUsecase(historyStore domrepo.HistoryStore) *usecase.HistoryUsecase {
	return usecase.NewHistoryUsecase(historyStore)
}

// ProvideScoreCollector creates the feed collector, or nil when the score
// feed is disabled.
func ProvideScoreCollector(cfg *config.Config, scores *usecase.ScoreUsecase, l *applogger.Logger) *usecase.ScoreCollector {
	if !cfg.Feed.Enabled {
		return nil
	}
	stream := feed.New(cfg.Feed.URL, cfg.Feed.Symbols, cfg.Feed.ReconnectDelay, cfg.Feed.PingInterval)
	ttl := cfg.Collector.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return usecase.NewScoreCollector(stream, scores, ttl, l)
}

// ProvideHTTPHandler creates the Echo route handler.
func ProvideHTTPHandler(
	l *applogger.Logger,
	scores *usecase.ScoreUsecase,
	admin *usecase.AdminUsecase,
	hist *usecase.HistoryUsecase,
	collector *usecase.ScoreCollector,
) xhttp.Handler {
	return api.NewScoreHandler(l, scores, admin, hist, collector)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	scores *usecase.ScoreUsecase,
	collector *usecase.ScoreCollector,
	chClient *pkgch.Client,
	redisCache *pkgcache.RedisCache,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, l, scores, collector, chClient, redisCache, handler)
}
