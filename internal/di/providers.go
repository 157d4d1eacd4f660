package di

import (
	"context"
	"fmt"
	"sort"
	"time"

	domrepo "StressPulse/internal/domain/repository"
	domsvc "StressPulse/internal/domain/service"
	"StressPulse/internal/handler/api"
	internalrepo "StressPulse/internal/repository"
	"StressPulse/internal/service/fetch"
	"StressPulse/internal/services/quality"
	"StressPulse/internal/services/stress"
	"StressPulse/internal/usecase"
	"StressPulse/pkg/cache"
	pkgch "StressPulse/pkg/clickhouse"
	"StressPulse/pkg/config"
	xhttp "StressPulse/pkg/http"
	pkgkafka "StressPulse/pkg/kafka"
	applogger "StressPulse/pkg/logger"
	"StressPulse/pkg/metrics"
	"StressPulse/pkg/server"
	"StressPulse/pkg/workerpool"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideClickHouseClient creates a ClickHouse client and ensures schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.rt_indicator_obs (
            code String, d Date, value Nullable(Float64)
        ) ENGINE=ReplacingMergeTree ORDER BY (code, d)`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.stress_index_points (
            d Date, raw_composite Float64, smoothed_composite Float64,
            macd_line Nullable(Float64), macd_signal Nullable(Float64),
            level String, uncovered_weight Float64, weights_fallback UInt8
        ) ENGINE=ReplacingMergeTree ORDER BY d`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.dq_findings (
            code String, d Date, rule_type String, severity String,
            status String, detail String
        ) ENGINE=MergeTree ORDER BY (code, d, rule_type)`, db),
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideCacheStore creates the Redis-backed key-value store.
func ProvideCacheStore(cfg *config.Config) (cache.Store, error) {
	store, err := cache.NewRedisStore(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis store: %w", err)
	}
	return store, nil
}

// ProvideWeightStore persists weight vectors in the cache store.
func ProvideWeightStore(store cache.Store) domrepo.WeightStore {
	return internalrepo.NewCacheWeightStore(store)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideRawStore creates the ClickHouse raw observation store.
func ProvideRawStore(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) domrepo.RawDataStore {
	store := internalrepo.NewCHRawStore(chClient, cfg.ClickHouse.Database)
	store.SetLogger(l)
	return store
}

// ProvideFeatureStore creates the ClickHouse feature store.
func ProvideFeatureStore(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) domrepo.FeatureStore {
	store := internalrepo.NewCHFeatureStore(chClient, cfg.ClickHouse.Database)
	store.SetLogger(l)
	return store
}

// ProvidePublisher creates the Kafka event publisher, or a noop when Kafka
// is disabled.
func ProvidePublisher(cfg *config.Config) (domrepo.EventPublisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideQualityEngine loads the rule catalog and builds the engine.
func ProvideQualityEngine(cfg *config.Config, m domrepo.Metrics, l *applogger.Logger) (*quality.Engine, error) {
	rules, err := quality.LoadCatalog(cfg.Quality.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("rule catalog: %w", err)
	}
	engine := quality.NewEngine(rules, m)
	engine.SetLogger(l)
	return engine, nil
}

// ProvideRanker creates the rolling percentile ranker.
func ProvideRanker(cfg *config.Config) (*stress.Ranker, error) {
	return stress.NewRanker(cfg.Stress.RollingWindowDays, cfg.Stress.MinPeriodsForRanking)
}

// ProvideEstimator creates the PCA weight estimator.
func ProvideEstimator(cfg *config.Config) domsvc.WeightEstimator {
	return stress.NewPCAEstimator(
		cfg.Stress.EigenvalueThreshold,
		cfg.Stress.VarianceExplainedThreshold,
		cfg.Stress.RecalculationFrequencyDays,
	)
}

// ProvideWeightManager creates the weight vector manager.
func ProvideWeightManager(cfg *config.Config, est domsvc.WeightEstimator, store domrepo.WeightStore, m domrepo.Metrics, l *applogger.Logger) *stress.WeightManager {
	wm := stress.NewWeightManager(cfg.Stress.Universe, est, store, cfg.Stress.RecalculationFrequencyDays, m)
	wm.SetLogger(l)
	return wm
}

// ProvideComposer creates the composite index composer.
func ProvideComposer(cfg *config.Config) (*stress.Composer, error) {
	return stress.NewComposer(
		cfg.Stress.Smoothing.Method,
		cfg.Stress.Smoothing.Window,
		stress.MACDConfig{
			Enabled: cfg.Stress.MACD.Enabled,
			Fast:    cfg.Stress.MACD.Fast,
			Slow:    cfg.Stress.MACD.Slow,
			Signal:  cfg.Stress.MACD.Signal,
		},
		stress.Thresholds{
			Moderate: cfg.Stress.Thresholds.Moderate,
			High:     cfg.Stress.Thresholds.High,
			Extreme:  cfg.Stress.Thresholds.Extreme,
		},
	)
}

// ProvideCollector creates the bounded-concurrency fetch collector, or nil
// when no sources are configured.
func ProvideCollector(cfg *config.Config, raw domrepo.RawDataStore, m domrepo.Metrics, l *applogger.Logger) (*fetch.Collector, error) {
	if len(cfg.Fetch.Sources) == 0 {
		return nil, nil
	}
	pool, err := workerpool.New(cfg.Fetch.IOConcurrency)
	if err != nil {
		return nil, err
	}
	client := fetch.NewClient(xhttp.NewClient(xhttp.WithTimeout(cfg.Fetch.Timeout)), cfg.Fetch.Retries, cfg.Fetch.MaxRPS)
	sources := make([]fetch.Source, 0, len(cfg.Fetch.Sources))
	for _, s := range cfg.Fetch.Sources {
		sources = append(sources, fetch.Source{Code: s.Code, URL: s.URL})
	}
	collector := fetch.NewCollector(client, raw, pool, sources, m)
	collector.SetLogger(l)
	return collector, nil
}

// ProvideStressRunner assembles the daily pipeline.
func ProvideStressRunner(
	cfg *config.Config,
	collector *fetch.Collector,
	raw domrepo.RawDataStore,
	features domrepo.FeatureStore,
	publisher domrepo.EventPublisher,
	engine *quality.Engine,
	ranker *stress.Ranker,
	weights *stress.WeightManager,
	composer *stress.Composer,
	m domrepo.Metrics,
	l *applogger.Logger,
) (*usecase.StressRunner, error) {
	directions := stress.DirectionMap(cfg.Stress.Directions)
	codes := make([]string, 0, len(directions))
	for code := range directions {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	runner, err := usecase.NewStressRunner(usecase.RunnerParams{
		Collector:  collector,
		RawStore:   raw,
		Features:   features,
		Publisher:  publisher,
		Engine:     engine,
		Ranker:     ranker,
		Directions: directions,
		Weights:    weights,
		Composer:   composer,
		Codes:      codes,
		Metrics:    m,
	})
	if err != nil {
		return nil, err
	}
	runner.SetLogger(l)
	return runner, nil
}

// ProvideHTTPHandler creates the API handler.
func ProvideHTTPHandler(l *applogger.Logger, features domrepo.FeatureStore, raw domrepo.RawDataStore, runner *usecase.StressRunner) xhttp.Handler {
	return api.NewStressHandler(l, features, raw, runner)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	runner *usecase.StressRunner,
	weights *stress.WeightManager,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	weightStore domrepo.WeightStore,
	publisher domrepo.EventPublisher,
) *server.App {
	return server.New(cfg, l, runner, weights, handler, chClient, weightStore, publisher)
}
