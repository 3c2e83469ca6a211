package di

import (
	"context"
	"fmt"
	"time"

	"CoinPulse/internal/analysis"
	"CoinPulse/internal/domain/repository"
	dservice "CoinPulse/internal/domain/service"
	"CoinPulse/internal/handler/api"
	internalrepo "CoinPulse/internal/repository"
	"CoinPulse/internal/service/sentiment"
	"CoinPulse/internal/service/upbit"
	"CoinPulse/internal/usecase"
	"CoinPulse/pkg/cache"
	pkgch "CoinPulse/pkg/clickhouse"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	pkgkafka "CoinPulse/pkg/kafka"
	applogger "CoinPulse/pkg/logger"
	"CoinPulse/pkg/metrics"
	"CoinPulse/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideEngine builds the evaluation engine from config.
func ProvideEngine(cfg *config.Config, log *applogger.Logger) (*analysis.Engine, error) {
	return analysis.NewEngine(analysis.Config{
		Processors:       cfg.Engine.Processors,
		ProcessorTimeout: cfg.Engine.ProcessorTimeout,
		MinConfidence:    cfg.Engine.MinConfidence,
		DominanceRatio:   cfg.Engine.DominanceRatio,
		MaxReasons:       cfg.Engine.MaxReasons,
		Preprocessor: analysis.PreprocessorConfig{
			VolumeLookback: cfg.Engine.VolumeLookback,
			SwingRadius:    cfg.Engine.SwingRadius,
		},
	}, log)
}

// ProvideMarketSource creates the Upbit REST client.
func ProvideMarketSource(cfg *config.Config, log *applogger.Logger) repository.MarketSource {
	return upbit.New(cfg.Upbit.RESTURL, cfg.Upbit.RequestTimeout, cfg.Upbit.RequestsPerSec, log)
}

// ProvideTickerStream creates the Upbit WebSocket stream.
func ProvideTickerStream(cfg *config.Config, log *applogger.Logger) repository.TickerStream {
	if cfg.Upbit.WebSocketURL == "" {
		return nil
	}
	return upbit.NewStream(cfg.Upbit.WebSocketURL, cfg.Upbit.Markets, cfg.Upbit.ReconnectDelay, cfg.Upbit.PingInterval, log)
}

// ProvideClickHouseClient creates a ClickHouse client, or nil if disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.CandleSchema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideCandleStore creates ClickHouse candle storage, or nil if disabled.
func ProvideCandleStore(chClient *pkgch.Client) repository.CandleStore {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewClickHouseCandleStore(chClient.DB(), "candles")
}

// ProvideKafkaProducer creates a Kafka producer, or nil if disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
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
	return producer, nil
}

// ProvideSignalPublisher creates a Kafka signal publisher, or nil if disabled.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.SignalPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.Topic)
}

// ProvideCache layers memory over Redis when Redis is enabled, in-process
// memory otherwise. The cache backs sentiment lookups and short-lived
// snapshot responses.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Redis.Host),
			cache.WithRedisPort(cfg.Redis.Port),
			cache.WithRedisPassword(cfg.Redis.Password),
			cache.WithRedisDB(cfg.Redis.DB),
		)
		if err != nil {
			return nil, err
		}
		return cache.NewLayeredCache(redisCache), nil
	}
	return cache.NewMemoryCache(), nil
}

// ProvideSentimentProvider creates the sentiment source, or nil if disabled.
func ProvideSentimentProvider(cfg *config.Config, cacheSvc cache.Service, log *applogger.Logger) dservice.SentimentProvider {
	if !cfg.Sentiment.Enabled {
		return nil
	}
	return sentiment.NewHTTPProvider(cfg.Sentiment.URL, cfg.Sentiment.Timeout, cacheSvc, cfg.Sentiment.CacheTTL, log)
}

// ProvideSignalEvaluator wires the full evaluation pipeline.
func ProvideSignalEvaluator(
	cfg *config.Config,
	source repository.MarketSource,
	store repository.CandleStore,
	sentimentSvc dservice.SentimentProvider,
	publisher repository.SignalPublisher,
	engine *analysis.Engine,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.SignalEvaluator {
	tf := repository.NormalizeTimeframe(cfg.Upbit.Timeframe)
	return usecase.NewSignalEvaluator(source, store, sentimentSvc, publisher, engine, m, log, tf, cfg.Upbit.CandleCount)
}

// ProvideCandlesUseCase wires stored-candle reads.
func ProvideCandlesUseCase(store repository.CandleStore) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(store)
}

// ProvideSignalCollector wires the periodic loop and live stream.
func ProvideSignalCollector(
	cfg *config.Config,
	stream repository.TickerStream,
	evaluator *usecase.SignalEvaluator,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.SignalCollector {
	return usecase.NewSignalCollector(stream, evaluator, m, log, cfg.Upbit.Markets, cfg.Engine.EvalInterval)
}

// ProvideHTTPHandler creates the API handler.
func ProvideHTTPHandler(
	cfg *config.Config,
	log *applogger.Logger,
	evaluator *usecase.SignalEvaluator,
	candles *usecase.CandlesUseCase,
	collector *usecase.SignalCollector,
	store repository.CandleStore,
	cacheSvc cache.Service,
) xhttp.Handler {
	tf := repository.NormalizeTimeframe(cfg.Upbit.Timeframe)
	return api.NewSignalsHandler(log, evaluator, candles, collector, store, cacheSvc, tf)
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	collector *usecase.SignalCollector,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	publisher repository.SignalPublisher,
) *server.App {
	return server.New(cfg, log, collector, handler, chClient, publisher)
}
