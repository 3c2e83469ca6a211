package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Upbit struct {
		RESTURL        string        `yaml:"rest_url"`
		WebSocketURL   string        `yaml:"websocket_url"`
		Markets        []string      `yaml:"markets"`
		Timeframe      string        `yaml:"timeframe"`
		CandleCount    int           `yaml:"candle_count"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		RequestsPerSec float64       `yaml:"requests_per_sec"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"upbit"`
	Engine struct {
		Processors       []string      `yaml:"processors"`
		ProcessorTimeout time.Duration `yaml:"processor_timeout"`
		MinConfidence    float64       `yaml:"min_confidence"`
		DominanceRatio   float64       `yaml:"dominance_ratio"`
		MaxReasons       int           `yaml:"max_reasons"`
		VolumeLookback   int           `yaml:"volume_lookback"`
		SwingRadius      int           `yaml:"swing_radius"`
		EvalInterval     time.Duration `yaml:"eval_interval"`
	} `yaml:"engine"`
	Sentiment struct {
		Enabled  bool          `yaml:"enabled"`
		URL      string        `yaml:"url"`
		Timeout  time.Duration `yaml:"timeout"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"sentiment"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("MARKETS"); v != "" {
		c.Upbit.Markets = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("SENTIMENT_URL"); v != "" {
		c.Sentiment.URL = v
	}

	return c, nil
}

var knownProcessors = map[string]bool{
	"trend":        true,
	"volatility":   true,
	"volume":       true,
	"candlestick":  true,
	"price_action": true,
}

// Validate checks if the configuration is valid. Engine construction
// re-validates processor names against the registry; checking here keeps
// startup failures at config load time.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Upbit.Markets) == 0 {
		return fmt.Errorf("upbit.markets cannot be empty")
	}
	if c.Upbit.CandleCount < 0 || c.Upbit.CandleCount > 1000 {
		return fmt.Errorf("upbit.candle_count must be in [0, 1000], got %d", c.Upbit.CandleCount)
	}
	for _, name := range c.Engine.Processors {
		if !knownProcessors[name] {
			return fmt.Errorf("unknown processor %q in engine.processors", name)
		}
	}
	if c.Engine.MinConfidence < 0 || c.Engine.MinConfidence > 1 {
		return fmt.Errorf("engine.min_confidence must be in [0, 1], got %v", c.Engine.MinConfidence)
	}
	if c.Engine.DominanceRatio < 0 {
		return fmt.Errorf("engine.dominance_ratio must be non-negative")
	}
	if c.Engine.EvalInterval < 0 {
		return fmt.Errorf("engine.eval_interval must be non-negative")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host required when clickhouse is enabled")
	}
	if c.Sentiment.Enabled && c.Sentiment.URL == "" {
		return fmt.Errorf("sentiment.url required when sentiment is enabled")
	}
	return nil
}
