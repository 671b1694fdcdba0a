package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Streams  StreamsConfig  `mapstructure:"streams"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Log      LogConfig      `mapstructure:"log"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// UpstreamConfig points at the dashboard API the engine polls.
type UpstreamConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StreamsConfig holds the poll cadence of each upstream stream.
type StreamsConfig struct {
	MetricsInterval time.Duration `mapstructure:"metrics_interval"`
	PricingInterval time.Duration `mapstructure:"pricing_interval"`
	ChatsInterval   time.Duration `mapstructure:"chats_interval"`
	TradesInterval  time.Duration `mapstructure:"trades_interval"`
}

// FeedConfig configures the render-facing HTTP/WebSocket surface.
type FeedConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

// RedisConfig configures the optional latest-quote mirror.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Load loads application configuration using Viper.
// It reads from config.yaml when present and overrides with environment variables;
// stream cadences default to the upstream's documented intervals.
func Load() *Config {
	v := viper.New()

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("upstream.timeout", 10*time.Second)
	v.SetDefault("streams.metrics_interval", 20*time.Second)
	v.SetDefault("streams.pricing_interval", 5*time.Second)
	v.SetDefault("streams.chats_interval", 180*time.Second)
	v.SetDefault("streams.trades_interval", 180*time.Second)
	v.SetDefault("feed.listen_addr", ":8090")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.environment", "dev")

	// Support environment variables with dot notation (e.g., UPSTREAM_BASE_URL)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("failed to read config: %v", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	return &cfg
}
