package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Savit10/streamsense/internal/bootstrap/logging"
	"github.com/Savit10/streamsense/internal/errs"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Server    ServerConfig    `mapstructure:"server"`
	Generator GeneratorConfig `mapstructure:"generator"`
	// Values maps event type -> event_value weight written to the log.
	// The default ordering (view above purchase) is carried over from the
	// upstream producer verbatim; swap it here, not in code.
	Values map[string]float64 `mapstructure:"values"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

type IngestConfig struct {
	PollTimeout   time.Duration `mapstructure:"poll_timeout"`
	CommitRetries int           `mapstructure:"commit_retries"`
	RetryBackoff  time.Duration `mapstructure:"retry_backoff"`
	DialectsFile  string        `mapstructure:"dialects_file"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type GeneratorConfig struct {
	Users        int    `mapstructure:"users"`
	EventsPerSec int    `mapstructure:"events_per_sec"`
	Count        int    `mapstructure:"count"`
	Dialect      string `mapstructure:"dialect"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("kafka_topic", cfg.Kafka.Topic),
	)

	return cfg, nil
}

// validate covers only the startup-fatal class of errors; everything past
// boot is handled by the ingest loop's own taxonomy.
func validate(cfg Config) error {
	if cfg.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers is required")
	}
	if cfg.Kafka.Topic == "" {
		return errors.New("kafka.topic is required")
	}
	if cfg.Ingest.PollTimeout <= 0 {
		return errors.New("ingest.poll_timeout must be positive")
	}
	if cfg.Ingest.CommitRetries < 0 {
		return errors.New("ingest.commit_retries must not be negative")
	}

	for name, weight := range cfg.Values {
		if weight < 0 {
			return fmt.Errorf("values.%s must not be negative", name)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "streamsense")
	v.SetDefault("app.env", "local")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/streamsense.sqlite")

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "events")
	v.SetDefault("kafka.group_id", "feature-service")

	v.SetDefault("ingest.poll_timeout", time.Second)
	v.SetDefault("ingest.commit_retries", 3)
	v.SetDefault("ingest.retry_backoff", 100*time.Millisecond)
	v.SetDefault("ingest.dialects_file", "")

	v.SetDefault("server.addr", ":8000")

	v.SetDefault("generator.users", 100)
	v.SetDefault("generator.events_per_sec", 10)
	v.SetDefault("generator.count", 20)
	v.SetDefault("generator.dialect", "canonical")

	v.SetDefault("values.view", 1.0)
	v.SetDefault("values.click", 0.8)
	v.SetDefault("values.add_to_cart", 0.5)
	v.SetDefault("values.purchase", 0.2)
}
