package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"admissions/internal/constants"
)

// LoadConfig reads a YAML file, overlays environment variables (a local .env
// file is honoured when present) and validates the result.
func LoadConfig(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	viper.Reset()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(configFile)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout_seconds", 15*time.Second)
	viper.SetDefault("server.write_timeout_seconds", 15*time.Second)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("broker.topic", constants.DefaultEventTopic)
	viper.SetDefault("broker.kafka.group_id", constants.DefaultRelayGroup)
	viper.SetDefault("broker.nats.queue", constants.DefaultRelayGroup)
	viper.SetDefault("notifications.webhook.timeout", constants.DefaultHTTPTimeout)
	viper.SetDefault("documents.s3.presign_ttl", constants.DefaultPresignTTL)
	viper.SetDefault("stripe_sync.schedule", "@every "+constants.DefaultSyncInterval.String())
	viper.SetDefault("stripe_sync.base_url", constants.DefaultStripeBaseURL)
	viper.SetDefault("stripe_sync.page_size", constants.DefaultStripePageSize)
	viper.SetDefault("stripe_sync.lock_ttl", 10*time.Minute)
}

func bindEnvVariables() {
	viper.BindEnv("broker.type", "BROKER_TYPE")
	viper.BindEnv("broker.topic", "BROKER_TOPIC")
	viper.BindEnv("broker.kafka.brokers", "BROKER_KAFKA_BROKERS")
	viper.BindEnv("broker.kafka.group_id", "BROKER_KAFKA_GROUP_ID")
	viper.BindEnv("broker.nats.url", "BROKER_NATS_URL")

	viper.BindEnv("database.postgres.host", "DATABASE_POSTGRES_HOST")
	viper.BindEnv("database.postgres.port", "DATABASE_POSTGRES_PORT")
	viper.BindEnv("database.postgres.user", "DATABASE_POSTGRES_USER")
	viper.BindEnv("database.postgres.password", "DATABASE_POSTGRES_PASSWORD")
	viper.BindEnv("database.postgres.dbname", "DATABASE_POSTGRES_DBNAME")
	viper.BindEnv("database.postgres.sslmode", "DATABASE_POSTGRES_SSLMODE")
	viper.BindEnv("database.run_migrations", "DATABASE_RUN_MIGRATIONS")

	viper.BindEnv("database.redis.host", "DATABASE_REDIS_HOST")
	viper.BindEnv("database.redis.port", "DATABASE_REDIS_PORT")
	viper.BindEnv("database.redis.password", "DATABASE_REDIS_PASSWORD")
	viper.BindEnv("database.redis.db", "DATABASE_REDIS_DB")

	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("logging.level", "LOGGING_LEVEL")
	viper.BindEnv("logging.file.path", "LOGGING_FILE_PATH")

	viper.BindEnv("auth.jwt_secret", "AUTH_JWT_SECRET")
	viper.BindEnv("auth.issuer", "AUTH_ISSUER")

	viper.BindEnv("notifications.webhook.url", "NOTIFICATIONS_WEBHOOK_URL")
	viper.BindEnv("notifications.webhook.secret", "NOTIFICATIONS_WEBHOOK_SECRET")

	viper.BindEnv("documents.s3.bucket", "DOCUMENTS_S3_BUCKET")
	viper.BindEnv("documents.s3.region", "DOCUMENTS_S3_REGION")
	viper.BindEnv("documents.s3.endpoint", "DOCUMENTS_S3_ENDPOINT")
	viper.BindEnv("documents.s3.access_key_id", "DOCUMENTS_S3_ACCESS_KEY_ID")
	viper.BindEnv("documents.s3.secret_access_key", "DOCUMENTS_S3_SECRET_ACCESS_KEY")

	viper.BindEnv("stripe_sync.enabled", "STRIPE_SYNC_ENABLED")
	viper.BindEnv("stripe_sync.secret_key", "STRIPE_SYNC_SECRET_KEY")
	viper.BindEnv("stripe_sync.base_url", "STRIPE_SYNC_BASE_URL")

	viper.BindEnv("tracing.otlp.endpoint", "TRACING_OTLP_ENDPOINT")
	viper.BindEnv("tracing.otlp.insecure", "TRACING_OTLP_INSECURE")
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.service_name", "TRACING_SERVICE_NAME")
}

func applyEnvOverrides(cfg *Config) {
	if brokersEnv := viper.GetString("BROKER_KAFKA_BROKERS"); brokersEnv != "" {
		brokers := strings.Split(brokersEnv, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		if len(brokers) > 0 && brokers[0] != "" {
			cfg.Broker.Kafka.Brokers = brokers
		}
	}
}
