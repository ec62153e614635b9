package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	TxTimeout       time.Duration
}

type AuthConfig struct {
	AccessSecret string
}

type LifecycleConfig struct {
	MaxRetries int
	IdleDays   int
}

type RedisConfig struct {
	URL string
	TTL time.Duration
}

type MQTTConfig struct {
	BrokerURL   string
	ClientID    string
	TopicPrefix string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Lifecycle   LifecycleConfig
	Redis       RedisConfig
	MQTT        MQTTConfig
}

func Load() (*Config, error) {
	// values already present in the environment win over .env
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 7090)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_TX_TIMEOUT", "5s")
	v.SetDefault("LIFECYCLE_MAX_RETRIES", 1)
	v.SetDefault("METRICS_IDLE_DAYS", 30)
	v.SetDefault("KPI_CACHE_TTL", "60s")
	v.SetDefault("MQTT_CLIENT_ID", "fleet-service")
	v.SetDefault("MQTT_TOPIC_PREFIX", "fleet")

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			TxTimeout:       v.GetDuration("DB_TX_TIMEOUT"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Lifecycle: LifecycleConfig{
			MaxRetries: v.GetInt("LIFECYCLE_MAX_RETRIES"),
			IdleDays:   v.GetInt("METRICS_IDLE_DAYS"),
		},
		Redis: RedisConfig{
			URL: v.GetString("REDIS_URL"),
			TTL: v.GetDuration("KPI_CACHE_TTL"),
		},
		MQTT: MQTTConfig{
			BrokerURL:   v.GetString("MQTT_BROKER_URL"),
			ClientID:    v.GetString("MQTT_CLIENT_ID"),
			TopicPrefix: v.GetString("MQTT_TOPIC_PREFIX"),
		},
	}

	if cfg.Lifecycle.MaxRetries < 1 {
		cfg.Lifecycle.MaxRetries = 1
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP_PORT %d is out of range", cfg.HTTP.Port)
	}
	if cfg.DB.TxTimeout <= 0 {
		return fmt.Errorf("DB_TX_TIMEOUT must be positive")
	}
	if cfg.Lifecycle.IdleDays <= 0 {
		return fmt.Errorf("METRICS_IDLE_DAYS must be positive")
	}
	return nil
}
