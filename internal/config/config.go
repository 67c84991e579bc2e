package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port                  string `mapstructure:"port"`
	AllowedOrigin         string `mapstructure:"allowed_origin"`
	DatabaseURL           string `mapstructure:"database_url"`
	RedisAddr             string `mapstructure:"redis_addr"`
	RedisPassword         string `mapstructure:"redis_password"`
	RedisDB               int    `mapstructure:"redis_db"`
	AuthSecret            string `mapstructure:"auth_secret"`
	AccessTokenTTLMinutes int    `mapstructure:"access_token_ttl_minutes"`
	Timezone              string `mapstructure:"timezone"`
	SaleConsistency       string `mapstructure:"sale_consistency"`
	OTLPEndpoint          string `mapstructure:"otlp_endpoint"`
	ServiceName           string `mapstructure:"service_name"`
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"port":                     "PORT",
	"allowed_origin":           "ALLOWED_ORIGIN",
	"database_url":             "DATABASE_URL",
	"redis_addr":               "REDIS_ADDR",
	"redis_password":           "REDIS_PASSWORD",
	"redis_db":                 "REDIS_DB",
	"auth_secret":              "AUTH_SECRET",
	"access_token_ttl_minutes": "ACCESS_TOKEN_TTL_MINUTES",
	"timezone":                 "TIMEZONE",
	"sale_consistency":         "SALE_CONSISTENCY",
	"otlp_endpoint":            "OTEL_EXPORTER_OTLP_ENDPOINT",
	"service_name":             "SERVICE_NAME",
}

// Defaults registers the default value of every key on v. The auth secret
// deliberately has none.
func Defaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("allowed_origin", "http://127.0.0.1:3000")
	v.SetDefault("database_url", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("auth_secret", "")
	v.SetDefault("access_token_ttl_minutes", 480)
	v.SetDefault("timezone", "Local")
	v.SetDefault("sale_consistency", "independent")
	v.SetDefault("otlp_endpoint", "")
	v.SetDefault("service_name", "sucursalpos")
}

// Load reads defaults and environment variables only.
func Load() (Config, error) {
	return LoadWith(viper.New(), "")
}

// LoadWith resolves configuration on v with precedence flags > env > file >
// defaults. Flags must already be bound to v by the caller.
func LoadWith(v *viper.Viper, file string) (Config, error) {
	Defaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.AuthSecret = strings.TrimSpace(cfg.AuthSecret)
	cfg.SaleConsistency = strings.ToLower(strings.TrimSpace(cfg.SaleConsistency))
	cfg.Timezone = strings.TrimSpace(cfg.Timezone)
	if cfg.AccessTokenTTLMinutes < 1 {
		cfg.AccessTokenTTLMinutes = 480
	}
	return cfg, nil
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}
