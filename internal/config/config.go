package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type IdentityConfig struct {
	BaseURL string
	AnonKey string
	Timeout time.Duration
}

type StorageConfig struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	BucketAnexos string
	UseSSL       bool
	Region       string
}

type SessionConfig struct {
	CookieName      string
	CookieTTL       time.Duration
	ValidateTimeout time.Duration
}

type ReconcilerConfig struct {
	CronSpec string
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Redis            RedisConfig
	Backend          BackendConfig
	Identity         IdentityConfig
	Storage          StorageConfig
	Session          SessionConfig
	Reconciler       ReconcilerConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("FINANCEHUB")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	// Empty addr selects the in-memory cache (dev and test runs).
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("backend.baseurl", "http://127.0.0.1:3333/api")
	v.SetDefault("backend.timeout", "10s")

	v.SetDefault("identity.baseurl", "http://127.0.0.1:9999")
	v.SetDefault("identity.timeout", "10s")

	v.SetDefault("storage.bucketanexos", "financehub-anexos")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("session.cookiename", "fh_sessao")
	v.SetDefault("session.cookiettl", "168h") // 7 days
	v.SetDefault("session.validatetimeout", "8s")

	v.SetDefault("reconciler.cronspec", "@every 30s")
}
