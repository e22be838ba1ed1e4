package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env               string        `mapstructure:"ENV"`
	Port              string        `mapstructure:"PORT"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	RedisAddr         string        `mapstructure:"REDIS_ADDR"`
	AdminKey          string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed       string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout    time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	FrontendURL       string        `mapstructure:"FRONTEND_URL"`
	FromEmail         string        `mapstructure:"FROM_EMAIL"`
	AlertEmail        string        `mapstructure:"ALERT_EMAIL"`
	AlertPhone        string        `mapstructure:"ALERT_PHONE"`
	EmailAPIURL       string        `mapstructure:"EMAIL_API_URL"`
	EmailAPIToken     string        `mapstructure:"EMAIL_API_TOKEN"`
	WorkerCount       int           `mapstructure:"WORKER_COUNT"`
	QueuePollInterval time.Duration `mapstructure:"QUEUE_POLL_INTERVAL"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("FROM_EMAIL", "support@familysupport.example")
	v.SetDefault("ALERT_EMAIL", "alerts@familysupport.example")
	v.SetDefault("WORKER_COUNT", 4)
	v.SetDefault("QUEUE_POLL_INTERVAL", "500ms")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
