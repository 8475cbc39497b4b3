package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Env       string          `mapstructure:"env"`
	Server    ServerConfig    `mapstructure:"server"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Limits    LimitsConfig    `mapstructure:"limits"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port         string   `mapstructure:"port"`
	ReadTimeout  int      `mapstructure:"read_timeout_seconds"`
	WriteTimeout int      `mapstructure:"write_timeout_seconds"`
	IdleTimeout  int      `mapstructure:"idle_timeout_seconds"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Secure   bool   `mapstructure:"secure"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
}

type LimitsConfig struct {
	MaxFileBytes  int64 `mapstructure:"max_file_bytes"`
	MaxTotalBytes int64 `mapstructure:"max_total_bytes"`
}

type RateLimitConfig struct {
	MaxPerWindow  int `mapstructure:"max_per_window"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

// IsProduction reports whether the service runs with production verbosity
// and rate-limit enforcement.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

func Load() (*Config, error) {
	// Get environment from ENV, default to "local"
	env := os.Getenv("ENV")
	if env == "" {
		env = "local"
	}

	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/configs")   // Kubernetes mount
	viper.AddConfigPath("./configs")  // run from repo root
	viper.AddConfigPath("../configs") // IDE from cmd/

	// Config file is optional - continue with ENV variables
	if err := viper.ReadInConfig(); err != nil {
		fmt.Printf("No config file found (will use ENV variables): %v\n", err)
	}

	// Environment variables take precedence over the config file
	viper.AutomaticEnv()

	viper.BindEnv("env", "ENV")
	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("server.cors_origins", "ALLOWED_ORIGINS")
	viper.BindEnv("smtp.host", "SMTP_HOST")
	viper.BindEnv("smtp.port", "SMTP_PORT")
	viper.BindEnv("smtp.user", "SMTP_USER")
	viper.BindEnv("smtp.password", "SMTP_PASS")
	viper.BindEnv("smtp.secure", "SMTP_SECURE")
	viper.BindEnv("smtp.from", "SMTP_FROM")
	viper.BindEnv("smtp.to", "TO_EMAIL")

	viper.SetDefault("env", env)
	viper.SetDefault("server.port", "3000")
	viper.SetDefault("server.read_timeout_seconds", 30)
	viper.SetDefault("server.write_timeout_seconds", 60)
	viper.SetDefault("server.idle_timeout_seconds", 120)
	viper.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	viper.SetDefault("smtp.port", "587")
	viper.SetDefault("limits.max_file_bytes", 20<<20)
	viper.SetDefault("limits.max_total_bytes", 30<<20)
	viper.SetDefault("rate_limit.max_per_window", 10)
	viper.SetDefault("rate_limit.window_seconds", 60)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
