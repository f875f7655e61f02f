// Package config loads server settings from the environment and an optional
// YAML file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime setting of the demo server.
type Config struct {
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"app_env"`
	CORSOrigin  string `mapstructure:"cors_origin"`
	ServiceName string `mapstructure:"service_name"`

	StraddleAPIKey  string `mapstructure:"straddle_api_key"`
	StraddleEnv     string `mapstructure:"straddle_env"`
	StraddleBaseURL string `mapstructure:"straddle_base_url"`

	// NgrokURL is only reported at startup as the public webhook address.
	NgrokURL     string `mapstructure:"ngrok_url"`
	GeneratorURL string `mapstructure:"generator_url"`

	EnableLogStream bool `mapstructure:"enable_log_stream"`
	EnableUnmask    bool `mapstructure:"enable_unmask"`
	DebugRoutes     bool `mapstructure:"debug_routes"`

	SSEHeartbeat time.Duration `mapstructure:"sse_heartbeat"`
	PushBuffer   int           `mapstructure:"push_buffer"`

	AMQPURL      string `mapstructure:"amqp_url"`
	AMQPExchange string `mapstructure:"amqp_exchange"`
	OTLPEndpoint string `mapstructure:"otel_exporter_otlp_endpoint"`
}

var defaults = map[string]any{
	"port":                        3001,
	"app_env":                     "development",
	"cors_origin":                 "http://localhost:5173",
	"service_name":                "nerdcon-demo",
	"straddle_api_key":            "",
	"straddle_env":                "sandbox",
	"straddle_base_url":           "",
	"ngrok_url":                   "",
	"generator_url":               "http://localhost:8081",
	"enable_log_stream":           false,
	"enable_unmask":               false,
	"debug_routes":                false,
	"sse_heartbeat":               "30s",
	"push_buffer":                 64,
	"amqp_url":                    "",
	"amqp_exchange":               "demo.events",
	"otel_exporter_otlp_endpoint": "",
}

// Load reads the configuration. Environment variables override values from
// the YAML file at path, which may be empty.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("app_env", "APP_ENV", "NODE_ENV"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.StraddleEnv {
	case "sandbox", "production":
	default:
		return fmt.Errorf("invalid STRADDLE_ENV %q: want sandbox or production", c.StraddleEnv)
	}
	if c.SSEHeartbeat <= 0 {
		return errors.New("SSE_HEARTBEAT must be positive")
	}
	if c.PushBuffer < 2 {
		return fmt.Errorf("PUSH_BUFFER must be at least 2, got %d", c.PushBuffer)
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
