package config

import (
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Gemini    GeminiConfig    `json:"gemini"`
	Session   SessionConfig   `json:"session"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Agent     AgentConfig     `json:"agent"`
	Analytics AnalyticsConfig `json:"analytics"`
	Proposal  ProposalConfig  `json:"proposal"`
	Auth      AuthConfig      `json:"auth"`
	Debug     bool            `json:"debug"`
}

type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslmode"`
}

type GeminiConfig struct {
	APIKey          string        `json:"api_key"`
	Model           string        `json:"model"`
	BaseURL         string        `json:"base_url"`
	Temperature     float64       `json:"temperature"`
	TopP            float64       `json:"top_p"`
	TopK            int           `json:"top_k"`
	MaxOutputTokens int           `json:"max_output_tokens"`
	RequestTimeout  time.Duration `json:"-"`
}

type SessionConfig struct {
	TTL time.Duration `json:"-"`
}

type RateLimitConfig struct {
	Limit  int           `json:"limit"`
	Window time.Duration `json:"-"`
}

type AgentConfig struct {
	MaxSteps int           `json:"max_steps"`
	Budget   time.Duration `json:"-"`
}

type AnalyticsConfig struct {
	Endpoint string `json:"endpoint"`
	Secret   string `json:"secret"`
}

type ProposalConfig struct {
	Secret string        `json:"secret"`
	TTL    time.Duration `json:"-"`
}

type AuthConfig struct {
	JWTSecret string `json:"jwt_secret"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "shopchat")
	viper.SetDefault("database.database", "shopchat")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("gemini.model", "gemini-3-pro-preview")
	viper.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	viper.SetDefault("gemini.temperature", 0.7)
	viper.SetDefault("gemini.top_p", 0.95)
	viper.SetDefault("gemini.top_k", 40)
	viper.SetDefault("gemini.max_output_tokens", 8192)
	viper.SetDefault("rate_limit.limit", 10)
	viper.SetDefault("agent.max_steps", 5)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Durations are configured as integer seconds
	cfg.Session.TTL = secondsOrDefault("session.ttl_seconds", 30*time.Minute)
	cfg.RateLimit.Window = secondsOrDefault("rate_limit.window_seconds", time.Minute)
	cfg.Agent.Budget = secondsOrDefault("agent.budget_seconds", 25*time.Second)
	cfg.Gemini.RequestTimeout = secondsOrDefault("gemini.timeout_seconds", 30*time.Second)
	cfg.Proposal.TTL = secondsOrDefault("proposal.ttl_seconds", 10*time.Minute)

	loadEnvOverrides(&cfg)

	return &cfg, nil
}

func secondsOrDefault(key string, def time.Duration) time.Duration {
	if secs := viper.GetInt(key); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}

func loadEnvOverrides(cfg *Config) {
	if port := os.Getenv("SHOPCHAT_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if host := os.Getenv("SHOPCHAT_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Gemini.APIKey = key
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		cfg.Gemini.Model = model
	}
	if endpoint := os.Getenv("SHOPCHAT_ANALYTICS_ENDPOINT"); endpoint != "" {
		cfg.Analytics.Endpoint = endpoint
	}
	if secret := os.Getenv("SHOPCHAT_ANALYTICS_SECRET"); secret != "" {
		cfg.Analytics.Secret = secret
	}
	if secret := os.Getenv("SHOPCHAT_PROPOSAL_SECRET"); secret != "" {
		cfg.Proposal.Secret = secret
	}
	if secret := os.Getenv("SHOPCHAT_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if debug := os.Getenv("SHOPCHAT_DEBUG"); debug == "1" || debug == "true" {
		cfg.Debug = true
	}

	// Database overrides
	if dbHost := os.Getenv("POSTGRES_HOST"); dbHost != "" {
		cfg.Database.Host = dbHost
	}
	if dbPort := os.Getenv("POSTGRES_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			cfg.Database.Port = port
		}
	}
	if dbUser := os.Getenv("POSTGRES_USER"); dbUser != "" {
		cfg.Database.User = dbUser
	}
	if dbPass := os.Getenv("POSTGRES_PASSWORD"); dbPass != "" {
		cfg.Database.Password = dbPass
	}
	if dbName := os.Getenv("POSTGRES_DB"); dbName != "" {
		cfg.Database.Database = dbName
	}
}
