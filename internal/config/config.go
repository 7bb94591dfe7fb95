package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Config holds application configuration. It is loaded once at startup and
// treated as read-only afterwards.
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	MongoDB MongoDBConfig
	Auth    AuthConfig
	Redis   RedisConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type StoreConfig struct {
	Backend string
}

type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	ConnectAttempts int
}

// AuthConfig lists the accepted API keys. RedisSet optionally names a Redis
// set whose members are merged into the allow-list at startup.
type AuthConfig struct {
	APIKeys  []string
	RedisSet string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port for the Redis client.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// LoadConfig loads configuration from environment variables and an optional .env file
func LoadConfig() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8000")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_READ_TIMEOUT", 30)
	viper.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 10)
	viper.SetDefault("STORE_BACKEND", BackendMongo)
	viper.SetDefault("MONGODB_DATABASE", "pdd")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("MONGODB_CONNECT_ATTEMPTS", 5)
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)

	uri := viper.GetString("MONGODB_URL")
	if uri == "" {
		uri = viper.GetString("MONGODB_URI")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            viper.GetString("SERVER_PORT"),
			Host:            viper.GetString("SERVER_HOST"),
			ReadTimeout:     time.Duration(viper.GetInt("SERVER_READ_TIMEOUT")) * time.Second,
			ShutdownTimeout: time.Duration(viper.GetInt("SERVER_SHUTDOWN_TIMEOUT")) * time.Second,
		},
		Store: StoreConfig{
			Backend: strings.ToLower(strings.TrimSpace(viper.GetString("STORE_BACKEND"))),
		},
		MongoDB: MongoDBConfig{
			URI:             uri,
			Database:        viper.GetString("MONGODB_DATABASE"),
			Timeout:         time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
			ConnectAttempts: viper.GetInt("MONGODB_CONNECT_ATTEMPTS"),
		},
		Auth: AuthConfig{
			APIKeys:  SplitList(viper.GetString("API_KEYS")),
			RedisSet: viper.GetString("API_KEYS_REDIS_SET"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
	}

	switch cfg.Store.Backend {
	case BackendMongo:
		if cfg.MongoDB.URI == "" {
			return nil, fmt.Errorf("environment variable MONGODB_URL is required for the %s backend", BackendMongo)
		}
	case BackendMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store.Backend)
	}
	if cfg.MongoDB.ConnectAttempts < 1 {
		cfg.MongoDB.ConnectAttempts = 1
	}

	return cfg, nil
}

// SplitList splits a comma separated list, trimming blanks and dropping empty entries.
func SplitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
