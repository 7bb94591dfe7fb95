package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("ENV_FILE", "does-not-exist.env")
	t.Setenv("STORE_BACKEND", "mongo")
	t.Setenv("MONGODB_URL", "mongodb://localhost:27017")
	t.Setenv("MONGODB_DATABASE", "gateway_test")
	t.Setenv("API_KEYS", "alpha, beta,,gamma ")
	t.Setenv("REDIS_HOST", "localhost")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	require.Equal(t, "gateway_test", cfg.MongoDB.Database)
	require.Equal(t, 10*time.Second, cfg.MongoDB.Timeout)
	require.Equal(t, []string{"alpha", "beta", "gamma"}, cfg.Auth.APIKeys)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr())
	require.Equal(t, "8000", cfg.Server.Port)
}

func TestLoadConfig_MongoURIFallback(t *testing.T) {
	t.Setenv("ENV_FILE", "does-not-exist.env")
	t.Setenv("STORE_BACKEND", "mongo")
	t.Setenv("MONGODB_URL", "")
	t.Setenv("MONGODB_URI", "mongodb://fallback:27017")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "mongodb://fallback:27017", cfg.MongoDB.URI)
}

func TestLoadConfig_MissingMongoURL(t *testing.T) {
	t.Setenv("ENV_FILE", "does-not-exist.env")
	t.Setenv("STORE_BACKEND", "mongo")
	t.Setenv("MONGODB_URL", "")
	t.Setenv("MONGODB_URI", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfig_MemoryBackend(t *testing.T) {
	t.Setenv("ENV_FILE", "does-not-exist.env")
	t.Setenv("STORE_BACKEND", "Memory")
	t.Setenv("MONGODB_URL", "")
	t.Setenv("MONGODB_URI", "")
	t.Setenv("API_KEYS", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, BackendMemory, cfg.Store.Backend)
	require.Empty(t, cfg.Auth.APIKeys)
}

func TestLoadConfig_UnknownBackend(t *testing.T) {
	t.Setenv("ENV_FILE", "does-not-exist.env")
	t.Setenv("STORE_BACKEND", "cassandra")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestSplitList(t *testing.T) {
	require.Equal(t, []string{}, SplitList(""))
	require.Equal(t, []string{}, SplitList(" , ,"))
	require.Equal(t, []string{"a", "b"}, SplitList("a,b"))
}
