package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, k := range []string{"MONGODB_URI", "DATABASE_NAME", "PORT", "MONGO_TIMEOUT", "STORE", "CORS_ALLOW_ORIGINS", "SEED_SAMPLE_DATA", "APP_ENV"} {
		t.Setenv(k, "")
	}

	cfg, err := fromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "stockflow", cfg.DatabaseName)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.MongoTimeout)
	assert.Equal(t, StoreMongo, cfg.Store)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
	assert.False(t, cfg.SeedSampleData)
	assert.False(t, cfg.Development())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://db:27017")
	t.Setenv("DATABASE_NAME", "shop")
	t.Setenv("PORT", "9090")
	t.Setenv("MONGO_TIMEOUT", "2s")
	t.Setenv("STORE", "Memory")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://localhost:3000, https://shop.example.com")
	t.Setenv("SEED_SAMPLE_DATA", "true")
	t.Setenv("APP_ENV", "development")

	cfg, err := fromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, "mongodb://db:27017", cfg.MongoURI)
	assert.Equal(t, "shop", cfg.DatabaseName)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.MongoTimeout)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, []string{"http://localhost:3000", "https://shop.example.com"}, cfg.CORSAllowOrigins)
	assert.True(t, cfg.SeedSampleData)
	assert.True(t, cfg.Development())
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv("STORE", "postgres")

	_, err := fromViper(newViper())
	assert.Error(t, err)
}
