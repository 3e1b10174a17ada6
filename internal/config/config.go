package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends.
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config holds the process configuration.
type Config struct {
	MongoURI         string
	DatabaseName     string
	Port             string
	MongoTimeout     time.Duration
	Store            string
	CORSAllowOrigins []string
	SeedSampleData   bool
	Env              string
}

// Development reports whether verbose logging and gin debug mode are wanted.
func (c Config) Development() bool {
	return c.Env == "development"
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("reading .env: %w", err)
	}
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "stockflow")
	v.SetDefault("PORT", "8000")
	v.SetDefault("MONGO_TIMEOUT", "5s")
	v.SetDefault("STORE", StoreMongo)
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("SEED_SAMPLE_DATA", false)
	v.SetDefault("APP_ENV", "production")
	v.AutomaticEnv()
	return v
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		MongoURI:       v.GetString("MONGODB_URI"),
		DatabaseName:   v.GetString("DATABASE_NAME"),
		Port:           v.GetString("PORT"),
		MongoTimeout:   v.GetDuration("MONGO_TIMEOUT"),
		Store:          strings.ToLower(v.GetString("STORE")),
		SeedSampleData: v.GetBool("SEED_SAMPLE_DATA"),
		Env:            strings.ToLower(v.GetString("APP_ENV")),
	}
	for _, o := range strings.Split(v.GetString("CORS_ALLOW_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowOrigins = append(cfg.CORSAllowOrigins, o)
		}
	}

	switch {
	case cfg.Store != StoreMongo && cfg.Store != StoreMemory:
		return Config{}, fmt.Errorf("unknown STORE %q", cfg.Store)
	case cfg.Store == StoreMongo && cfg.MongoURI == "":
		return Config{}, errors.New("MONGODB_URI is empty")
	case cfg.DatabaseName == "":
		return Config{}, errors.New("DATABASE_NAME is empty")
	case cfg.MongoTimeout <= 0:
		return Config{}, fmt.Errorf("invalid MONGO_TIMEOUT %q", v.GetString("MONGO_TIMEOUT"))
	}
	return cfg, nil
}
