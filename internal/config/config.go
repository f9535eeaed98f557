package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

type Config struct {
	Env                   string
	LogLevel              string
	Port                  string
	AllowedOrigin         string
	StorageDriver         string
	DataDir               string
	DatabaseURL           string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	RedisPrefix           string
	AuthSecret            string
	AccessTokenTTLMinutes int
	StrictStock           bool
	StoreTimezone         string
	StoreName             string
	StoreCNPJ             string
	StoreAddress          string
	SeedAdminPassword     string
	SeedOperatorPassword  string
}

// Load reads the process environment. A .env file, when present, is loaded
// into the environment by main before Load runs.
func Load() Config {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	tokenTTL := v.GetInt("ACCESS_TOKEN_TTL_MINUTES")
	if tokenTTL < 1 {
		tokenTTL = 480
	}
	redisDB := v.GetInt("REDIS_DB")
	if redisDB < 0 {
		redisDB = 0
	}

	cfg := Config{
		Env:                   strings.ToLower(v.GetString("APP_ENV")),
		LogLevel:              strings.ToLower(v.GetString("LOG_LEVEL")),
		Port:                  v.GetString("PORT"),
		AllowedOrigin:         v.GetString("ALLOWED_ORIGIN"),
		StorageDriver:         strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
		DataDir:               v.GetString("DATA_DIR"),
		DatabaseURL:           v.GetString("DATABASE_URL"),
		RedisAddr:             v.GetString("REDIS_ADDR"),
		RedisPassword:         v.GetString("REDIS_PASSWORD"),
		RedisDB:               redisDB,
		RedisPrefix:           v.GetString("REDIS_PREFIX"),
		AuthSecret:            strings.TrimSpace(v.GetString("AUTH_SECRET")),
		AccessTokenTTLMinutes: tokenTTL,
		StrictStock:           v.GetBool("STRICT_STOCK"),
		StoreTimezone:         v.GetString("STORE_TIMEZONE"),
		StoreName:             v.GetString("STORE_NAME"),
		StoreCNPJ:             v.GetString("STORE_CNPJ"),
		StoreAddress:          v.GetString("STORE_ADDRESS"),
		SeedAdminPassword:     v.GetString("SEED_ADMIN_PASSWORD"),
		SeedOperatorPassword:  v.GetString("SEED_OPERATOR_PASSWORD"),
	}
	if cfg.StorageDriver == "" {
		cfg.StorageDriver = cfg.inferDriver()
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PORT", "8080")
	v.SetDefault("ALLOWED_ORIGIN", "http://127.0.0.1:3000")
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PREFIX", "minimercado")
	v.SetDefault("ACCESS_TOKEN_TTL_MINUTES", 480)
	v.SetDefault("STRICT_STOCK", false)
	v.SetDefault("STORE_TIMEZONE", "America/Sao_Paulo")
	v.SetDefault("STORE_NAME", "MiniMarket Pro")
	v.SetDefault("STORE_CNPJ", "12.345.678/0001-90")
	v.SetDefault("STORE_ADDRESS", "Rua das Flores, 123 - Centro")
}

// inferDriver picks postgres when a database URL is configured, then redis,
// then falls back to the in-process store.
func (c Config) inferDriver() string {
	switch {
	case c.DatabaseURL != "":
		return "postgres"
	case c.RedisAddr != "":
		return "redis"
	default:
		return "memory"
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

// Location resolves STORE_TIMEZONE against the embedded zone database, so
// minimal images without /usr/share/zoneinfo still get the store's zone. An
// unknown zone falls back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.StoreTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
