package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port                  string
	AllowedOrigin         string
	DatabaseURL           string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	DefaultLocale         string
	DiscountPolicy        string
	ExportCacheTTLMinutes int
	SessionTTLMinutes     int
	AuthSecret            string
	AccessTokenTTLMinutes int
}

func Load() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	exportTTL, err := strconv.Atoi(getEnv("EXPORT_CACHE_TTL_MINUTES", "60"))
	if err != nil || exportTTL < 1 {
		exportTTL = 60
	}
	sessionTTL, err := strconv.Atoi(getEnv("SESSION_TTL_MINUTES", "240"))
	if err != nil || sessionTTL < 1 {
		sessionTTL = 240
	}
	tokenTTL, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_MINUTES", "480"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 480
	}

	discountPolicy := strings.ToLower(getEnv("DISCOUNT_POLICY", "floor"))
	if discountPolicy != "floor" && discountPolicy != "signed" {
		discountPolicy = "floor"
	}

	cfg := Config{
		Port:                  getEnv("PORT", "8080"),
		AllowedOrigin:         getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               redisDB,
		DefaultLocale:         getEnv("DEFAULT_LOCALE", "en_US"),
		DiscountPolicy:        discountPolicy,
		ExportCacheTTLMinutes: exportTTL,
		SessionTTLMinutes:     sessionTTL,
		AuthSecret:            strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes: tokenTTL,
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
