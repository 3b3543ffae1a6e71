package main

import (
	"os"
	"time"
)

type Config struct {
	Port       string
	Env        string
	RedisURL   string
	CartTTL    time.Duration
	AdminEmail string
	AdminName  string
}

func LoadConfig() Config {
	return Config{
		Port:       getEnv("PORT", "8080"),
		Env:        getEnv("ENV", "development"),
		RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379"),
		CartTTL:    time.Hour * 24 * 7,
		AdminEmail: getEnv("ADMIN_EMAIL", "admin@marketplace.local"),
		AdminName:  getEnv("ADMIN_NAME", "Administrator"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
