package common

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	JWTSecret   string
	Network     string
	AddressFile string
	ExplorerURL string
	TokenSupply int64
	DB          DBConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func LoadConfig() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "super-secret-key-change-me"),
		Network:     getEnv("NETWORK", "local"),
		AddressFile: getEnv("ADDRESS_FILE", "contract_addresses/address.md"),
		ExplorerURL: getEnv("EXPLORER_URL", ""),
		TokenSupply: getEnvInt64("TOKEN_SUPPLY", 10_000_000_00000000),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "housebusiness"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
