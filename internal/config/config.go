package config

import (
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type APIConfig struct {
	Addr                 string
	DatabaseURL          string
	TotalShares          int64
	StartingValue        float64
	StartingFunds        float64
	StartupSeedCompanies bool
}

type CLIConfig struct {
	APIBaseURL string
}

func LoadAPIFromEnv() APIConfig {
	_ = godotenv.Load()

	addr := strings.TrimSpace(os.Getenv("PORT"))
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("SIMVEST_API_ADDR", ":8080")
	}

	return APIConfig{
		Addr:                 addr,
		DatabaseURL:          strings.TrimSpace(os.Getenv("DATABASE_URL")),
		TotalShares:          envInt64Default("SIMVEST_TOTAL_SHARES", 1000),
		StartingValue:        envFloatDefault("SIMVEST_STARTING_VALUE", 500_000),
		StartingFunds:        envFloatDefault("SIMVEST_STARTING_FUNDS", 50_000),
		StartupSeedCompanies: envBoolDefault("SIMVEST_STARTUP_SEED_COMPANIES", true),
	}
}

func LoadCLIFromEnv() CLIConfig {
	_ = godotenv.Load()
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("SIMVEST_API_BASE_URL", "http://localhost:8080"), "/"),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt64Default(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envFloatDefault(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || f < 0 {
		return fallback
	}
	return f
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
