package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is the service configuration, loaded from the environment.
type Config struct {
	Port        string
	MetricsPort string
	LogLevel    string

	// Seed for the simulation's random source. 0 is a valid seed; set
	// SIM_SEED to reproduce a run exactly.
	Seed int64
	// AgentTypes is the default agent mix, comma separated, e.g.
	// "LiquidityProvider,NoiseTrader,MarketTaker".
	AgentTypes []string
	// BaselineCash is each agent's starting cash in cents.
	BaselineCash int64
	// CandleTimeframe is the default candlestick bucket size in ticks.
	CandleTimeframe int64
}

// Load reads the configuration from environment variables, applying
// defaults for anything unset.
func Load() *Config {
	seed, _ := strconv.ParseInt(getEnv("SIM_SEED", "1"), 10, 64)
	cash, _ := strconv.ParseInt(getEnv("SIM_BASELINE_CASH", "10000000"), 10, 64)
	timeframe, _ := strconv.ParseInt(getEnv("SIM_CANDLE_TIMEFRAME", "10"), 10, 64)

	var agents []string
	if raw := os.Getenv("SIM_DEFAULT_AGENTS"); raw != "" {
		for _, typ := range strings.Split(raw, ",") {
			if typ = strings.TrimSpace(typ); typ != "" {
				agents = append(agents, typ)
			}
		}
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		MetricsPort:     getEnv("METRICS_PORT", "9090"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Seed:            seed,
		AgentTypes:      agents,
		BaselineCash:    cash,
		CandleTimeframe: timeframe,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
