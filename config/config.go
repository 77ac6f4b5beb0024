package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Strategy names accepted by PRIMARY_STRATEGY.
const (
	StrategyBrowser = "browser"
	StrategyDirect  = "direct"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	StorageBackend  string
	SQLitePath      string
	CSVOutputPath   string
	ListingsCSVPath string

	BaseURL   string
	EntryURLs map[string]string
	Language  string
	Currency  string

	PrimaryStrategy string
	FallbackEnabled bool
	ChromeBin       string
	Headless        bool

	PollAttempts   int
	PollDelays     []time.Duration
	PollJitter     time.Duration
	MinResultBytes int
	SessionTimeout time.Duration
	StepRetries    int

	// Result URL query parameters.
	SearchParam  string
	BatchParam   string
	WarningParam string

	PriceMin float64
	PriceMax float64

	MaxConcurrency int
	RateLimitMs    int

	LocationsFile string
	ScheduleSpec  string
	LogLevel      string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	baseURL := strings.TrimRight(getEnv("CARJET_BASE_URL", "https://www.carjet.com"), "/")

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "rental_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		StorageBackend:  getEnv("STORAGE_BACKEND", "csv"),
		SQLitePath:      getEnv("SQLITE_PATH", "./output/prices.db"),
		CSVOutputPath:   getEnv("CSV_OUTPUT_PATH", "./output/raw_listings.csv"),
		ListingsCSVPath: getEnv("LISTINGS_CSV_PATH", "./output/listings.csv"),

		BaseURL:   baseURL,
		EntryURLs: DefaultEntryURLs(baseURL),
		Language:  getEnv("CARJET_LANGUAGE", "pt"),
		Currency:  getEnv("CARJET_CURRENCY", "EUR"),

		PrimaryStrategy: getEnv("PRIMARY_STRATEGY", StrategyBrowser),
		FallbackEnabled: getEnvBool("FALLBACK_ENABLED", true),
		ChromeBin:       getEnv("CHROME_BIN", ""),
		Headless:        getEnvBool("HEADLESS", true),

		PollAttempts:   getEnvInt("POLL_ATTEMPTS", 8),
		PollDelays:     getEnvSeconds("POLL_DELAYS", DefaultPollDelays()),
		PollJitter:     time.Duration(getEnvInt("POLL_JITTER_MS", 1000)) * time.Millisecond,
		MinResultBytes: getEnvInt("MIN_RESULT_BYTES", 8000),
		SessionTimeout: time.Duration(getEnvInt("SESSION_TIMEOUT_SEC", 240)) * time.Second,
		StepRetries:    getEnvInt("STEP_RETRIES", 2),

		SearchParam:  getEnv("RESULT_SEARCH_PARAM", "s"),
		BatchParam:   getEnv("RESULT_BATCH_PARAM", "b"),
		WarningParam: getEnv("RESULT_WARNING_PARAM", "war"),

		PriceMin: getEnvFloat("PRICE_MIN", 5),
		PriceMax: getEnvFloat("PRICE_MAX", 15000),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 2),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 5000),

		LocationsFile: getEnv("LOCATIONS_FILE", "config/locations.json5"),
		ScheduleSpec:  getEnv("SCHEDULE_SPEC", "0 7,13,19 * * *"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

// DefaultPollDelays is the increasing wait sequence between result polls.
func DefaultPollDelays() []time.Duration {
	secs := []int{4, 5, 6, 7, 8, 9, 10, 12}
	out := make([]time.Duration, len(secs))
	for i, s := range secs {
		out[i] = time.Duration(s) * time.Second
	}
	return out
}

// DefaultEntryURLs maps each display language to its search-form page.
func DefaultEntryURLs(baseURL string) map[string]string {
	return map[string]string{
		"en": baseURL + "/",
		"pt": baseURL + "/pt/",
		"es": baseURL + "/es/",
		"fr": baseURL + "/fr/",
		"de": baseURL + "/de/",
		"it": baseURL + "/it/",
		"nl": baseURL + "/nl/",
	}
}

// EntryURL returns the search-form page for lang, defaulting to English.
func (c *Config) EntryURL(lang string) string {
	if u, ok := c.EntryURLs[lang]; ok {
		return u
	}
	if u, ok := c.EntryURLs["en"]; ok {
		return u
	}
	return c.BaseURL + "/"
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

// getEnvSeconds parses a comma separated list of seconds such as "4,5,6".
// Any malformed entry discards the whole value.
func getEnvSeconds(key string, fallback []time.Duration) []time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []time.Duration
	for _, part := range strings.Split(val, ",") {
		n, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || n < 0 {
			return fallback
		}
		out = append(out, time.Duration(n*float64(time.Second)))
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
