package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	BaseURL       string
	SearchPath    string
	MyBidsPath    string
	WonPath       string
	ReadyText     string
	UserAgent     string
	ChromeBin     string
	ChromeProfile string
	StoreDriver   string
	SQLitePath    string
	LogFile       string
	LogLevel      string
	CSVOutputDir  string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	Headless bool

	DefaultPages   int
	PageSize       int
	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int

	PageTimeout     time.Duration
	ReadyWait       time.Duration
	ReadyPoll       time.Duration
	PagePause       time.Duration
	HTTPTimeout     time.Duration
	RefreshInterval time.Duration
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	dataDir := defaultDataDir()

	return &Config{
		BaseURL:       strings.TrimRight(getEnv("SLIBUY_BASE_URL", "https://www.slibuy.com"), "/"),
		SearchPath:    getEnv("SLIBUY_SEARCH_PATH", "/search"),
		MyBidsPath:    getEnv("SLIBUY_MYBIDS_PATH", "/mybids"),
		WonPath:       getEnv("SLIBUY_WON_PATH", "/mywon"),
		ReadyText:     getEnv("READY_TEXT", "Shipping Fee"),
		UserAgent:     getEnv("USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		ChromeBin:     getEnv("CHROME_BIN", ""),
		ChromeProfile: getEnv("CHROME_PROFILE_DIR", filepath.Join(dataDir, "chrome")),
		StoreDriver:   getEnv("STORE_DRIVER", "sqlite"),
		SQLitePath:    getEnv("SQLITE_PATH", filepath.Join(dataDir, "slibuy.db")),
		LogFile:       getEnv("LOG_FILE", filepath.Join(dataDir, "slibuy.log")),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		CSVOutputDir:  getEnv("CSV_OUTPUT_DIR", "./output"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "slibuy"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		Headless: getEnvBool("HEADLESS", true),

		DefaultPages:   getEnvInt("DEFAULT_PAGES", 10),
		PageSize:       getEnvInt("PAGE_SIZE", 100),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 2),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 1000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),

		PageTimeout:     getEnvDuration("PAGE_TIMEOUT_MS", 20*time.Second),
		ReadyWait:       getEnvDuration("READY_WAIT_MS", 6*time.Second),
		ReadyPoll:       getEnvDuration("READY_POLL_MS", time.Second),
		PagePause:       getEnvDuration("PAGE_PAUSE_MS", 300*time.Millisecond),
		HTTPTimeout:     getEnvDuration("HTTP_TIMEOUT_MS", 30*time.Second),
		RefreshInterval: getEnvDuration("REFRESH_INTERVAL_MS", 10*time.Second),
	}
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

// SearchURL returns the absolute URL of the given result page (1-based).
func (c *Config) SearchURL(page int) string {
	return c.BaseURL + c.SearchPath + "?page=" + strconv.Itoa(page)
}

// PageURL joins a site-relative path to the base URL.
func (c *Config) PageURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.BaseURL + "/" + strings.TrimLeft(path, "/")
}

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "slibuy")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "slibuy")
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

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration reads a millisecond count.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil && n >= 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return fallback
}
