package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	SiteURL     string
	SiteID      string

	StoreBackend   string // sheets | mysql
	SheetID        string
	NexusSheetID   string
	ServiceAccount string // base64 service account JSON
	SheetsRPS      int
	MySQLDSN       string

	RedisAddr  string
	RedisDB    int
	RedisPass  string
	SessionTTL time.Duration

	PayPalBase     string
	PayPalClientID string
	PayPalSecret   string

	MirrorWorkers int
}

const (
	BackendSheets = "sheets"
	BackendMySQL  = "mysql"
)

// Load reads the environment, after merging a local .env file when one exists.
func Load() Config {
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ""),
		SiteURL:        strings.TrimRight(env("SITE_URL", "https://www.slowmorocco.com"), "/"),
		SiteID:         env("SITE_ID", "slow-morocco"),
		StoreBackend:   strings.ToLower(env("STORE_BACKEND", BackendSheets)),
		SheetID:        env("GOOGLE_SHEET_ID", ""),
		NexusSheetID:   env("NEXUS_SHEET_ID", ""),
		ServiceAccount: env("GOOGLE_SERVICE_ACCOUNT_BASE64", ""),
		SheetsRPS:      atoi("SHEETS_RPS", 5),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/slowtravel?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		SessionTTL:     time.Duration(atoi("SESSION_TTL_SECONDS", 3600)) * time.Second,
		PayPalBase:     env("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
		PayPalClientID: env("PAYPAL_CLIENT_ID", ""),
		PayPalSecret:   env("PAYPAL_SECRET", ""),
		MirrorWorkers:  atoi("MIRROR_WORKERS", 4),
	}
	return c
}

// Warnings lists missing credentials. Load does not log them so the caller can
// configure the global logger from AppEnv first.
func (c Config) Warnings() []string {
	var out []string
	if c.StoreBackend == BackendSheets && c.SheetID == "" {
		out = append(out, "GOOGLE_SHEET_ID is empty")
	}
	if c.StoreBackend == BackendSheets && c.ServiceAccount == "" {
		out = append(out, "GOOGLE_SERVICE_ACCOUNT_BASE64 is empty")
	}
	if c.PayPalClientID == "" || c.PayPalSecret == "" {
		out = append(out, "PAYPAL_CLIENT_ID / PAYPAL_SECRET are empty; payments disabled")
	}
	return out
}

// LogWarnings writes Warnings through the global logger.
func (c Config) LogWarnings() {
	for _, w := range c.Warnings() {
		log.Warn().Msg(w)
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
