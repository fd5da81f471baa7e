// README: Config loader with env defaults for HTTP, Telegram, storage, geo providers and logging.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingToken = errors.New("BOT_TOKEN is required")

const (
	FaresFromFile = "file"
	FaresFromDB   = "db"

	GeocoderNominatim = "nominatim"
	GeocoderGoogle    = "google"

	RouterNone   = "none"
	RouterOSRM   = "osrm"
	RouterGoogle = "google"
)

type GeoConfig struct {
	Geocoder     string
	Router       string
	NominatimURL string
	OSRMURL      string
	UserAgent    string
	Timeout      time.Duration
	GoogleKey    string
}

type Config struct {
	HTTP struct {
		Addr string
	}
	Telegram struct {
		Token         string
		BaseURL       string
		WebhookSecret string
		AdminChatID   int64
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr string
	}
	Fares struct {
		File   string
		Source string
	}
	Geo GeoConfig
	AI  struct {
		GeminiKey    string
		MonthlyQuota int
	}
	Log struct {
		Level string
		Dev   bool
	}
	Contacts struct {
		DispatcherURL   string
		DispatcherPhone string
		SiteURL         string
	}
	SessionTTL time.Duration
	TimeZone   string
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the config from the process environment only.
func FromEnv() (Config, error) {
	var cfg Config
	cfg.Telegram.Token = strings.TrimSpace(os.Getenv("BOT_TOKEN"))
	if cfg.Telegram.Token == "" {
		return Config{}, ErrMissingToken
	}
	cfg.Telegram.BaseURL = strings.TrimRight(envOrDefault("APP_BASE_URL", ""), "/")
	cfg.Telegram.WebhookSecret = envOrDefault("WEBHOOK_SECRET", "")
	cfg.Telegram.AdminChatID = envOrDefaultInt64("ADMIN_CHAT_ID", 0)

	cfg.HTTP.Addr = envOrDefault("TRANSFER_HTTP_ADDR", ":"+envOrDefault("PORT", "8080"))
	cfg.DB.DSN = envOrDefault("TRANSFER_DB_DSN", "")
	cfg.Redis.Addr = envOrDefault("TRANSFER_REDIS_ADDR", "")

	cfg.Fares.File = envOrDefault("TRANSFER_FARES_FILE", "")
	cfg.Fares.Source = strings.ToLower(envOrDefault("TRANSFER_FARES_SOURCE", FaresFromFile))
	if cfg.Fares.Source != FaresFromFile && cfg.Fares.Source != FaresFromDB {
		return Config{}, fmt.Errorf("TRANSFER_FARES_SOURCE: unknown source %q", cfg.Fares.Source)
	}
	if cfg.Fares.Source == FaresFromDB && cfg.DB.DSN == "" {
		return Config{}, errors.New("TRANSFER_FARES_SOURCE=db requires TRANSFER_DB_DSN")
	}

	cfg.Geo.Geocoder = strings.ToLower(envOrDefault("TRANSFER_GEOCODER", GeocoderNominatim))
	cfg.Geo.Router = strings.ToLower(envOrDefault("TRANSFER_ROUTER", RouterNone))
	cfg.Geo.NominatimURL = envOrDefault("NOMINATIM_URL", "")
	cfg.Geo.OSRMURL = envOrDefault("OSRM_URL", "")
	cfg.Geo.UserAgent = envOrDefault("TRANSFER_USER_AGENT", "transferair-bot/1.0")
	cfg.Geo.Timeout = envOrDefaultDuration("TRANSFER_GEO_TIMEOUT", 8*time.Second)
	cfg.Geo.GoogleKey = envOrDefault("GOOGLE_MAPS_API_KEY", "")
	switch cfg.Geo.Geocoder {
	case GeocoderNominatim, GeocoderGoogle:
	default:
		return Config{}, fmt.Errorf("TRANSFER_GEOCODER: unknown geocoder %q", cfg.Geo.Geocoder)
	}
	switch cfg.Geo.Router {
	case RouterNone, RouterOSRM, RouterGoogle:
	default:
		return Config{}, fmt.Errorf("TRANSFER_ROUTER: unknown router %q", cfg.Geo.Router)
	}
	if (cfg.Geo.Geocoder == GeocoderGoogle || cfg.Geo.Router == RouterGoogle) && cfg.Geo.GoogleKey == "" {
		return Config{}, errors.New("google geo providers require GOOGLE_MAPS_API_KEY")
	}

	cfg.AI.GeminiKey = envOrDefault("GEMINI_API_KEY", "")
	cfg.AI.MonthlyQuota = envOrDefaultInt("TRANSFER_AI_MONTHLY_QUOTA", 100)
	cfg.Log.Level = envOrDefault("TRANSFER_LOG_LEVEL", "info")
	cfg.Log.Dev = envOrDefaultBool("TRANSFER_LOG_DEV", false)

	cfg.Contacts.DispatcherURL = envOrDefault("DISPATCHER_URL", "https://t.me/zhelektown")
	cfg.Contacts.DispatcherPhone = envOrDefault("DISPATCHER_PHONE", "+79340241414")
	cfg.Contacts.SiteURL = envOrDefault("SITE_URL", "https://transferkmw.ru")

	cfg.SessionTTL = envOrDefaultDuration("TRANSFER_SESSION_TTL", 24*time.Hour)
	cfg.TimeZone = envOrDefault("TRANSFER_TZ", "Europe/Moscow")
	return cfg, nil
}

// WebhookEnabled reports whether updates arrive by webhook rather than long polling.
func (c Config) WebhookEnabled() bool {
	return c.Telegram.BaseURL != ""
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
