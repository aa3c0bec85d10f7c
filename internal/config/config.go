package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIURL         string
	PublicURL      string
	WSPath         string
	PollInterval   time.Duration
	ReconnectDelay time.Duration
	HTTPTimeout    time.Duration

	CredentialBackend string
	CredentialPath    string
	Redis             RedisConfig

	NotifyProvider     string
	NotifyCommand      string
	NotifyWebhookURL   string
	NotifyWebhookToken string
	NotifyPermission   string

	LogLevel  string
	LogFile   string
	ReportDir string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

func Load() Config {
	_ = godotenv.Load()

	apiURL := strings.TrimRight(readString("QMS_API_URL", "http://localhost:8080"), "/")
	home := stateDir()

	return Config{
		APIURL:         apiURL,
		PublicURL:      strings.TrimRight(readString("QMS_PUBLIC_URL", apiURL), "/"),
		WSPath:         readString("QMS_WS_PATH", "/ws-queue"),
		PollInterval:   readDurationMillis("QMS_POLL_INTERVAL_MS", 4000),
		ReconnectDelay: readDurationMillis("QMS_RECONNECT_DELAY_MS", 5000),
		HTTPTimeout:    readDurationSeconds("QMS_HTTP_TIMEOUT_SECONDS", 0),

		CredentialBackend: strings.ToLower(readString("QMS_CREDENTIAL_BACKEND", "file")),
		CredentialPath:    readString("QMS_CREDENTIAL_PATH", filepath.Join(home, "credential.json")),
		Redis: RedisConfig{
			Addr:     readString("QMS_REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("QMS_REDIS_PASSWORD"),
			DB:       readInt("QMS_REDIS_DB", 0),
			Prefix:   readString("QMS_REDIS_PREFIX", "queue-client:"),
		},

		NotifyProvider:     strings.ToLower(readString("QMS_NOTIFY_PROVIDER", "log")),
		NotifyCommand:      readString("QMS_NOTIFY_COMMAND", "notify-send"),
		NotifyWebhookURL:   os.Getenv("QMS_NOTIFY_WEBHOOK_URL"),
		NotifyWebhookToken: os.Getenv("QMS_NOTIFY_WEBHOOK_TOKEN"),
		NotifyPermission:   strings.ToLower(readString("QMS_NOTIFY_PERMISSION", "default")),

		LogLevel:  readString("LOG_LEVEL", "info"),
		LogFile:   readString("LOG_FILE", filepath.Join(home, "client.log")),
		ReportDir: readString("QMS_REPORT_DIR", "."),
	}
}

// stateDir is where the credential slot and log file live by default.
func stateDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".queue-client"
	}
	return filepath.Join(home, ".queue-client")
}

func readString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func readDurationMillis(key string, fallback int) time.Duration {
	value := readInt(key, fallback)
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Millisecond
}

func readDurationSeconds(key string, fallback int) time.Duration {
	value := readInt(key, fallback)
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
