package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mr1hm/go-disaster-alerts/internal/ingestion"
)

type SourceKind string

const (
	SourceLive      SourceKind = "live"
	SourceSeismic   SourceKind = "seismic"
	SourceHazard    SourceKind = "hazard"
	SourceMock      SourceKind = "mock"
	SourceSQLite    SourceKind = "sqlite"
	SourceFirestore SourceKind = "firestore"
)

type Config struct {
	Server        ServerConfig
	GRPC          GRPCConfig
	Worker        WorkerConfig
	Source        SourceConfig
	DB            DatabaseConfig
	Firestore     FirestoreConfig
	Monitor       MonitorConfig
	Notifications NotificationsConfig
	Reports       ReportsConfig
	Logging       LoggingConfig
}

type ServerConfig struct {
	Host      string
	Port      int
	RateLimit int // requests per second per client
}

type GRPCConfig struct {
	Port int
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type SourceConfig struct {
	Kind        SourceKind
	USGSURL     string
	EONETURL    string
	FeedTimeout time.Duration
	// ShelterSeed makes synthetic shelters deterministic when non-zero.
	ShelterSeed uint64
}

type DatabaseConfig struct {
	Path string
}

type FirestoreConfig struct {
	ProjectID string
}

type MonitorConfig struct {
	RefreshInterval time.Duration
	AlertRadiusKm   float64
	ShelterRadiusKm float64
	HazardRadiusKm  float64
}

type NotificationsConfig struct {
	Cooldown time.Duration

	MQTTBroker      string
	MQTTClientID    string
	MQTTTopicPrefix string

	TwilioSID   string
	TwilioToken string
	TwilioFrom  string
	SMSTo       []string
}

type ReportsConfig struct {
	KafkaBrokers []string
	KafkaTopic   string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:      getEnv("SERVER_HOST", "localhost"),
			Port:      getEnvInt("SERVER_PORT", 8080),
			RateLimit: getEnvInt("RATE_LIMIT_RPS", 5),
		},
		GRPC: GRPCConfig{
			Port: getEnvInt("GRPC_PORT", 50051),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 20),
		},
		Source: SourceConfig{
			Kind:        SourceKind(strings.ToLower(getEnv("SOURCE", string(SourceLive)))),
			USGSURL:     getEnv("USGS_URL", ingestion.DefaultUSGSURL),
			EONETURL:    getEnv("EONET_URL", ingestion.DefaultEONETURL),
			FeedTimeout: getEnvDuration("FEED_TIMEOUT", 15*time.Second),
			ShelterSeed: getEnvUint("SHELTER_SEED", 0),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/disaster-alerts.db"),
		},
		Firestore: FirestoreConfig{
			ProjectID: getEnv("FIRESTORE_PROJECT_ID", ""),
		},
		Monitor: MonitorConfig{
			RefreshInterval: getEnvDuration("ALERT_REFRESH_INTERVAL", 5*time.Minute),
			AlertRadiusKm:   getEnvFloat("ALERT_RADIUS_KM", 200),
			ShelterRadiusKm: getEnvFloat("SHELTER_RADIUS_KM", 100),
			HazardRadiusKm:  getEnvFloat("HAZARD_RADIUS_KM", 50),
		},
		Notifications: NotificationsConfig{
			Cooldown:        getEnvDuration("WARNING_COOLDOWN", 10*time.Second),
			MQTTBroker:      getEnv("MQTT_BROKER", ""),
			MQTTClientID:    getEnv("MQTT_CLIENT_ID", "disaster-alerts"),
			MQTTTopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "disaster-alerts"),
			TwilioSID:       getEnv("TWILIO_SID", ""),
			TwilioToken:     getEnv("TWILIO_TOKEN", ""),
			TwilioFrom:      getEnv("TWILIO_FROM", ""),
			SMSTo:           getEnvList("ALERT_SMS_TO"),
		},
		Reports: ReportsConfig{
			KafkaBrokers: getEnvList("KAFKA_BROKERS"),
			KafkaTopic:   getEnv("KAFKA_REPORTS_TOPIC", "disaster-reports"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.GRPC.Port < 1 || c.GRPC.Port > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.GRPC.Port)
	}
	if c.Server.RateLimit < 1 {
		return fmt.Errorf("rate limit must be at least 1 request per second")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	switch c.Source.Kind {
	case SourceLive, SourceSeismic, SourceHazard, SourceMock, SourceSQLite:
	case SourceFirestore:
		if c.Firestore.ProjectID == "" {
			return fmt.Errorf("FIRESTORE_PROJECT_ID is required for the firestore source")
		}
	default:
		return fmt.Errorf("invalid source: %s", c.Source.Kind)
	}

	if c.Monitor.RefreshInterval < 30*time.Second {
		return fmt.Errorf("alert refresh interval must be at least 30 seconds")
	}
	if c.Monitor.AlertRadiusKm <= 0 || c.Monitor.ShelterRadiusKm <= 0 || c.Monitor.HazardRadiusKm <= 0 {
		return fmt.Errorf("radii must be positive")
	}
	if c.Notifications.Cooldown < 0 {
		return fmt.Errorf("warning cooldown must not be negative")
	}
	if c.Notifications.TwilioSID != "" && (c.Notifications.TwilioToken == "" || c.Notifications.TwilioFrom == "" || len(c.Notifications.SMSTo) == 0) {
		return fmt.Errorf("TWILIO_TOKEN, TWILIO_FROM and ALERT_SMS_TO are required when TWILIO_SID is set")
	}
	if c.Worker.Count < 1 {
		return fmt.Errorf("worker count must be at least 1")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvUint(key string, fallback uint64) uint64 {
	if val := os.Getenv(key); val != "" {
		if u, err := strconv.ParseUint(val, 10, 64); err == nil {
			return u
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
