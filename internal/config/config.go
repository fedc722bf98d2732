// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Known post source names accepted in Dashboard.Sources
const (
	SourceReddit  = "reddit"
	SourceTwitter = "twitter"
	SourceBluesky = "bluesky"
	SourceArchive = "archive"
)

// Narrative backend names
const (
	BackendGroq     = "groq"
	BackendGemini   = "gemini"
	BackendTemplate = "template"
)

var defaultSubreddits = []string{
	"environment", "climate", "sustainability", "renewableenergy",
	"ZeroWaste", "permaculture", "greeninvestor", "climateaction",
	"ecology", "conservation",
}

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Reddit      RedditConfig
	Twitter     TwitterConfig
	Bluesky     BlueskyConfig
	News        NewsConfig
	Narrative   NarrativeConfig
	Dashboard   DashboardConfig
	Log         LogConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
	WSPushInterval  time.Duration
}

// DatabaseConfig holds the post archive database configuration
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
	MaxConns int
	SSLMode  string
}

// DSN returns the pgx connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode, c.MaxConns)
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	Enabled        bool
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
	EventsTopic    string
}

// RedditConfig holds Reddit API configuration
type RedditConfig struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	Subreddits   []string
}

// TwitterConfig holds Twitter API configuration
type TwitterConfig struct {
	BearerToken string
	Query       string
}

// BlueskyConfig holds Bluesky configuration
type BlueskyConfig struct {
	Handle      string
	AppPassword string
	Query       string
}

// NewsConfig holds NewsAPI configuration
type NewsConfig struct {
	APIKey string
	Query  string
}

// NarrativeConfig holds the generative backend and circuit breaker configuration
type NarrativeConfig struct {
	Backend          string
	GroqAPIKey       string
	GroqModel        string
	GeminiAPIKey     string
	GeminiModel      string
	Timeout          time.Duration
	FailureThreshold int
	FailureWindow    int
	BreakerDelay     time.Duration
}

// DashboardConfig holds dashboard assembly configuration
type DashboardConfig struct {
	Sources      []string
	PostLimit    int
	MaxLimit     int
	NewsLimit    int
	SampleSize   int
	StatsLimit   int
	FetchTimeout time.Duration
	SampleData   bool
	Seed         int64
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level   string
	Service string
}

// fileConfig is the optional YAML overlay named by CONFIG_FILE
type fileConfig struct {
	Sources    []string `yaml:"sources"`
	Subreddits []string `yaml:"subreddits"`
	Queries    struct {
		Twitter string `yaml:"twitter"`
		Bluesky string `yaml:"bluesky"`
		News    string `yaml:"news"`
	} `yaml:"queries"`
	Dashboard struct {
		PostLimit  int `yaml:"post_limit"`
		MaxLimit   int `yaml:"max_limit"`
		NewsLimit  int `yaml:"news_limit"`
		SampleSize int `yaml:"sample_size"`
	} `yaml:"dashboard"`
	Narrative struct {
		Backend string `yaml:"backend"`
	} `yaml:"narrative"`
}

// Load loads configuration from .env files, the optional YAML file and
// environment variables. Environment variables win over the file, which
// wins over defaults.
func Load() (Config, error) {
	loadEnvFiles()

	file, err := loadFile(getEnv("CONFIG_FILE", ""))
	if err != nil {
		return Config{}, err
	}

	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
			WSPushInterval:  getEnvAsDuration("WS_PUSH_INTERVAL", 30*time.Second),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Database: getEnv("DB_NAME", "ecodash"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			Enabled:        getEnvAsBool("NATS_ENABLED", false),
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
			EventsTopic:    getEnv("EVENTS_TOPIC", "ecodash"),
		},
		Reddit: RedditConfig{
			ClientID:     getEnv("REDDIT_CLIENT_ID", ""),
			ClientSecret: getEnv("REDDIT_CLIENT_SECRET", ""),
			UserAgent:    getEnv("REDDIT_USER_AGENT", "EcoEarthApp v1.0"),
			Subreddits:   getEnvAsSlice("REDDIT_SUBREDDITS", orDefault(file.Subreddits, defaultSubreddits)),
		},
		Twitter: TwitterConfig{
			BearerToken: getEnv("TWITTER_BEARER_TOKEN", ""),
			Query:       getEnv("TWITTER_QUERY", file.Queries.Twitter),
		},
		Bluesky: BlueskyConfig{
			Handle:      getEnv("BLUESKY_HANDLE", ""),
			AppPassword: getEnv("BLUESKY_APP_PASSWORD", ""),
			Query:       getEnv("BLUESKY_QUERY", file.Queries.Bluesky),
		},
		News: NewsConfig{
			APIKey: getEnv("NEWS_API_KEY", ""),
			Query:  getEnv("NEWS_QUERY", file.Queries.News),
		},
		Narrative: NarrativeConfig{
			Backend:          getEnv("NARRATIVE_BACKEND", firstNonEmpty(file.Narrative.Backend, BackendGroq)),
			GroqAPIKey:       getEnv("GROQ_API_KEY", ""),
			GroqModel:        getEnv("GROQ_MODEL", "llama3-8b-8192"),
			GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
			GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Timeout:          getEnvAsDuration("NARRATIVE_TIMEOUT", 10*time.Second),
			FailureThreshold: getEnvAsInt("NARRATIVE_FAILURE_THRESHOLD", 3),
			FailureWindow:    getEnvAsInt("NARRATIVE_FAILURE_WINDOW", 5),
			BreakerDelay:     getEnvAsDuration("NARRATIVE_BREAKER_DELAY", 30*time.Second),
		},
		Dashboard: DashboardConfig{
			Sources:      getEnvAsSlice("DASHBOARD_SOURCES", orDefault(file.Sources, []string{SourceReddit})),
			PostLimit:    getEnvAsInt("DASHBOARD_POST_LIMIT", orDefaultInt(file.Dashboard.PostLimit, 50)),
			MaxLimit:     getEnvAsInt("DASHBOARD_MAX_LIMIT", orDefaultInt(file.Dashboard.MaxLimit, 500)),
			NewsLimit:    getEnvAsInt("DASHBOARD_NEWS_LIMIT", orDefaultInt(file.Dashboard.NewsLimit, 20)),
			SampleSize:   getEnvAsInt("DASHBOARD_SAMPLE_SIZE", orDefaultInt(file.Dashboard.SampleSize, 8)),
			StatsLimit:   getEnvAsInt("DASHBOARD_STATS_LIMIT", 10),
			FetchTimeout: getEnvAsDuration("DASHBOARD_FETCH_TIMEOUT", 15*time.Second),
			SampleData:   getEnvAsBool("DASHBOARD_SAMPLE_DATA", true),
			Seed:         getEnvAsInt64("DASHBOARD_SEED", 0),
		},
		Log: LogConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Service: getEnv("SERVICE_NAME", "ecodash"),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	for _, name := range config.Dashboard.Sources {
		switch name {
		case SourceReddit, SourceTwitter, SourceBluesky, SourceArchive:
		default:
			return fmt.Errorf("unknown post source %q", name)
		}
		if name == SourceArchive && !config.Database.Enabled {
			return fmt.Errorf("post source %q requires DB_ENABLED", name)
		}
	}

	switch config.Narrative.Backend {
	case BackendGroq, BackendGemini, BackendTemplate:
	default:
		return fmt.Errorf("unknown narrative backend %q", config.Narrative.Backend)
	}

	if config.Dashboard.PostLimit <= 0 || config.Dashboard.NewsLimit <= 0 ||
		config.Dashboard.SampleSize <= 0 || config.Dashboard.StatsLimit <= 0 {
		return fmt.Errorf("dashboard limits must be positive")
	}

	if config.Dashboard.MaxLimit < config.Dashboard.PostLimit || config.Dashboard.MaxLimit < config.Dashboard.StatsLimit {
		return fmt.Errorf("dashboard max limit %d is below the post or stats limit", config.Dashboard.MaxLimit)
	}

	if config.Narrative.FailureThreshold <= 0 || config.Narrative.FailureWindow < config.Narrative.FailureThreshold {
		return fmt.Errorf("narrative failure threshold must be positive and no larger than the window")
	}

	if config.Server.WSPushInterval <= 0 {
		return fmt.Errorf("websocket push interval must be positive")
	}

	if config.Database.Enabled && config.Database.Host == "" {
		return fmt.Errorf("database host must be set when the database is enabled")
	}

	return nil
}

// loadEnvFiles loads .env files when present; the process environment wins
func loadEnvFiles() {
	for _, file := range []string{".env", ".env.local"} {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		_ = godotenv.Load(file)
	}
}

// loadFile reads the YAML overlay; an empty path yields an empty overlay
func loadFile(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return fc, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}

func orDefault(values, defaultValue []string) []string {
	if len(values) > 0 {
		return values
	}
	return defaultValue
}

func orDefaultInt(value, defaultValue int) int {
	if value > 0 {
		return value
	}
	return defaultValue
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
