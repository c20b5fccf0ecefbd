package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP     HTTPConfig
	Graph    GraphConfig
	Supabase SupabaseConfig
	Cache    CacheConfig
	Network  NetworkConfig
	Logging  LoggingConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MetricsEnabled    bool
	AllowedOriginsCSV string
}

// GraphConfig describes connectivity to the Neo4j contact graph.
type GraphConfig struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// SupabaseConfig points at the hosted CRM tables.
type SupabaseConfig struct {
	URL    string
	APIKey string
}

// CacheConfig controls the Redis snapshot cache. An empty Addr disables it.
type CacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NetworkConfig scopes snapshot loading for path calculation.
type NetworkConfig struct {
	Source   string // neo4j|supabase
	MaxHops  int
	MaxNodes int
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

const (
	SourceNeo4j    = "neo4j"
	SourceSupabase = "supabase"
)

const (
	defaultHost             = "0.0.0.0"
	defaultPort             = 8080
	defaultReadTimeout      = 10 * time.Second
	defaultWriteTimeout     = 15 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultLoggingLevel     = "info"
	defaultLoggingFormat    = "text"
	defaultGraphMaxSessions = 10
	defaultCacheTTL         = 2 * time.Minute
	defaultMaxHops          = 4
	defaultMaxNodes         = 2000
)

// Load reads configuration from environment variables, applying defaults.
// When CONFIG_FILE is set, that YAML or JSON file is read first and
// environment variables still take precedence over it.
func Load() (Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := Config{
		HTTP: HTTPConfig{
			Host:              v.GetString("SERVER_HOST"),
			MetricsEnabled:    v.GetBool("SERVER_METRICS_ENABLED"),
			AllowedOriginsCSV: v.GetString("SERVER_ALLOWED_ORIGINS"),
		},
		Graph: GraphConfig{
			URI:            v.GetString("GRAPH_URI"),
			Database:       v.GetString("GRAPH_DATABASE"),
			Username:       v.GetString("GRAPH_USERNAME"),
			Password:       v.GetString("GRAPH_PASSWORD"),
			MaxConnections: v.GetInt("GRAPH_MAX_CONNECTIONS"),
		},
		Supabase: SupabaseConfig{
			URL:    v.GetString("SUPABASE_URL"),
			APIKey: v.GetString("SUPABASE_API_KEY"),
		},
		Cache: CacheConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Network: NetworkConfig{
			Source:   strings.ToLower(strings.TrimSpace(v.GetString("NETWORK_SOURCE"))),
			MaxHops:  v.GetInt("NETWORK_MAX_HOPS"),
			MaxNodes: v.GetInt("NETWORK_MAX_NODES"),
		},
		Logging: LoggingConfig{
			Level:         v.GetString("LOG_LEVEL"),
			Format:        v.GetString("LOG_FORMAT"),
			IncludeCaller: v.GetBool("LOG_INCLUDE_CALLER"),
		},
	}

	port, err := parsePort(v, "SERVER_PORT")
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	durations := []struct {
		key  string
		dest *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout},
		{"SNAPSHOT_CACHE_TTL", &cfg.Cache.TTL},
	}
	for _, d := range durations {
		parsed, err := parseDuration(v, d.key)
		if err != nil {
			return Config{}, err
		}
		*d.dest = parsed
	}

	switch cfg.Network.Source {
	case SourceNeo4j, SourceSupabase:
	default:
		return Config{}, fmt.Errorf("invalid NETWORK_SOURCE %q: want %s or %s", cfg.Network.Source, SourceNeo4j, SourceSupabase)
	}
	if cfg.Network.MaxHops <= 0 {
		return Config{}, fmt.Errorf("NETWORK_MAX_HOPS must be positive, got %d", cfg.Network.MaxHops)
	}
	if cfg.Network.MaxNodes <= 0 {
		return Config{}, fmt.Errorf("NETWORK_MAX_NODES must be positive, got %d", cfg.Network.MaxNodes)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", defaultHost)
	v.SetDefault("SERVER_PORT", defaultPort)
	v.SetDefault("SERVER_READ_TIMEOUT", defaultReadTimeout.String())
	v.SetDefault("SERVER_WRITE_TIMEOUT", defaultWriteTimeout.String())
	v.SetDefault("SERVER_IDLE_TIMEOUT", defaultIdleTimeout.String())
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", defaultShutdownTimeout.String())
	v.SetDefault("SERVER_METRICS_ENABLED", false)
	v.SetDefault("GRAPH_MAX_CONNECTIONS", defaultGraphMaxSessions)
	v.SetDefault("SNAPSHOT_CACHE_TTL", defaultCacheTTL.String())
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("NETWORK_SOURCE", SourceNeo4j)
	v.SetDefault("NETWORK_MAX_HOPS", defaultMaxHops)
	v.SetDefault("NETWORK_MAX_NODES", defaultMaxNodes)
	v.SetDefault("LOG_LEVEL", defaultLoggingLevel)
	v.SetDefault("LOG_FORMAT", defaultLoggingFormat)
	v.SetDefault("LOG_INCLUDE_CALLER", false)
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parsePort(v *viper.Viper, key string) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if port <= 0 || port > 65535 {
		return 0, fmt.Errorf("port %d is out of range", port)
	}
	return port, nil
}
