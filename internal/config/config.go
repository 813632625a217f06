package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"-"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// prometheus
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// http
	AllowedOrigins       []string `toml:"allowed_origins"`
	LoginRateLimit       int      `toml:"login_rate_limit"`
	LoginRateLimitPeriod Duration `toml:"login_rate_limit_period"`
	SessionTTL           Duration `toml:"session_ttl"`

	// workouts snapshot cache
	SnapshotCacheSizeMB int      `toml:"snapshot_cache_size_mb"`
	SnapshotCacheTTL    Duration `toml:"snapshot_cache_ttl"`

	// backups
	BackupCronSchedule  string `toml:"backup_cron_schedule"`
	GDriveBackupsFolder string `toml:"gdrive_backups_folder"`
}

// Duration wraps time.Duration so it can be written as "15m" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}

	if cfg == nil {
		return nil, fmt.Errorf("config for env [%s] missing", env)
	}

	cfg.Environment = strings.ToLower(env)
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 3001
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"http://localhost:5173"}
	}
	if c.LoginRateLimit == 0 {
		c.LoginRateLimit = 5
	}
	if c.LoginRateLimitPeriod.Duration == 0 {
		c.LoginRateLimitPeriod.Duration = 15 * time.Minute
	}
	if c.SessionTTL.Duration == 0 {
		c.SessionTTL.Duration = 7 * 24 * time.Hour
	}
	if c.SnapshotCacheSizeMB == 0 {
		c.SnapshotCacheSizeMB = 10
	}
	if c.SnapshotCacheTTL.Duration == 0 {
		c.SnapshotCacheTTL.Duration = 10 * time.Minute
	}
	if c.GDriveBackupsFolder == "" {
		c.GDriveBackupsFolder = "workout-tracker-backups"
	}
}

func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}
	return t.Get(env)
}

// Parse is like Load, but reads the config from a string.
func Parse(env, content string) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(content, &t); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return t.Get(env)
}
