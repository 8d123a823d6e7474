package config

import (
	"fmt"
	"strings"

	"github.com/cloudyskybd/portfolio/pkg"

	"github.com/BurntSushi/toml"
)

const (
	DefaultStorageBucket           = "blog-thumbnails"
	DefaultLoginRateLimitPerMinute = 15

	StorageProviderS3  = "s3"
	StorageProviderGCS = "gcs"
)

type Config struct {
	Environment string `toml:"-"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	// site
	SiteOrigin                  string   `toml:"site_origin"`
	AllowedOrigins              []string `toml:"allowed_origins"`
	LoginRateLimitAllowedPerMin int      `toml:"login_rate_limit_allowed_per_min"`
	// peers (CIDR or address) whose X-Real-Ip / X-Forwarded-For headers are believed
	TrustedProxies []string `toml:"trusted_proxies"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`
	MigrateSchema  bool   `toml:"migrate_schema"`
	// admin bootstrap, applied only when no credentials are stored yet
	AdminBootstrapUsername string `toml:"admin_bootstrap_username"`
	AdminBootstrapEmail    string `toml:"admin_bootstrap_email"`
	// object storage: "s3" (also R2/minio) or "gcs"
	StorageProvider      string `toml:"storage_provider"`
	StorageBucket        string `toml:"storage_bucket"`
	StoragePublicBaseURL string `toml:"storage_public_base_url"`
	S3Endpoint           string `toml:"s3_endpoint"`
	S3Region             string `toml:"s3_region"`
	GCSCredentialsFile   string `toml:"gcs_credentials_file"`
	// emailjs
	EmailJSBaseURL    string `toml:"emailjs_base_url"`
	EmailJSServiceID  string `toml:"emailjs_service_id"`
	EmailJSTemplateID string `toml:"emailjs_template_id"`
	EmailJSPublicKey  string `toml:"emailjs_public_key"`
	// database backup
	BackupIntervalHours        int    `toml:"backup_interval_hours"`
	GoogleDriveCredentialsFile string `toml:"google_drive_credentials_file"`
	GoogleDriveFolderID        string `toml:"google_drive_folder_id"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		if t.Development == nil {
			return nil, fmt.Errorf("config for env %s missing", env)
		}
		t.Development.Environment = "development"
		return t.Development, nil
	case "prod", "production":
		if t.Production == nil {
			return nil, fmt.Errorf("config for env %s missing", env)
		}
		t.Production.Environment = "production"
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML file at path and returns the section for env, with defaults applied.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return fromToml(&t, env)
}

// Parse is Load for an in-memory TOML document.
func Parse(env, content string) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(content, &t); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return fromToml(&t, env)
}

func fromToml(t *Toml, env string) (*Config, error) {
	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.LoginRateLimitAllowedPerMin <= 0 {
		c.LoginRateLimitAllowedPerMin = DefaultLoginRateLimitPerMinute
	}
	if c.StorageProvider == "" {
		c.StorageProvider = StorageProviderS3
	}
	if c.StorageBucket == "" {
		c.StorageBucket = DefaultStorageBucket
	}
	if c.S3Region == "" {
		c.S3Region = "auto"
	}
	if c.RedisPort == "" {
		c.RedisPort = "6379"
	}
	if c.PostgresPort == "" {
		c.PostgresPort = "5432"
	}
	if c.PostgresUser == "" {
		c.PostgresUser = "postgres"
	}
	if c.EmailJSBaseURL == "" {
		c.EmailJSBaseURL = "https://api.emailjs.com"
	}
}

func (c *Config) validate() error {
	switch c.StorageProvider {
	case StorageProviderS3, StorageProviderGCS:
	default:
		return fmt.Errorf("unknown storage provider: %s", c.StorageProvider)
	}
	if _, err := pkg.ParseTrustedProxies(c.TrustedProxies); err != nil {
		return err
	}
	if c.SiteOrigin == "" {
		return fmt.Errorf("site_origin not set")
	}
	if c.BackupIntervalHours < 0 {
		return fmt.Errorf("backup_interval_hours must not be negative")
	}
	return nil
}
