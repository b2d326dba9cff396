package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds runtime configuration. Values come from the environment, an
// optional config.yaml (keys are the lower-cased variable names) and the
// defaults below, in that order of precedence.
type Config struct {
	Port         string
	DataDir      string
	StoreBackend string
	DatabaseURL  string

	UploadDir         string
	AttachmentBackend string
	MaxUploadMB       int
	Cloudinary        CloudinaryConfig
	S3                S3Config

	SessionSecret     string
	SessionIssuer     string
	SessionTTLSeconds int64
	AdminToken        string
	AdminEmails       []string
	AdminUser         string
	AdminPass         string
	AdminPassHash     string
	GoogleClientID    string
	DevMode           bool
	RedisURL          string

	CorsOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	TrustedProxies []string

	TelegramBotToken   string
	TelegramAdminChats []int64

	MetricsSampleSeconds int
	MetricsDiskPath      string
	LogDir               string
	LogRetentionDays     int
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type S3Config struct {
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Prefix        string
	PublicBaseURL string
}

func defaults(v *viper.Viper) {
	v.SetDefault("port", "5000")
	v.SetDefault("data_dir", "data")
	v.SetDefault("store_backend", "file")
	v.SetDefault("database_url", "")
	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("attachment_backend", "local")
	v.SetDefault("max_upload_mb", 5)
	v.SetDefault("cloudinary_cloud_name", "")
	v.SetDefault("cloudinary_api_key", "")
	v.SetDefault("cloudinary_api_secret", "")
	v.SetDefault("cloudinary_folder", "memberships")
	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_access_key", "")
	v.SetDefault("s3_secret_key", "")
	v.SetDefault("s3_bucket", "")
	v.SetDefault("s3_prefix", "memberships")
	v.SetDefault("s3_public_base_url", "")
	v.SetDefault("session_secret", "")
	v.SetDefault("session_issuer", "parish")
	v.SetDefault("session_ttl_seconds", 8*60*60)
	v.SetDefault("admin_token", "")
	v.SetDefault("admin_emails", "")
	v.SetDefault("admin_user", "")
	v.SetDefault("admin_pass", "")
	v.SetDefault("admin_pass_hash", "")
	v.SetDefault("google_client_id", "")
	v.SetDefault("dev_mode", false)
	v.SetDefault("redis_url", "")
	v.SetDefault("cors_origins", "")
	v.SetDefault("rate_limit_rps", 1.0)
	v.SetDefault("rate_limit_burst", 10)
	v.SetDefault("trusted_proxies", "")
	v.SetDefault("telegram_bot_token", "")
	v.SetDefault("telegram_admin_chats", "")
	v.SetDefault("metrics_sample_interval", 5)
	v.SetDefault("metrics_disk_path", ".")
	v.SetDefault("log_dir", "storage/logs")
	v.SetDefault("log_retention_days", 7)
}

func Load() (Config, error) {
	v := viper.New()
	defaults(v)

	if file := strings.TrimSpace(os.Getenv("CONFIG_FILE")); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	chats, err := parseChatIDs(v.GetString("telegram_admin_chats"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:              str(v, "port"),
		DataDir:           str(v, "data_dir"),
		StoreBackend:      strings.ToLower(str(v, "store_backend")),
		DatabaseURL:       str(v, "database_url"),
		UploadDir:         str(v, "upload_dir"),
		AttachmentBackend: strings.ToLower(str(v, "attachment_backend")),
		MaxUploadMB:       v.GetInt("max_upload_mb"),
		Cloudinary: CloudinaryConfig{
			CloudName: str(v, "cloudinary_cloud_name"),
			APIKey:    str(v, "cloudinary_api_key"),
			APISecret: str(v, "cloudinary_api_secret"),
			Folder:    str(v, "cloudinary_folder"),
		},
		S3: S3Config{
			Region:        str(v, "s3_region"),
			Endpoint:      str(v, "s3_endpoint"),
			AccessKey:     str(v, "s3_access_key"),
			SecretKey:     str(v, "s3_secret_key"),
			Bucket:        str(v, "s3_bucket"),
			Prefix:        str(v, "s3_prefix"),
			PublicBaseURL: str(v, "s3_public_base_url"),
		},
		SessionSecret:        str(v, "session_secret"),
		SessionIssuer:        str(v, "session_issuer"),
		SessionTTLSeconds:    v.GetInt64("session_ttl_seconds"),
		AdminToken:           str(v, "admin_token"),
		AdminEmails:          lowerAll(parseCSV(v.GetString("admin_emails"))),
		AdminUser:            str(v, "admin_user"),
		AdminPass:            v.GetString("admin_pass"),
		AdminPassHash:        str(v, "admin_pass_hash"),
		GoogleClientID:       str(v, "google_client_id"),
		DevMode:              v.GetBool("dev_mode"),
		RedisURL:             str(v, "redis_url"),
		CorsOrigins:          parseCSV(v.GetString("cors_origins")),
		RateLimitRPS:         v.GetFloat64("rate_limit_rps"),
		RateLimitBurst:       v.GetInt("rate_limit_burst"),
		TrustedProxies:       parseCSV(v.GetString("trusted_proxies")),
		TelegramBotToken:     str(v, "telegram_bot_token"),
		TelegramAdminChats:   chats,
		MetricsSampleSeconds: v.GetInt("metrics_sample_interval"),
		MetricsDiskPath:      str(v, "metrics_disk_path"),
		LogDir:               str(v, "log_dir"),
		LogRetentionDays:     v.GetInt("log_retention_days"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	switch c.StoreBackend {
	case "file":
		if c.DataDir == "" {
			return errors.New("DATA_DIR is required for the file store")
		}
	case "sql":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the sql store")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	switch c.AttachmentBackend {
	case "local":
		if c.UploadDir == "" {
			return errors.New("UPLOAD_DIR is required for local attachments")
		}
	case "cloudinary":
		if c.Cloudinary.CloudName == "" || c.Cloudinary.APIKey == "" || c.Cloudinary.APISecret == "" {
			return errors.New("cloudinary attachments need CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("S3_BUCKET is required for s3 attachments")
		}
	default:
		return fmt.Errorf("unknown ATTACHMENT_BACKEND %q", c.AttachmentBackend)
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}
	if c.SessionTTLSeconds <= 0 {
		return errors.New("SESSION_TTL_SECONDS must be positive")
	}
	for _, proxy := range c.TrustedProxies {
		if _, err := netip.ParsePrefix(proxy); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(proxy); err != nil {
			return fmt.Errorf("TRUSTED_PROXIES: invalid address or prefix %q", proxy)
		}
	}
	if len(c.TelegramAdminChats) > 0 && c.TelegramBotToken == "" {
		return errors.New("TELEGRAM_ADMIN_CHATS needs TELEGRAM_BOT_TOKEN")
	}
	return nil
}

func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func str(v *viper.Viper, key string) string {
	return strings.TrimSpace(v.GetString(key))
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}

func lowerAll(items []string) []string {
	for i, item := range items {
		items[i] = strings.ToLower(item)
	}
	return items
}

func parseChatIDs(raw string) ([]int64, error) {
	items := parseCSV(raw)
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		id, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_ADMIN_CHATS: invalid chat id %q", item)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
