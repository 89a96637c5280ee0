package config

// QualityTier trades question quality against speed and cost.
type QualityTier string

const (
	QualityLite   QualityTier = "lite"
	QualityNormal QualityTier = "normal"
	QualityMax    QualityTier = "max"
)

// ProviderType identifies the model provider that writes interview questions.
type ProviderType string

const (
	ProviderAnthropic  ProviderType = "anthropic"
	ProviderOpenAI     ProviderType = "openai"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderOllama     ProviderType = "ollama"
)

// Config is the top-level scopedoc configuration, corresponding to .scopedoc.yml.
type Config struct {
	Provider         ProviderType   `yaml:"provider" koanf:"provider"`
	Model            string         `yaml:"model" koanf:"model"`
	Quality          QualityTier    `yaml:"quality" koanf:"quality"`
	DataDir          string         `yaml:"data_dir" koanf:"data_dir"`
	OutputDir        string         `yaml:"output_dir" koanf:"output_dir"`
	LogLevel         string         `yaml:"log_level" koanf:"log_level"`
	RateLimitRPM     int            `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`
	SessionCacheSize int            `yaml:"session_cache_size" koanf:"session_cache_size"`
	FeatureCatalog   string         `yaml:"feature_catalog,omitempty" koanf:"feature_catalog"`
	TopicCatalog     string         `yaml:"topic_catalog,omitempty" koanf:"topic_catalog"`
	Server           ServerConfig   `yaml:"server" koanf:"server"`
	Archive          ArchiveConfig  `yaml:"archive" koanf:"archive"`
	Delivery         DeliveryConfig `yaml:"delivery" koanf:"delivery"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// ArchiveConfig points at the S3-compatible bucket rendered documents are
// archived to. Disabled archives keep documents in memory only.
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled" koanf:"enabled"`
	Endpoint  string `yaml:"endpoint" koanf:"endpoint"`
	Region    string `yaml:"region" koanf:"region"`
	AccessKey string `yaml:"access_key,omitempty" koanf:"access_key"`
	SecretKey string `yaml:"secret_key,omitempty" koanf:"secret_key"`
	Bucket    string `yaml:"bucket" koanf:"bucket"`
	UseSSL    bool   `yaml:"use_ssl" koanf:"use_ssl"`
}

// DeliveryConfig controls the document webhook.
type DeliveryConfig struct {
	WebhookURL  string `yaml:"webhook_url,omitempty" koanf:"webhook_url"`
	MaxAttempts int    `yaml:"max_attempts" koanf:"max_attempts"`
	BaseDelayMS int    `yaml:"base_delay_ms" koanf:"base_delay_ms"`
}
