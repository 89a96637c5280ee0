package config

// QualityPreset describes the model to use for a given quality tier.
type QualityPreset struct {
	Model string
}

// qualityPresets maps each provider+quality combination to its model choice.
var qualityPresets = map[ProviderType]map[QualityTier]QualityPreset{
	ProviderAnthropic: {
		QualityLite:   {Model: "claude-haiku-4-5-20251001"},
		QualityNormal: {Model: "claude-sonnet-4-5-20250929"},
		QualityMax:    {Model: "claude-sonnet-4-5-20250929"},
	},
	ProviderOpenAI: {
		QualityLite:   {Model: "gpt-4o-mini"},
		QualityNormal: {Model: "gpt-4o"},
		QualityMax:    {Model: "gpt-4o"},
	},
	ProviderOpenRouter: {
		QualityLite:   {Model: "openai/gpt-4o-mini"},
		QualityNormal: {Model: "openai/gpt-4o"},
		QualityMax:    {Model: "anthropic/claude-sonnet-4.5"},
	},
	ProviderOllama: {
		QualityLite:   {Model: "llama3"},
		QualityNormal: {Model: "llama3"},
		QualityMax:    {Model: "llama3:70b"},
	},
}

// DefaultConfigFile is the config file read when no --config flag is given.
const DefaultConfigFile = ".scopedoc.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:         ProviderAnthropic,
		Model:            "claude-haiku-4-5-20251001",
		Quality:          QualityLite,
		DataDir:          ".scopedoc",
		OutputDir:        "scopes",
		LogLevel:         "info",
		RateLimitRPM:     30,
		SessionCacheSize: 256,
		Server: ServerConfig{
			Port: 8080,
		},
		Archive: ArchiveConfig{
			Region: "us-east-1",
			Bucket: "scopedoc",
			UseSSL: true,
		},
		Delivery: DeliveryConfig{
			MaxAttempts: 4,
			BaseDelayMS: 500,
		},
	}
}

// GetPreset returns the quality preset for the given provider and tier.
// Returns the Normal Anthropic preset if the combination is not found.
func GetPreset(provider ProviderType, tier QualityTier) QualityPreset {
	if tiers, ok := qualityPresets[provider]; ok {
		if preset, ok := tiers[tier]; ok {
			return preset
		}
	}
	return qualityPresets[ProviderAnthropic][QualityNormal]
}
