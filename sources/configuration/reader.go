package configuration

import (
	"fmt"
	"os"
	"regexp"

	"steinberg/sources/tracing"

	"gopkg.in/yaml.v3"
)

// NewYaml reads the configuration from CONFIG_PATH (default: config.yaml)
// and returns a Config struct. It supports environment variable expansion.
func NewYaml(log *tracing.Logger) (*Config, error) {
	defer tracing.ProfilePoint(log, "Configuration loaded", "configuration.load")()

	filePath := os.Getenv("CONFIG_PATH")
	if filePath == "" {
		filePath = "config.yaml"
	}

	log.I("reading configuration", "path", filePath)

	content, err := os.ReadFile(filePath)
	if err != nil {
		log.E("failed to read configuration file", tracing.InnerError, err, "path", filePath)
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	expandedContent := expandEnv(string(content))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedContent), &config); err != nil {
		log.E("failed to parse configuration file", tracing.InnerError, err, "path", filePath)
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}

	config.applyDefaults()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Service.Port == 0 {
		c.Service.Port = 8080
	}
	if c.Service.HealthPort == 0 {
		c.Service.HealthPort = 10000
	}
	if c.Service.MetricsPort == 0 {
		c.Service.MetricsPort = 10002
	}
	if c.Service.PublicHost == "" {
		c.Service.PublicHost = "http://localhost:8080"
	}
	if c.Quota.DiscoveryCap == 0 {
		c.Quota.DiscoveryCap = 3
	}
	if c.Quota.PartnerCap == 0 {
		c.Quota.PartnerCap = 20
	}
	if c.Quota.UnlockOffset == 0 {
		c.Quota.UnlockOffset = c.Quota.PartnerCap - c.Quota.DiscoveryCap
	}
	if c.Quota.VIPCode == "" {
		c.Quota.VIPCode = "steinberg-vip-member"
	}
	if c.Conversation.MaxConversations == 0 {
		c.Conversation.MaxConversations = 10
	}
	if c.Conversation.RetentionDays == 0 {
		c.Conversation.RetentionDays = 7
	}
	if c.Conversation.TitleLength == 0 {
		c.Conversation.TitleLength = 40
	}
	if c.Compaction.Threshold == 0 {
		c.Compaction.Threshold = 12
	}
	if c.Compaction.KeepRecent == 0 {
		c.Compaction.KeepRecent = 6
	}
	if c.Compaction.HistoryCap == 0 {
		c.Compaction.HistoryCap = 12
	}
	if c.Localization.DefaultLanguage == "" {
		c.Localization.DefaultLanguage = "en"
	}
	if len(c.Localization.SupportedLanguages) == 0 {
		c.Localization.SupportedLanguages = []string{"en", "fr"}
	}
}

// expandEnv replaces ${VAR} or ${VAR:default} with environment values.
func expandEnv(content string) string {
	re := regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)(?::([^}]*))?\}`)

	return re.ReplaceAllStringFunc(content, func(match string) string {
		matches := re.FindStringSubmatch(match)
		key := matches[1]
		defaultValue := ""
		if len(matches) > 2 {
			defaultValue = matches[2]
		}

		value, exists := os.LookupEnv(key)
		if !exists {
			return defaultValue
		}
		return value
	})
}
