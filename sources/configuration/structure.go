package configuration

type Config struct {
	Service      ServiceConfig      `yaml:"service"`
	Quota        QuotaConfig        `yaml:"quota"`
	Conversation ConversationConfig `yaml:"conversation"`
	Compaction   CompactionConfig   `yaml:"compaction"`
	AI           AIConfig           `yaml:"ai"`
	Localization LocalizationConfig `yaml:"localization"`
}

type ServiceConfig struct {
	Port        int    `yaml:"port"`
	HealthPort  int    `yaml:"health_port"`
	MetricsPort int    `yaml:"metrics_port"`
	PublicHost  string `yaml:"public_host"`
}

type QuotaConfig struct {
	DiscoveryCap int    `yaml:"discovery_cap"`
	PartnerCap   int    `yaml:"partner_cap"`
	UnlockOffset int    `yaml:"unlock_offset"`
	VIPCode      string `yaml:"vip_code"`
}

type ConversationConfig struct {
	MaxConversations int `yaml:"max_conversations"`
	RetentionDays    int `yaml:"retention_days"`
	TitleLength      int `yaml:"title_length"`
}

type CompactionConfig struct {
	Threshold   int `yaml:"threshold"`
	KeepRecent  int `yaml:"keep_recent"`
	HistoryCap  int `yaml:"history_cap"`
}

type AIConfig struct {
	Prompts AI_PromptsConfig `yaml:"prompts"`
}

type AI_PromptsConfig struct {
	Advisor       string `yaml:"advisor"`
	Summarization string `yaml:"summarization"`
}

type LocalizationConfig struct {
	DefaultLanguage    string   `yaml:"default_language"`
	SupportedLanguages []string `yaml:"supported_languages"`
}
