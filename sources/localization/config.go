package localization

import (
	"steinberg/sources/platform"
)

type LocalizationConfig struct {
	DefaultLanguage    string
	SupportedLanguages []string
}

func NewLocalizationConfig() *LocalizationConfig {
	return &LocalizationConfig{
		DefaultLanguage:    platform.Get("LOCALIZATION_DEFAULT_LANG", "en"),
		SupportedLanguages: []string{"en", "fr"},
	}
}
