package localization

import (
	"strings"

	"steinberg/sources/features"
	"steinberg/sources/texting/transform"
	"steinberg/sources/tracing"

	"github.com/pemistahl/lingua-go"
)

const (
	MinTextLengthForDetection = 7
	MaxTextLengthForDetection = 256
)

// LanguageDetector resolves a request locale from the message text when the
// widget did not send one.
type LanguageDetector struct {
	detector lingua.LanguageDetector
	features *features.FeatureManager
	config   *LocalizationConfig
	log      *tracing.Logger
}

func NewLanguageDetector(features *features.FeatureManager, config *LocalizationConfig, log *tracing.Logger) *LanguageDetector {
	languages := []lingua.Language{lingua.English, lingua.French}
	detector := lingua.NewLanguageDetectorBuilder().FromLanguages(languages...).WithPreloadedLanguageModels().Build()

	log.I("Language detector initialized")
	return &LanguageDetector{detector: detector, features: features, config: config, log: log}
}

func (x *LanguageDetector) DetectLanguage(text string) string {
	defer tracing.ProfilePoint(x.log, "Language detection completed", "language.detect", "text_length", len(text))()

	if !x.features.IsEnabledOrDefault(features.FeatureLocaleDetection, true) {
		x.log.D("Language detection disabled by feature flag")
		return x.config.DefaultLanguage
	}

	cleanText := strings.TrimSpace(text)

	if len(cleanText) < MinTextLengthForDetection {
		x.log.D("Text too short for detection, using default", "text_length", len(cleanText), "min_length", MinTextLengthForDetection)
		return x.config.DefaultLanguage
	}

	truncatedText := transform.SmartTruncate(cleanText, MaxTextLengthForDetection)

	if language, exists := x.detector.DetectLanguageOf(truncatedText); exists {
		langCode := x.linguaToCode(language)
		x.log.I("Language detected", tracing.Locale, langCode)
		return langCode
	}

	x.log.D("Could not detect language, using default")
	return x.config.DefaultLanguage
}

func (x *LanguageDetector) linguaToCode(lang lingua.Language) string {
	switch lang {
	case lingua.French:
		return "fr"
	case lingua.English:
		return "en"
	default:
		return x.config.DefaultLanguage
	}
}
