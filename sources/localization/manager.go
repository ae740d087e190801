package localization

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"steinberg/sources/tracing"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localesFS embed.FS

type LocalizationManager struct {
	bundle   *i18n.Bundle
	detector *LanguageDetector
	config   *LocalizationConfig
	log      *tracing.Logger
	locbuff  sync.Map
}

func NewLocalizationManager(
	config *LocalizationConfig,
	detector *LanguageDetector,
	log *tracing.Logger,
) (*LocalizationManager, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, lang := range config.SupportedLanguages {
		filename := fmt.Sprintf("locales/active.%s.toml", lang)

		data, err := localesFS.ReadFile(filename)
		if err != nil {
			log.E("Failed to read locale file", "filename", filename, tracing.InnerError, err)
			return nil, fmt.Errorf("failed to read locale file %s: %w", filename, err)
		}

		if _, err := bundle.ParseMessageFileBytes(data, filename); err != nil {
			log.E("Failed to parse locale file", "filename", filename, tracing.InnerError, err)
			return nil, fmt.Errorf("failed to parse locale file %s: %w", filename, err)
		}

		log.I("Loaded locale file", "filename", filename)
	}

	log.I("LocalizationManager initialized successfully")
	return &LocalizationManager{bundle: bundle, detector: detector, config: config, log: log}, nil
}

// ResolveLocale picks the request locale: an explicitly supported value wins,
// otherwise the message text is run through detection. Detected locales are
// cached per session for follow-up requests too short to detect.
func (x *LocalizationManager) ResolveLocale(session string, requested string, text string) string {
	requested = strings.ToLower(strings.TrimSpace(requested))
	for _, supported := range x.config.SupportedLanguages {
		if requested == supported {
			return requested
		}
	}

	cleanText := strings.TrimSpace(text)
	if len(cleanText) >= MinTextLengthForDetection {
		detected := x.detector.DetectLanguage(cleanText)
		x.locbuff.Store(session, detected)
		x.log.D("Locale detected from text and cached", tracing.SessionId, session, tracing.Locale, detected)
		return detected
	}

	if cached, ok := x.locbuff.Load(session); ok {
		return cached.(string)
	}
	return x.config.DefaultLanguage
}

func (x *LocalizationManager) Localize(locale string, messageID string) string {
	return x.LocalizeTd(locale, messageID, nil)
}

func (x *LocalizationManager) LocalizeTd(locale string, messageID string, templateData map[string]interface{}) string {
	localizer := i18n.NewLocalizer(x.bundle, locale, x.config.DefaultLanguage)

	msg, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: messageID, TemplateData: templateData})
	if err != nil {
		x.log.E("Failed to localize message", "message_id", messageID, tracing.InnerError, err)
		return messageID
	}

	return msg
}

func (x *LocalizationManager) Welcome(locale string) string {
	return x.Localize(locale, "Welcome")
}

func (x *LocalizationManager) AnalysisError(locale string) string {
	return x.Localize(locale, "AnalysisError")
}

func (x *LocalizationManager) QuotaExhausted(locale string) string {
	return x.Localize(locale, "QuotaExhausted")
}

// QuickReplies returns the suggestion chips shown next to a fresh welcome
// message.
func (x *LocalizationManager) QuickReplies(locale string) []string {
	ids := []string{"QuickReplyReview", "QuickReplyComplaint", "QuickReplyStandards", "QuickReplyTraining"}
	replies := make([]string, 0, len(ids))
	for _, id := range ids {
		replies = append(replies, x.Localize(locale, id))
	}
	return replies
}
