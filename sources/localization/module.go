package localization

import (
	"steinberg/sources/session"

	"go.uber.org/fx"
)

var Module = fx.Module("localization",
	fx.Provide(
		NewLocalizationConfig,
		NewLanguageDetector,
		NewLocalizationManager,
		func(m *LocalizationManager) session.Localizer { return m },
	),
)
