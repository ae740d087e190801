package session

import (
	"steinberg/sources/repository"

	"go.uber.org/fx"
)

var Module = fx.Module("session",
	fx.Provide(
		func(r *repository.QuotaRepository) QuotaStore { return r },
		func(r *repository.ConversationsRepository) ConversationStore { return r },
		NewCompactor,
		NewController,
	),
)
