package remote

import (
	"steinberg/sources/session"

	"go.uber.org/fx"
)

var Module = fx.Module("remote",
	fx.Provide(
		NewAdvisorEndpointConfig,
		NewAdvisorClient,
		func(x *AdvisorClient) session.ChatService { return x },
		func(x *AdvisorClient) session.Summarizer { return x },
	),
)
