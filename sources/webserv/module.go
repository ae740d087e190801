package webserv

import (
	"context"

	"steinberg/sources/artificial"

	"go.uber.org/fx"
)

var Module = fx.Module("webserv",
	fx.Provide(
		NewWebservConfig,
		func(x *artificial.Advisor) AdvisorEngine { return x },
		func(x *artificial.Summarizer) SummaryEngine { return x },
		NewAdvisorHandlers,
		NewSessionHandlers,
		NewWebserv,
	),

	fx.Invoke(func(webserv *Webserv, lc fx.Lifecycle) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go webserv.serve()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return webserv.server.Shutdown(ctx)
			},
		})
	}),
)
