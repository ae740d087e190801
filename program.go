package main

import (
	"context"
	"os"
	"time"

	"steinberg/sources/artificial"
	"steinberg/sources/balancer"
	"steinberg/sources/configuration"
	"steinberg/sources/external"
	"steinberg/sources/features"
	"steinberg/sources/localization"
	"steinberg/sources/metrics"
	"steinberg/sources/metrics/collector"
	"steinberg/sources/network"
	"steinberg/sources/persistence"
	"steinberg/sources/platform"
	"steinberg/sources/remote"
	"steinberg/sources/repository"
	"steinberg/sources/session"
	"steinberg/sources/throttler"
	"steinberg/sources/tracing"
	"steinberg/sources/webserv"

	"github.com/alecthomas/kong"
	"go.uber.org/fx"
)

var (
	version   = "0.0.0"
	buildTime = "1970-01-01"
)

var cli struct {
	Config  string           `help:"Path to the yaml configuration file." env:"CONFIG_PATH" default:"config.yaml"`
	Version kong.VersionFlag `help:"Print version and exit."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("steinberg"),
		kong.Description("Steinberg Hospitality Analytics conversation service."),
		kong.Vars{"version": version},
	)

	_ = os.Setenv("CONFIG_PATH", cli.Config)
	platform.SetAppManifest(version, buildTime, time.Now())

	fx.New(
		tracing.Module,
		configuration.Module,
		external.Module,
		network.Module,
		persistence.Module,
		repository.Module,
		throttler.Module,
		features.Module,
		fx.Provide(func(fm *features.FeatureManager) session.FeatureGate { return fm }),
		localization.Module,
		metrics.Module,
		collector.Module,
		balancer.Module,
		artificial.Module,
		remote.Module,
		session.Module,
		webserv.Module,

		fx.Invoke(func(lc fx.Lifecycle, log *tracing.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					log.I("Steinberg Hospitality Analytics started successfully", "version", version, "build_time", buildTime)
					return nil
				},
				OnStop: func(ctx context.Context) error {
					log.I("Steinberg Hospitality Analytics stopped", "version", version, "build_time", buildTime)
					return nil
				},
			})
		}),
	).Run()
}
