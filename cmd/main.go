package main

import (
	"goWayback/internal/app"
	"goWayback/internal/config"
	"goWayback/internal/di"
	"goWayback/internal/downloader"
	"goWayback/internal/logger"
	"goWayback/internal/mirror"
	"goWayback/internal/wayback"

	"go.uber.org/fx"
)

func main() {
	fxApp := fx.New(
		fx.Provide(
			config.MustLoad,
			logger.ProvideLogger,
			wayback.NewResolver,
			downloader.NewDownloader,
			mirror.NewWriter,
			app.NewExporter,
		),

		fx.Invoke(
			di.RunExport,
		),
	)
	fxApp.Run()
}
