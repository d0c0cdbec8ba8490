package di

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"goWayback/internal/app"
)

// RunExport запускает экспорт при старте приложения и гасит его по завершении
func RunExport(lc fx.Lifecycle, exporter *app.Exporter, log *zap.Logger, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("export started")
			go func() {
				if err := exporter.Run(); err != nil {
					log.Error("export failed", zap.Error(err))
				}
				if err := shutdowner.Shutdown(); err != nil {
					log.Error("shutdown error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("export finished")
			return nil
		},
	})
}
