// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	schedulestore "github.com/dalemusser/festhub/internal/app/store/schedule"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// FestHub materializes the registration schedule document here so a fresh
// deployment has a window before the first request arrives.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	schedule, err := schedulestore.New(deps.FestHubMongoDatabase).Get(ctx)
	if err != nil {
		logger.Error("schedule bootstrap failed", zap.Error(err))
		return err
	}
	logger.Info("registration window",
		zap.Time("start", schedule.StartDateTime),
		zap.Time("end", schedule.EndDateTime))
	return nil
}
