package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"masterdata-service/pkg/config"
	"masterdata-service/pkg/jwtutil"
	"masterdata-service/pkg/logger"
)

const serviceName = "masterdata-service"

func main() {
	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Multi-tenant fleet master data API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newMigrateCommand(), newTokenCommand())

	if err := root.Execute(); err != nil {
		logger.GetLogger().Error("Command failed", zap.Error(err))
		_ = logger.GetLogger().Sync()
		os.Exit(1)
	}
}

// setup loads configuration and initializes the logger shared by every command
func setup() (*config.Config, *zap.Logger, error) {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load(serviceName)
	if err != nil {
		return nil, nil, err
	}

	// Initialize logger with config
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		return nil, nil, err
	}
	log := logger.GetLogger()
	log.Info("Configuration loaded", cfg.LogConfig()...)
	return cfg, log, nil
}

func newJWT(cfg *config.Config) *jwtutil.JWTUtil {
	return jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      cfg.JWT.SigningKey,
		ExpirationHours: cfg.JWT.ExpirationHours,
	})
}
