package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"masterdata-service/internal/bootstrap"
	"masterdata-service/internal/model"
	"masterdata-service/pkg/database"
	"masterdata-service/pkg/logger"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the schema, seed the privilege catalog and create the bootstrap admin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			db, err := database.InitDB(&cfg.DB)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.MigrateModels(db, model.All()...); err != nil {
				return err
			}
			log.Info("Database migrations completed", zap.String("db_name", cfg.DB.DBName))

			ctx := logger.WithContext(cmd.Context(), log)
			if _, err := bootstrap.SeedPrivileges(ctx, db); err != nil {
				return err
			}
			_, err = bootstrap.EnsureAdmin(ctx, db, cfg.Bootstrap)
			return err
		},
	}
}
