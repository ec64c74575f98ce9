package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"masterdata-service/internal/model"
	"masterdata-service/internal/service"
	"masterdata-service/pkg/database"
	"masterdata-service/pkg/logger"
)

func newTokenCommand() *cobra.Command {
	var loginID string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a token for a user without checking the password (development only)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if cfg.IsProduction() {
				return errors.New("token is disabled when APP_ENV=production")
			}

			db, err := database.InitDB(&cfg.DB)
			if err != nil {
				return err
			}
			defer database.Close(db)

			ctx := logger.WithContext(cmd.Context(), log)
			var user model.User
			if err := db.WithContext(ctx).Where("login_id = ?", loginID).Take(&user).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("user %q not found", loginID)
				}
				return err
			}

			result, err := service.NewAuthService(db, newJWT(cfg)).IssueToken(ctx, &user)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&loginID, "login", "", "login id of the user")
	_ = cmd.MarkFlagRequired("login")
	return cmd
}
