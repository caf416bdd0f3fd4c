package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"live-quiz-service/internal/auth"
	"live-quiz-service/internal/config"
)

// NewTokenCmd prints a signed host token.
func NewTokenCmd(configPath *string) *cobra.Command {
	var hostID, username string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a host token for opening games",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("auth.jwt_secret not configured")
			}
			if hostID == "" {
				hostID = uuid.NewString()
			}
			ttl := config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour)
			token, err := auth.NewTokenService(cfg.Auth.JWTSecret).Issue(hostID, username, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&hostID, "host-id", "", "host identity (random when empty)")
	cmd.Flags().StringVar(&username, "username", "host", "display name carried in the token")
	return cmd
}
