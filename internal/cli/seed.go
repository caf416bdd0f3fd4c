package cli

import (
	"github.com/spf13/cobra"
	"live-quiz-service/internal/infra/postgres"
	"live-quiz-service/internal/logger"
)

// NewSeedCmd writes the bundled sample quizzes to Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample quizzes into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			log := logger.Setup(cfg.Log.Level, cfg.Log.Format)
			ctx := cmd.Context()

			if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
				return err
			}
			db, err := openBunDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			for _, quiz := range sampleQuizzes() {
				if err := postgres.SaveQuiz(ctx, db, quiz); err != nil {
					return err
				}
				log.Info().Str("quiz_id", quiz.ID).Int("questions", len(quiz.Questions)).Msg("quiz seeded")
			}
			return nil
		},
	}
}
