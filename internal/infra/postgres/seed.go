package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"live-quiz-service/internal/domain"
)

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID                 string `bun:"id,pk"`
	Title              string `bun:"title,notnull"`
	TimerSeconds       int    `bun:"timer_seconds,notnull"`
	ShowAnswerFeedback bool   `bun:"show_answer_feedback,notnull"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID         string `bun:"id,pk"`
	QuizID     string `bun:"quiz_id,notnull"`
	Text       string `bun:"question_text,notnull"`
	OrderIndex int    `bun:"order_index,notnull"`
}

type optionRow struct {
	bun.BaseModel `bun:"table:options"`

	ID         string `bun:"id,pk"`
	QuestionID string `bun:"question_id,notnull"`
	Text       string `bun:"option_text,notnull"`
	Correct    bool   `bun:"is_correct,notnull"`
	OrderIndex int    `bun:"order_index,notnull"`
}

// SaveQuiz writes quiz content in one transaction, replacing any previous questions of the same quiz.
func SaveQuiz(ctx context.Context, db *bun.DB, quiz domain.Quiz) error {
	if err := quiz.Validate(); err != nil {
		return fmt.Errorf("quiz %s: %w", quiz.ID, err)
	}
	timer := quiz.TimerSeconds
	if timer <= 0 {
		timer = domain.DefaultTimerSeconds
	}

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := &quizRow{
			ID:                 quiz.ID,
			Title:              quiz.Title,
			TimerSeconds:       timer,
			ShowAnswerFeedback: quiz.ShowAnswerFeedback,
		}
		if _, err := tx.NewInsert().Model(row).
			On("CONFLICT (id) DO UPDATE").
			Set("title = EXCLUDED.title").
			Set("timer_seconds = EXCLUDED.timer_seconds").
			Set("show_answer_feedback = EXCLUDED.show_answer_feedback").
			Exec(ctx); err != nil {
			return fmt.Errorf("upsert quiz: %w", err)
		}

		if _, err := tx.NewDelete().Model((*questionRow)(nil)).Where("quiz_id = ?", quiz.ID).Exec(ctx); err != nil {
			return fmt.Errorf("clear questions: %w", err)
		}

		questions := make([]questionRow, 0, len(quiz.Questions))
		var options []optionRow
		for qi, q := range quiz.Questions {
			questions = append(questions, questionRow{ID: q.ID, QuizID: quiz.ID, Text: q.Text, OrderIndex: qi})
			for oi, opt := range q.Options {
				options = append(options, optionRow{
					ID:         opt.ID,
					QuestionID: q.ID,
					Text:       opt.Text,
					Correct:    opt.Correct,
					OrderIndex: oi,
				})
			}
		}
		if _, err := tx.NewInsert().Model(&questions).Exec(ctx); err != nil {
			return fmt.Errorf("insert questions: %w", err)
		}
		if _, err := tx.NewInsert().Model(&options).Exec(ctx); err != nil {
			return fmt.Errorf("insert options: %w", err)
		}
		return nil
	})
}
