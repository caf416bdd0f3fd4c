package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"live-quiz-service/internal/domain"
)

// QuizLoader loads quizzes from the quizzes/questions/options tables.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

const quizQuery = `SELECT id, title, timer_seconds, show_answer_feedback FROM quizzes WHERE id=$1`

const optionsQuery = `
SELECT q.id, q.question_text, o.id, o.option_text, o.is_correct
FROM questions q
JOIN options o ON o.question_id = q.id
WHERE q.quiz_id = $1
ORDER BY q.order_index, q.id, o.order_index, o.id`

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := l.pool.QueryRow(ctx, quizQuery, quizID).
		Scan(&quiz.ID, &quiz.Title, &quiz.TimerSeconds, &quiz.ShowAnswerFeedback)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}

	rows, err := l.pool.Query(ctx, optionsQuery, quizID)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			questionID, questionText string
			option                   domain.Option
		)
		if err := rows.Scan(&questionID, &questionText, &option.ID, &option.Text, &option.Correct); err != nil {
			return domain.Quiz{}, fmt.Errorf("scan question: %w", err)
		}
		n := len(quiz.Questions)
		if n == 0 || quiz.Questions[n-1].ID != questionID {
			quiz.Questions = append(quiz.Questions, domain.Question{ID: questionID, Text: questionText})
			n++
		}
		quiz.Questions[n-1].Options = append(quiz.Questions[n-1].Options, option)
	}
	if err := rows.Err(); err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	return quiz, nil
}
