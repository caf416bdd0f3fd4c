package cli

import "live-quiz-service/internal/domain"

// sampleQuizzes backs the static loader when no database is configured and is what `seed` writes.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:                 "quiz-1",
			Title:              "Warm-up",
			TimerSeconds:       15,
			ShowAnswerFeedback: true,
			Questions: []domain.Question{
				{
					ID:   "quiz-1-q1",
					Text: "What is 2 + 2?",
					Options: []domain.Option{
						{ID: "quiz-1-q1-o1", Text: "3"},
						{ID: "quiz-1-q1-o2", Text: "4", Correct: true},
						{ID: "quiz-1-q1-o3", Text: "5"},
					},
				},
				{
					ID:   "quiz-1-q2",
					Text: "Which planet is known as the red planet?",
					Options: []domain.Option{
						{ID: "quiz-1-q2-o1", Text: "Venus"},
						{ID: "quiz-1-q2-o2", Text: "Jupiter"},
						{ID: "quiz-1-q2-o3", Text: "Mars", Correct: true},
						{ID: "quiz-1-q2-o4", Text: "Mercury"},
					},
				},
				{
					ID:   "quiz-1-q3",
					Text: "How many sides does a hexagon have?",
					Options: []domain.Option{
						{ID: "quiz-1-q3-o1", Text: "6", Correct: true},
						{ID: "quiz-1-q3-o2", Text: "8"},
					},
				},
			},
		},
	}
}
