// Package scoring turns response latency into points and ranks players.
package scoring

import (
	"math"
	"math/rand"
	"sort"
	"strings"

	"live-quiz-service/internal/domain"
)

const (
	// MaxPoints is awarded for an instant correct answer.
	MaxPoints = 1000
	// DecayFactor controls how fast points fall off over the question duration.
	DecayFactor = 3.0

	// CodeLength is the fixed length of a game code.
	CodeLength = 6
	// CodeAlphabet omits 0/O and 1/I/L.
	CodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
)

// Score returns the points for a correct answer given after elapsed seconds of a timer-second question.
func Score(elapsedSeconds, timerSeconds float64) int {
	if elapsedSeconds < 0 {
		return MaxPoints
	}
	if elapsedSeconds >= timerSeconds {
		return 0
	}
	ratio := elapsedSeconds / timerSeconds
	return int(math.Round(MaxPoints * math.Exp(-DecayFactor*ratio)))
}

// BuildLeaderboard ranks the roster by cumulative score. Players are expected in join order;
// equal scores keep that order. last may be nil before any question has finished.
func BuildLeaderboard(players []*domain.Player, last *domain.QuestionResult) []domain.LeaderboardEntry {
	results := last.ByConn()
	entries := make([]domain.LeaderboardEntry, 0, len(players))
	for _, p := range players {
		entry := domain.LeaderboardEntry{
			Username: p.Username,
			Score:    p.Score,
		}
		if r, ok := results[p.ConnID]; ok {
			correct := r.Correct
			entry.LastAnswerCorrect = &correct
			entry.LastAnswerPoints = r.Points
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// GenerateGameCode draws CodeLength characters uniformly from CodeAlphabet.
// Uniqueness against live games is the registry's concern.
func GenerateGameCode() string {
	var b strings.Builder
	b.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		b.WriteByte(CodeAlphabet[rand.Intn(len(CodeAlphabet))])
	}
	return b.String()
}

// IsGameCode reports whether s has the shape of a generated code.
func IsGameCode(s string) bool {
	if len(s) != CodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(CodeAlphabet, rune(s[i])) {
			return false
		}
	}
	return true
}
