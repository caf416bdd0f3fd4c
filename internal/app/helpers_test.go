package app_test

import (
	"sort"
	"sync"
	"time"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

// fakeClock is a manual clock and scheduler. Advance fires due callbacks in deadline order on the
// calling goroutine.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) app.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		next := c.nextDueLocked(target)
		if next == nil {
			break
		}
		next.fired = true
		c.now = next.at
		c.mu.Unlock()
		next.fn()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

func (c *fakeClock) nextDueLocked(target time.Time) *fakeTimer {
	pending := make([]*fakeTimer, 0, len(c.timers))
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(target) {
			pending = append(pending, t)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].at.Before(pending[j].at) })
	return pending[0]
}

// Pending counts armed timers.
func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type sentEvent struct {
	to    string
	room  bool
	event domain.Event
}

// recorder is an app.Broadcaster that keeps every emitted event.
type recorder struct {
	mu     sync.Mutex
	sent   []sentEvent
	rooms  map[string]map[string]struct{}
	closed []string
}

func newRecorder() *recorder {
	return &recorder{rooms: make(map[string]map[string]struct{})}
}

func (r *recorder) Send(connID string, event domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentEvent{to: connID, event: event})
}

func (r *recorder) Broadcast(room string, event domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentEvent{to: room, room: true, event: event})
}

func (r *recorder) JoinRoom(room, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rooms[room] == nil {
		r.rooms[room] = make(map[string]struct{})
	}
	r.rooms[room][connID] = struct{}{}
}

func (r *recorder) LeaveRoom(room, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms[room], connID)
}

func (r *recorder) CloseRoom(room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, room)
	r.closed = append(r.closed, room)
}

func (r *recorder) ofType(typ domain.EventType) []sentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sentEvent
	for _, s := range r.sent {
		if s.event.Type == typ {
			out = append(out, s)
		}
	}
	return out
}

func (r *recorder) types() []domain.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventType, 0, len(r.sent))
	for _, s := range r.sent {
		out = append(out, s.event.Type)
	}
	return out
}

func (r *recorder) inRoom(room, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rooms[room][connID]
	return ok
}

// twoOptionQuiz has n questions with a 10s timer; option "a" is always correct.
func twoOptionQuiz(n int) domain.Quiz {
	quiz := domain.Quiz{
		ID:                 "quiz-1",
		Title:              "Sample",
		TimerSeconds:       10,
		ShowAnswerFeedback: true,
	}
	for i := 0; i < n; i++ {
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:   "q" + string(rune('1'+i)),
			Text: "Question " + string(rune('1'+i)),
			Options: []domain.Option{
				{ID: "a", Text: "right", Correct: true},
				{ID: "b", Text: "wrong"},
			},
		})
	}
	return quiz
}
