package flow

import (
	"time"

	"github.com/faceauth/cli/internal/utils"
)

// DeriveMood computes the resting face from the credential form
func DeriveMood(email, password string, showPassword bool) Mood {
	switch {
	case email == "" && password == "":
		return MoodIdle
	case showPassword:
		return MoodPeek
	case password == "":
		return MoodHappy
	case utils.ValidatePassword(password) != nil:
		return MoodConcern
	default:
		return MoodConfident
	}
}

// moodLock pins the face for a while after an event. Every lock or release
// bumps gen so a timer that fires after being superseded does nothing.
type moodLock struct {
	sched  Scheduler
	timer  Timer
	gen    uint64
	locked bool
}

// hold pins the face; release is called with the lock's generation when the
// interval ends. The caller holds the owning controller's mutex.
func (l *moodLock) hold(d time.Duration, release func(gen uint64)) {
	l.stop()
	l.locked = true
	gen := l.gen
	l.timer = l.sched.AfterFunc(d, func() { release(gen) })
}

// expire ends the lock if gen is still current
func (l *moodLock) expire(gen uint64) bool {
	if gen != l.gen || !l.locked {
		return false
	}
	l.locked = false
	l.timer = nil
	l.gen++
	return true
}

// stop cancels any pending release
func (l *moodLock) stop() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.locked = false
	l.gen++
}
