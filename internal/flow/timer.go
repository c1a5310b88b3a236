package flow

import (
	"time"

	"github.com/faceauth/cli/internal/config"
)

// Timer is a pending callback that can be stopped
type Timer interface {
	Stop() bool
}

// Scheduler runs callbacks after a delay
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealScheduler schedules callbacks on the runtime timer
var RealScheduler Scheduler = realScheduler{}

// Timings are the feedback display intervals
type Timings struct {
	// SuccessDisplay is how long the success face stays up.
	SuccessDisplay time.Duration
	// ErrorCooldown holds the error face after a rejection or local validation failure.
	ErrorCooldown time.Duration
	// NetworkCooldown holds the dizzy face after a connectivity failure.
	NetworkCooldown time.Duration
}

// DefaultTimings returns the built-in intervals
func DefaultTimings() Timings {
	return Timings{
		SuccessDisplay:  config.DefaultSuccessDisplay,
		ErrorCooldown:   config.DefaultErrorCooldown,
		NetworkCooldown: config.DefaultNetworkCooldown,
	}
}

// TimingsFromConfig reads the intervals from the ui config section
func TimingsFromConfig(ui config.UIConfig) Timings {
	return Timings{
		SuccessDisplay:  config.ParseDuration(ui.SuccessDisplay, config.DefaultSuccessDisplay),
		ErrorCooldown:   config.ParseDuration(ui.ErrorCooldown, config.DefaultErrorCooldown),
		NetworkCooldown: config.ParseDuration(ui.NetworkCooldown, config.DefaultNetworkCooldown),
	}
}
