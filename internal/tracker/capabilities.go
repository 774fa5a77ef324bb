package tracker

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Capabilities are the device side effects of the rest timer. All of them
// are optional, failures are ignored by the runtime.
type Capabilities interface {
	PlayCue(ctx context.Context, pulses int) error
	Vibrate(ctx context.Context, pattern []time.Duration) error
	AcquireWakeLock(ctx context.Context) error
	ReleaseWakeLock(ctx context.Context) error
}

const cuePulses = 3

// vibratePattern alternates vibrate and pause durations.
var vibratePattern = []time.Duration{
	200 * time.Millisecond,
	100 * time.Millisecond,
	200 * time.Millisecond,
	100 * time.Millisecond,
	200 * time.Millisecond,
}

var (
	_ Capabilities = NoopCapabilities{}
	_ Capabilities = LogCapabilities{}
)

type NoopCapabilities struct{}

func (NoopCapabilities) PlayCue(context.Context, int) error             { return nil }
func (NoopCapabilities) Vibrate(context.Context, []time.Duration) error { return nil }
func (NoopCapabilities) AcquireWakeLock(context.Context) error          { return nil }
func (NoopCapabilities) ReleaseWakeLock(context.Context) error          { return nil }

// LogCapabilities only logs the side effects. Used by the service, where
// the device is on the other side of the API.
type LogCapabilities struct{}

func (LogCapabilities) PlayCue(_ context.Context, pulses int) error {
	log.Debugf("tracker: play cue, %d pulses", pulses)
	return nil
}

func (LogCapabilities) Vibrate(_ context.Context, pattern []time.Duration) error {
	log.Debugf("tracker: vibrate %v", pattern)
	return nil
}

func (LogCapabilities) AcquireWakeLock(context.Context) error {
	log.Debugln("tracker: wake lock acquired")
	return nil
}

func (LogCapabilities) ReleaseWakeLock(context.Context) error {
	log.Debugln("tracker: wake lock released")
	return nil
}
