package vibration

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/snoozio/snoozio/internal/logging"
)

// Motor is one vibration actuator.
type Motor interface {
	Name() string
	// On energizes the motor for at most d.
	On(d time.Duration) error
	Off() error
}

// Driver plays vibration patterns.
type Driver interface {
	Start(Pattern) error
	Cancel() error
	Name() string
}

// PatternDriver plays a Pattern on a Motor from its own goroutine.
type PatternDriver struct {
	motor  Motor
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPatternDriver wraps motor.
func NewPatternDriver(motor Motor, logger *slog.Logger) *PatternDriver {
	if logger == nil {
		logger = logging.Discard()
	}
	return &PatternDriver{motor: motor, logger: logger}
}

// Name reports the underlying motor.
func (d *PatternDriver) Name() string {
	return d.motor.Name()
}

// Start replaces any running pattern with p.
func (d *PatternDriver) Start(p Pattern) error {
	if err := p.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.stopLocked(); err != nil {
		d.logger.Warn("vibration reset failed", "motor", d.motor.Name(), "error", err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	d.cancel = cancel
	d.done = done

	timings := append([]time.Duration(nil), p.Timings...)
	go d.run(ctx, Pattern{Timings: timings, Repeat: p.Repeat}, done)
	return nil
}

// Cancel stops the running pattern and turns the motor off. It is a no-op
// when nothing runs.
func (d *PatternDriver) Cancel() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopLocked()
}

func (d *PatternDriver) stopLocked() error {
	if d.cancel == nil {
		return nil
	}
	d.cancel()
	<-d.done
	d.cancel = nil
	d.done = nil

	if err := d.motor.Off(); err != nil {
		return fmt.Errorf("turn off %s: %w", d.motor.Name(), err)
	}
	return nil
}

func (d *PatternDriver) run(ctx context.Context, p Pattern, done chan<- struct{}) {
	defer close(done)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	on := false
	for i := 0; ; {
		step := p.Timings[i]
		if i%2 == 1 && step > 0 {
			if err := d.motor.On(step); err != nil {
				d.logger.Error("vibration pulse failed", "motor", d.motor.Name(), "error", err.Error())
			}
			on = true
		} else if on {
			if err := d.motor.Off(); err != nil {
				d.logger.Error("vibration off failed", "motor", d.motor.Name(), "error", err.Error())
			}
			on = false
		}

		if step > 0 {
			timer.Reset(step)
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
		} else if ctx.Err() != nil {
			return
		}

		i++
		if i >= len(p.Timings) {
			if p.Repeat < 0 {
				return
			}
			i = p.Repeat
		}
	}
}

// Noop is the driver used when no vibration hardware is available.
type Noop struct{}

func (Noop) Start(Pattern) error { return nil }
func (Noop) Cancel() error       { return nil }
func (Noop) Name() string        { return "none" }

// Alarm binds a driver to the alarm waveform.
type Alarm struct {
	driver  Driver
	pattern Pattern
}

// NewAlarm returns a vibrator that plays pattern on driver.
func NewAlarm(driver Driver, pattern Pattern) *Alarm {
	if driver == nil {
		driver = Noop{}
	}
	return &Alarm{driver: driver, pattern: pattern}
}

// Start begins the alarm waveform.
func (a *Alarm) Start() error {
	return a.driver.Start(a.pattern)
}

// Cancel stops vibrating.
func (a *Alarm) Cancel() error {
	return a.driver.Cancel()
}
