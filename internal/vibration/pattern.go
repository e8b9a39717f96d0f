// Package vibration drives repeating alarm waveforms on Linux vibration motors.
package vibration

import (
	"errors"
	"fmt"
	"time"

	"github.com/snoozio/snoozio/internal/config"
)

// Pattern is an alternating off/on waveform. Even indexes are off segments,
// odd indexes are on segments. Repeat is the index playback loops back to
// after the last segment, or -1 to play once.
type Pattern struct {
	Timings []time.Duration
	Repeat  int
}

// DefaultPattern is the alarm waveform: no initial wait, 1s on, 0.5s off,
// repeating from the on segment.
func DefaultPattern() Pattern {
	return Pattern{
		Timings: []time.Duration{0, 1000 * time.Millisecond, 500 * time.Millisecond},
		Repeat:  1,
	}
}

// PatternFromConfig builds the alarm waveform from config timings.
func PatternFromConfig(cfg config.VibrationConfig) Pattern {
	return Pattern{
		Timings: []time.Duration{
			time.Duration(cfg.WaitMS) * time.Millisecond,
			time.Duration(cfg.OnMS) * time.Millisecond,
			time.Duration(cfg.OffMS) * time.Millisecond,
		},
		Repeat: 1,
	}
}

// Validate rejects patterns that cannot be played.
func (p Pattern) Validate() error {
	if len(p.Timings) == 0 {
		return errors.New("vibration pattern has no timings")
	}
	for i, d := range p.Timings {
		if d < 0 {
			return fmt.Errorf("vibration pattern timing %d is negative", i)
		}
	}
	if p.Repeat < -1 || p.Repeat >= len(p.Timings) {
		return fmt.Errorf("vibration pattern repeat index %d out of range", p.Repeat)
	}
	if p.Repeat >= 0 {
		var loop time.Duration
		for _, d := range p.Timings[p.Repeat:] {
			loop += d
		}
		if loop <= 0 {
			return errors.New("vibration pattern repeats a zero-length section")
		}
	}
	return nil
}
