package vibration

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/snoozio/snoozio/internal/config"
	"github.com/snoozio/snoozio/internal/logging"
)

// LEDMotor drives a vibrator exposed through the LED transient trigger.
type LEDMotor struct {
	dir string
}

// NewLEDMotor returns the motor under <sysfsRoot>/class/leds/vibrator.
func NewLEDMotor(sysfsRoot string) *LEDMotor {
	return &LEDMotor{dir: filepath.Join(sysfsRoot, "class", "leds", "vibrator")}
}

func (m *LEDMotor) Name() string { return config.VibrationDeviceLEDs }

// Available reports whether the transient trigger attributes exist.
func (m *LEDMotor) Available() bool {
	return fileExists(filepath.Join(m.dir, "activate"))
}

func (m *LEDMotor) On(d time.Duration) error {
	if err := writeAttr(m.dir, "duration", strconv.FormatInt(d.Milliseconds(), 10)); err != nil {
		return err
	}
	if err := writeAttr(m.dir, "state", "1"); err != nil {
		return err
	}
	return writeAttr(m.dir, "activate", "1")
}

func (m *LEDMotor) Off() error {
	return writeAttr(m.dir, "activate", "0")
}

// TimedOutputMotor drives the legacy timed_output vibrator.
type TimedOutputMotor struct {
	dir string
}

// NewTimedOutputMotor returns the motor under <sysfsRoot>/class/timed_output/vibrator.
func NewTimedOutputMotor(sysfsRoot string) *TimedOutputMotor {
	return &TimedOutputMotor{dir: filepath.Join(sysfsRoot, "class", "timed_output", "vibrator")}
}

func (m *TimedOutputMotor) Name() string { return config.VibrationDeviceTimedOutput }

func (m *TimedOutputMotor) Available() bool {
	return fileExists(filepath.Join(m.dir, "enable"))
}

func (m *TimedOutputMotor) On(d time.Duration) error {
	return writeAttr(m.dir, "enable", strconv.FormatInt(d.Milliseconds(), 10))
}

func (m *TimedOutputMotor) Off() error {
	return writeAttr(m.dir, "enable", "0")
}

// Detect selects the vibration driver for cfg. Disabled vibration, device
// "none", or an auto probe that finds nothing yield Noop.
func Detect(cfg config.VibrationConfig, logger *slog.Logger) Driver {
	if logger == nil {
		logger = logging.Discard()
	}
	if !cfg.Enable {
		return Noop{}
	}

	leds := NewLEDMotor(cfg.SysfsRoot)
	timed := NewTimedOutputMotor(cfg.SysfsRoot)

	switch strings.ToLower(strings.TrimSpace(cfg.Device)) {
	case config.VibrationDeviceNone:
		return Noop{}
	case config.VibrationDeviceLEDs:
		return NewPatternDriver(leds, logger)
	case config.VibrationDeviceTimedOutput:
		return NewPatternDriver(timed, logger)
	}

	switch {
	case leds.Available():
		return NewPatternDriver(leds, logger)
	case timed.Available():
		return NewPatternDriver(timed, logger)
	default:
		logger.Info("no vibration motor found", "sysfs_root", cfg.SysfsRoot)
		return Noop{}
	}
}

func writeAttr(dir, name, value string) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(value), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
