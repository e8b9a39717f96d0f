// Package doctor runs runtime readiness diagnostics for config, the alarm
// store, audio output, vibration, and notifications.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/snoozio/snoozio/internal/alarms"
	"github.com/snoozio/snoozio/internal/audio"
	"github.com/snoozio/snoozio/internal/config"
	"github.com/snoozio/snoozio/internal/kvstore"
	"github.com/snoozio/snoozio/internal/logging"
	"github.com/snoozio/snoozio/internal/vibration"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(cfg config.Loaded) Report {
	checks := []Check{}

	checks = append(checks, Check{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", cfg.Path),
	})

	checks = append(checks, checkEnv("XDG_RUNTIME_DIR", func(v string) bool {
		return strings.TrimSpace(v) != ""
	}, "runtime dir available for the daemon socket", "XDG_RUNTIME_DIR is empty"))

	checks = append(checks, checkAlarmStore(cfg.Config.Store))
	checks = append(checks, checkSinkSelection(cfg.Config))
	checks = append(checks, checkDefaultSound(cfg.Config.Sound))
	checks = append(checks, checkVibration(cfg.Config.Vibration))

	if cfg.Config.Indicator.Enable {
		checks = append(checks, checkNotifications(cfg.Config.Indicator))
	}

	return Report{Checks: checks}
}

// checkEnv validates an environment variable through a caller-supplied predicate.
func checkEnv(name string, predicate func(string) bool, okMsg, failMsg string) Check {
	value := os.Getenv(name)
	if predicate(value) {
		return Check{Name: name, Pass: true, Message: okMsg}
	}
	return Check{Name: name, Pass: false, Message: failMsg}
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkAlarmStore reads the alarm list the way the daemon would. A missing
// store or key passes: alarms then play the default sound.
func checkAlarmStore(cfg config.StoreConfig) Check {
	path, err := config.ResolveStorePath(cfg)
	if err != nil {
		return Check{Name: "store", Pass: false, Message: err.Error()}
	}

	store := kvstore.New(path, time.Duration(cfg.LockTimeoutMS)*time.Millisecond)
	records, err := alarms.NewResolver(store, cfg.Key, logging.Discard()).Load(context.Background())
	switch {
	case errors.Is(err, kvstore.ErrStoreLocked):
		return Check{Name: "store", Pass: true, Message: fmt.Sprintf("%s is locked by another process", path)}
	case err != nil:
		return Check{Name: "store", Pass: false, Message: err.Error()}
	case len(records) == 0:
		message := fmt.Sprintf("no alarms under %q in %s", cfg.Key, path)
		if keys, keysErr := store.Keys(context.Background()); keysErr == nil && len(keys) > 0 {
			message += fmt.Sprintf(" (stored keys: %s)", strings.Join(keys, ", "))
		}
		return Check{Name: "store", Pass: true, Message: message}
	default:
		return Check{Name: "store", Pass: true, Message: fmt.Sprintf("%d alarms under %q in %s", len(records), cfg.Key, path)}
	}
}

// checkSinkSelection runs live sink selection to surface fallback issues.
func checkSinkSelection(cfg config.Config) Check {
	selection, err := audio.SelectSink(context.Background(), cfg.Sound.Sink)
	if err != nil {
		return Check{Name: "audio.sink", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Sink.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.sink", Pass: true, Message: message}
}

// checkDefaultSound decodes the configured fallback file. An unusable file
// fails the check even though playback would fall back to the bundled tone.
func checkDefaultSound(cfg config.SoundConfig) Check {
	ref := strings.TrimSpace(cfg.DefaultFile)
	if ref == "" {
		return Check{Name: "sound.default", Pass: true, Message: fmt.Sprintf("using bundled tone %s", audio.BuiltinToneID)}
	}

	format, err := audio.Probe(ref)
	if err != nil {
		return Check{Name: "sound.default", Pass: false, Message: err.Error()}
	}
	return Check{
		Name:    "sound.default",
		Pass:    true,
		Message: fmt.Sprintf("%s decodes at %d Hz, %d channels", ref, int(format.SampleRate), format.NumChannels),
	}
}

// checkVibration reports the motor the daemon would drive. Only an explicitly
// configured motor that is missing fails.
func checkVibration(cfg config.VibrationConfig) Check {
	if !cfg.Enable {
		return Check{Name: "vibration", Pass: true, Message: "disabled"}
	}
	if err := vibration.PatternFromConfig(cfg).Validate(); err != nil {
		return Check{Name: "vibration", Pass: false, Message: err.Error()}
	}

	driver := vibration.Detect(cfg, logging.Discard())
	device := strings.ToLower(strings.TrimSpace(cfg.Device))

	var available bool
	switch device {
	case config.VibrationDeviceNone:
		return Check{Name: "vibration", Pass: true, Message: "device set to none"}
	case config.VibrationDeviceLEDs:
		available = vibration.NewLEDMotor(cfg.SysfsRoot).Available()
	case config.VibrationDeviceTimedOutput:
		available = vibration.NewTimedOutputMotor(cfg.SysfsRoot).Available()
	default:
		available = true
	}
	if !available {
		return Check{Name: "vibration", Pass: false, Message: fmt.Sprintf("%s motor not found under %s", device, cfg.SysfsRoot)}
	}

	if driver.Name() == "none" {
		return Check{Name: "vibration", Pass: true, Message: fmt.Sprintf("no motor under %s; alarms play without vibration", cfg.SysfsRoot)}
	}
	return Check{Name: "vibration", Pass: true, Message: fmt.Sprintf("driving %s motor", driver.Name())}
}

// checkNotifications validates the tooling behind the configured backend.
func checkNotifications(cfg config.IndicatorConfig) Check {
	if strings.EqualFold(strings.TrimSpace(cfg.Backend), config.IndicatorBackendBeeep) {
		return Check{Name: "indicator", Pass: true, Message: "using beeep notifications"}
	}
	return checkBinary("busctl", "desktop notifications require busctl")
}
