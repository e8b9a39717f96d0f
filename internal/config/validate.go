package config

import (
	"fmt"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if strings.TrimSpace(cfg.Store.Key) == "" {
		return nil, fmt.Errorf("store.key must not be empty")
	}
	if cfg.Store.LockTimeoutMS <= 0 {
		return nil, fmt.Errorf("store.lock_timeout_ms must be > 0")
	}

	if strings.TrimSpace(cfg.Sound.MediaRole) == "" {
		return nil, fmt.Errorf("sound.media_role must not be empty")
	}
	if strings.TrimSpace(cfg.Sound.Sink) == "" {
		return nil, fmt.Errorf("sound.sink must not be empty")
	}
	if !cfg.Sound.Loop {
		warnings = append(warnings, Warning{Message: "sound.loop=false; alarms restart on completion instead of looping seamlessly"})
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Vibration.Device)) {
	case VibrationDeviceAuto, VibrationDeviceLEDs, VibrationDeviceTimedOutput, VibrationDeviceNone:
	default:
		return nil, fmt.Errorf("vibration.device must be one of: auto, leds, timed_output, none")
	}
	if cfg.Vibration.WaitMS < 0 {
		return nil, fmt.Errorf("vibration.wait_ms must be >= 0")
	}
	if cfg.Vibration.OnMS <= 0 {
		return nil, fmt.Errorf("vibration.on_ms must be > 0")
	}
	if cfg.Vibration.OffMS < 0 {
		return nil, fmt.Errorf("vibration.off_ms must be >= 0")
	}
	if strings.TrimSpace(cfg.Vibration.SysfsRoot) == "" {
		return nil, fmt.Errorf("vibration.sysfs_root must not be empty")
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Indicator.Backend))
	if backend != IndicatorBackendDesktop && backend != IndicatorBackendBeeep {
		return nil, fmt.Errorf("indicator.backend must be one of: desktop, beeep")
	}
	if strings.TrimSpace(cfg.Indicator.ChannelID) == "" {
		return nil, fmt.Errorf("indicator.channel_id must not be empty")
	}
	if strings.TrimSpace(cfg.Indicator.ChannelName) == "" {
		return nil, fmt.Errorf("indicator.channel_name must not be empty")
	}
	if cfg.Indicator.Enable && strings.TrimSpace(cfg.Indicator.AppName) == "" {
		return nil, fmt.Errorf("indicator.app_name must not be empty when indicator.enable=true")
	}

	return warnings, nil
}
