package config

const (
	// DefaultStoreKey mirrors the key the application layer persists alarms under.
	DefaultStoreKey = "flutter.custom_alarms"

	VibrationDeviceAuto        = "auto"
	VibrationDeviceLEDs        = "leds"
	VibrationDeviceTimedOutput = "timed_output"
	VibrationDeviceNone        = "none"

	IndicatorBackendDesktop = "desktop"
	IndicatorBackendBeeep   = "beeep"
)

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Path:          "",
			Key:           DefaultStoreKey,
			LockTimeoutMS: 1000,
		},
		Sound: SoundConfig{
			Sink:      "default",
			MediaRole: "alarm",
			Loop:      true,
		},
		Vibration: VibrationConfig{
			Enable:    true,
			Device:    VibrationDeviceAuto,
			SysfsRoot: "/sys",
			WaitMS:    0,
			OnMS:      1000,
			OffMS:     500,
		},
		Indicator: IndicatorConfig{
			Enable:             true,
			Backend:            IndicatorBackendDesktop,
			AppName:            "snoozio",
			ChannelID:          "alarms_channel",
			ChannelName:        "Alarms",
			ChannelDescription: "Full-screen alarms with sound",
			BypassDND:          true,
		},
	}
}
