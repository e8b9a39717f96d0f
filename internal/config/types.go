// Package config resolves, parses, validates, and defaults snoozio configuration.
package config

// Config is the fully materialized runtime configuration used by snoozio.
type Config struct {
	Store     StoreConfig
	Sound     SoundConfig
	Vibration VibrationConfig
	Indicator IndicatorConfig
}

// StoreConfig locates the key-value store the application layer writes alarms to.
type StoreConfig struct {
	Path          string
	Key           string
	LockTimeoutMS int
}

// SoundConfig controls alarm audio output.
type SoundConfig struct {
	DefaultFile string
	Sink        string
	MediaRole   string
	Loop        bool
}

// VibrationConfig controls the vibration driver and its waveform.
type VibrationConfig struct {
	Enable    bool
	Device    string
	SysfsRoot string
	WaitMS    int
	OnMS      int
	OffMS     int
}

// IndicatorConfig controls alarm notifications and the alarm channel definition.
type IndicatorConfig struct {
	Enable             bool
	Backend            string
	AppName            string
	ChannelID          string
	ChannelName        string
	ChannelDescription string
	BypassDND          bool
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
