package doctor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/snoozio/snoozio/internal/config"
	"github.com/snoozio/snoozio/internal/kvstore"
	"github.com/stretchr/testify/require"
)

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "one", Pass: true, Message: "good"},
		{Name: "two", Pass: false, Message: "bad"},
	}}

	require.False(t, report.OK())
	text := report.String()
	require.Contains(t, text, "[OK] one: good")
	require.Contains(t, text, "[FAIL] two: bad")
}

func TestReportOKAllPassing(t *testing.T) {
	report := Report{Checks: []Check{{Name: "one", Pass: true}, {Name: "two", Pass: true}}}
	require.True(t, report.OK())
}

func TestCheckEnv(t *testing.T) {
	t.Setenv("TEST_DOCTOR_ENV", "/run/user/1000")

	check := checkEnv(
		"TEST_DOCTOR_ENV",
		func(v string) bool { return strings.HasPrefix(v, "/run/user") },
		"looks good",
		"unexpected",
	)

	require.True(t, check.Pass)
	require.Equal(t, "looks good", check.Message)
}

func TestCheckBinaryFound(t *testing.T) {
	check := checkBinary("sh", "shell available")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "shell available")
}

func TestCheckBinaryMissing(t *testing.T) {
	check := checkBinary("definitely-not-a-real-binary", "unused")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "binary not found")
}

func TestCheckAlarmStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "prefs.db")
	cfg := config.StoreConfig{Path: dbPath, Key: config.DefaultStoreKey, LockTimeoutMS: 200}

	check := checkAlarmStore(cfg)
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "no alarms")

	store := kvstore.New(dbPath, 200*time.Millisecond)
	require.NoError(t, store.Put(context.Background(), "flutter.alarms", `[{"id":"1"}]`))

	check = checkAlarmStore(cfg)
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "no alarms")
	require.Contains(t, check.Message, "stored keys: flutter.alarms")

	require.NoError(t, store.Put(context.Background(), cfg.Key, `[{"id":"1"},{"id":"2"}]`))

	check = checkAlarmStore(cfg)
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "2 alarms")

	require.NoError(t, store.Put(context.Background(), cfg.Key, `not json`))
	check = checkAlarmStore(cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "decode alarm list")
}

func TestCheckSinkSelectionFailureWithInvalidPulseServer(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")

	check := checkSinkSelection(config.Default())
	require.False(t, check.Pass)
	require.Equal(t, "audio.sink", check.Name)
}

func TestCheckDefaultSound(t *testing.T) {
	check := checkDefaultSound(config.SoundConfig{})
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "builtin:alarm")

	missing := filepath.Join(t.TempDir(), "missing.wav")
	check = checkDefaultSound(config.SoundConfig{DefaultFile: missing})
	require.False(t, check.Pass)

	unsupported := filepath.Join(t.TempDir(), "alarm.aiff")
	require.NoError(t, os.WriteFile(unsupported, []byte("FORM"), 0o600))
	check = checkDefaultSound(config.SoundConfig{DefaultFile: unsupported})
	require.False(t, check.Pass)
}

func TestCheckVibration(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default().Vibration
	cfg.SysfsRoot = root

	cfg.Enable = false
	check := checkVibration(cfg)
	require.True(t, check.Pass)
	require.Equal(t, "disabled", check.Message)

	cfg.Enable = true
	check = checkVibration(cfg)
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "without vibration")

	cfg.Device = config.VibrationDeviceLEDs
	check = checkVibration(cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "motor not found")

	ledDir := filepath.Join(root, "class", "leds", "vibrator")
	require.NoError(t, os.MkdirAll(ledDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ledDir, "activate"), []byte("0"), 0o644))
	check = checkVibration(cfg)
	require.True(t, check.Pass)
	require.Equal(t, "driving leds motor", check.Message)

	cfg.OnMS = 0
	cfg.OffMS = 0
	check = checkVibration(cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "zero-length")
}

func TestCheckNotifications(t *testing.T) {
	cfg := config.Default().Indicator

	cfg.Backend = config.IndicatorBackendBeeep
	check := checkNotifications(cfg)
	require.True(t, check.Pass)

	binDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "busctl"), []byte("#!/usr/bin/env sh\nexit 0\n"), 0o755))
	t.Setenv("PATH", binDir)

	cfg.Backend = config.IndicatorBackendDesktop
	check = checkNotifications(cfg)
	require.True(t, check.Pass)
	require.Equal(t, "busctl", check.Name)
}

func TestRunSkipsNotificationCheckWhenDisabled(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	cfg := config.Default()
	cfg.Store.Path = filepath.Join(t.TempDir(), "prefs.db")
	cfg.Vibration.SysfsRoot = t.TempDir()
	cfg.Indicator.Enable = false

	report := Run(config.Loaded{Path: "/tmp/config.jsonc", Config: cfg})

	names := make([]string, 0, len(report.Checks))
	for _, check := range report.Checks {
		names = append(names, check.Name)
	}
	require.Equal(t, []string{"config", "XDG_RUNTIME_DIR", "store", "audio.sink", "sound.default", "vibration"}, names)
	require.False(t, report.OK())
}
