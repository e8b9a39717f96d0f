package config

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeJSONCRemovesCommentsAndTrailingCommas(t *testing.T) {
	input := `
{
  // line comment
  "items": [
    "one", /* block comment */
    "two",
  ],
  "nested": {
    "enabled": true,
  },
}
`

	normalized, err := normalizeJSONC(input)
	require.NoError(t, err)
	require.NotContains(t, normalized, "//")
	require.NotContains(t, normalized, "/*")
	require.NotContains(t, normalized, ",]")
	require.NotContains(t, normalized, ",}")
}

func TestNormalizeJSONCRetainsCommentLikeTextInsideStrings(t *testing.T) {
	input := `{"value":"contains // and /* comment-like */ text",}`
	normalized, err := normalizeJSONC(input)
	require.NoError(t, err)
	require.Contains(t, normalized, "// and /* comment-like */")
}

func TestNormalizeJSONCUnterminatedBlockCommentFails(t *testing.T) {
	_, err := normalizeJSONC("{ /* unterminated ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unterminated block comment")
}

func TestEnsureSingleJSONValueRejectsExtraPayload(t *testing.T) {
	decoder := json.NewDecoder(strings.NewReader(`{"one":1}{"two":2}`))
	var payload map[string]any
	require.NoError(t, decoder.Decode(&payload))

	err := ensureSingleJSONValue(decoder)
	require.Error(t, err)
	require.Contains(t, err.Error(), "multiple JSON values")
}

func TestOffsetToLineCol(t *testing.T) {
	content := "line1\nline2\nline3"
	line, col := offsetToLineCol(content, 1)
	require.Equal(t, 1, line)
	require.Equal(t, 1, col)

	line, col = offsetToLineCol(content, 8) // line2, col2
	require.Equal(t, 2, line)
	require.Equal(t, 2, col)

	line, col = offsetToLineCol(content, 999)
	require.Equal(t, 3, line)
	require.Equal(t, 5, col)
}

func TestParseJSONCAppliesAllSections(t *testing.T) {
	cfg, warnings, err := parseJSONC(`{
  // alarms live in the shared preferences database
  "store": {"path": "/tmp/prefs.db", "key": "alarms", "lock_timeout_ms": 250},
  "sound": {"default_file": "/usr/share/sounds/alarm.ogg", "sink": "speakers", "media_role": "alarm", "loop": true},
  "vibration": {"enable": true, "device": " LEDS ", "sysfs_root": "/tmp/sys", "wait_ms": 5, "on_ms": 800, "off_ms": 200},
  "indicator": {"backend": "beeep", "app_name": "wake", "channel_id": "wake_channel", "channel_name": "Wake", "bypass_dnd": false},
}`, Default())
	require.NoError(t, err)
	require.Empty(t, warnings)

	require.Equal(t, "/tmp/prefs.db", cfg.Store.Path)
	require.Equal(t, "alarms", cfg.Store.Key)
	require.Equal(t, 250, cfg.Store.LockTimeoutMS)
	require.Equal(t, "/usr/share/sounds/alarm.ogg", cfg.Sound.DefaultFile)
	require.Equal(t, "speakers", cfg.Sound.Sink)
	require.Equal(t, VibrationDeviceLEDs, cfg.Vibration.Device)
	require.Equal(t, "/tmp/sys", cfg.Vibration.SysfsRoot)
	require.Equal(t, 5, cfg.Vibration.WaitMS)
	require.Equal(t, 800, cfg.Vibration.OnMS)
	require.Equal(t, 200, cfg.Vibration.OffMS)
	require.Equal(t, IndicatorBackendBeeep, cfg.Indicator.Backend)
	require.Equal(t, "wake", cfg.Indicator.AppName)
	require.Equal(t, "wake_channel", cfg.Indicator.ChannelID)
	require.Equal(t, "Wake", cfg.Indicator.ChannelName)
	require.Equal(t, "Full-screen alarms with sound", cfg.Indicator.ChannelDescription)
	require.False(t, cfg.Indicator.BypassDND)
}

func TestParseJSONCWarnsOnIgnoredVibrationDevice(t *testing.T) {
	_, warnings, err := parseJSONC(`{"vibration": {"enable": false, "device": "leds"}}`, Default())
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, "ignored")
}

func TestParseJSONCRejectsUnknownField(t *testing.T) {
	_, _, err := parseJSONC(`{"sound": {"volume": 0.5}}`, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown field")
}

func TestParseJSONCRejectsMultipleTopLevelValues(t *testing.T) {
	_, _, err := parseJSONC(`{"sound":{"loop":true}}{"sound":{"loop":false}}`, Default())
	require.Error(t, err)
	require.True(
		t,
		strings.Contains(err.Error(), "multiple JSON values") || strings.Contains(err.Error(), "unknown field"),
		"unexpected error: %v",
		err,
	)
}

func TestParseJSONCTypeErrorIncludesLocation(t *testing.T) {
	_, _, err := parseJSONC(`{
  "vibration": {"on_ms": "long"}
}`, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "line")
	require.Contains(t, err.Error(), "column")
}

func TestParseEmptyContentReturnsBase(t *testing.T) {
	cfg, warnings, err := Parse("   \n", Default())
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, Default(), cfg)
}

func TestParseRejectsNonObjectContent(t *testing.T) {
	_, _, err := Parse("\n\nsound.loop = true", Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 3")
	require.Contains(t, err.Error(), "JSONC object")
}
