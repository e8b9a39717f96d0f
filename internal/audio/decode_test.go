package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/require"
)

func TestResolveRef(t *testing.T) {
	t.Setenv("HOME", "/home/alarm")

	path, err := ResolveRef("/music/wake.mp3")
	require.NoError(t, err)
	require.Equal(t, "/music/wake.mp3", path)

	path, err = ResolveRef("  ~/Music/wake.ogg ")
	require.NoError(t, err)
	require.Equal(t, "/home/alarm/Music/wake.ogg", path)

	path, err = ResolveRef("file:///music/My%20Alarm.flac")
	require.NoError(t, err)
	require.Equal(t, "/music/My Alarm.flac", path)

	path, err = ResolveRef("file://localhost/music/a.wav")
	require.NoError(t, err)
	require.Equal(t, "/music/a.wav", path)

	_, err = ResolveRef("content://media/external/audio/42")
	require.ErrorIs(t, err, ErrUnsupportedScheme)

	_, err = ResolveRef("https://example.com/a.mp3")
	require.ErrorIs(t, err, ErrUnsupportedScheme)

	_, err = ResolveRef("file://nas/music/a.wav")
	require.ErrorIs(t, err, ErrUnsupportedScheme)

	_, err = ResolveRef("   ")
	require.Error(t, err)
}

func TestCheckFile(t *testing.T) {
	dir := t.TempDir()

	require.ErrorIs(t, checkFile(filepath.Join(dir, "ring.aiff")), ErrUnsupportedFormat)
	require.Error(t, checkFile(filepath.Join(dir, "missing.wav")))

	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.mp3"), 0o755))
	require.Error(t, checkFile(filepath.Join(dir, "folder.mp3")))

	path := writeToneWAV(t, dir)
	require.NoError(t, checkFile(path))
}

func TestDecodeWAVRoundTrip(t *testing.T) {
	path := writeToneWAV(t, t.TempDir())

	format, err := Probe(path)
	require.NoError(t, err)
	require.Equal(t, toneSampleRate, format.SampleRate)
	require.Equal(t, 2, format.NumChannels)

	stream, _, err := decodeFile(path)
	require.NoError(t, err)
	require.Equal(t, AlarmTone().Len(), stream.Len())
	require.NoError(t, stream.Close())
}

func TestDecodeCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.wav")
	require.NoError(t, os.WriteFile(path, []byte("not a wav file"), 0o644))

	_, err := Probe(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode sound")
}

func TestAlarmToneShape(t *testing.T) {
	tone := AlarmTone()
	require.Equal(t, toneSampleRate, tone.Format().SampleRate)

	want := 0
	for _, part := range alarmToneParts {
		want += toneSampleRate.N(part.duration)
	}
	want += toneSampleRate.N(toneGap) * (len(alarmToneParts) - 1)
	want += toneSampleRate.N(tonePause)
	require.Equal(t, want, tone.Len())

	samples := make([][2]float64, tone.Len())
	n, ok := tone.Streamer(0, tone.Len()).Stream(samples)
	require.True(t, ok)
	require.Equal(t, tone.Len(), n)

	peak := 0.0
	for _, s := range samples {
		require.Equal(t, s[0], s[1])
		if s[0] > peak {
			peak = s[0]
		}
	}
	require.InDelta(t, 0.8, peak, 0.01)
	require.Zero(t, samples[len(samples)-1][0])
}

func writeToneWAV(t *testing.T, dir string) string {
	t.Helper()

	tone := AlarmTone()
	path := filepath.Join(dir, "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, wav.Encode(f, tone.Streamer(0, tone.Len()), beep.Format{
		SampleRate:  tone.Format().SampleRate,
		NumChannels: 2,
		Precision:   2,
	}))
	require.NoError(t, f.Close())
	return path
}
