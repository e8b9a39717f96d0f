package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep/v2"
)

// BuiltinToneID names the synthesized fallback alarm sound.
const BuiltinToneID = "builtin:alarm"

const toneSampleRate = beep.SampleRate(44100)

type toneSpec struct {
	frequencyHz float64
	duration    time.Duration
	volume      float64
}

// alarmToneParts is one cycle of the bundled alarm: two short high beeps, a
// lower beep, then a pause before the cycle repeats.
var alarmToneParts = []toneSpec{
	{frequencyHz: 988, duration: 160 * time.Millisecond, volume: 0.8},
	{frequencyHz: 988, duration: 160 * time.Millisecond, volume: 0.8},
	{frequencyHz: 784, duration: 240 * time.Millisecond, volume: 0.8},
}

const (
	toneGap   = 70 * time.Millisecond
	tonePause = 400 * time.Millisecond
)

// AlarmTone renders one cycle of the bundled alarm into a buffer.
func AlarmTone() *beep.Buffer {
	format := beep.Format{SampleRate: toneSampleRate, NumChannels: 2, Precision: 2}
	buffer := beep.NewBuffer(format)
	buffer.Append(samplesStreamer(synthesizeTone(alarmToneParts, toneSampleRate)))
	return buffer
}

// synthesizeTone renders parts separated by short gaps and followed by a pause.
func synthesizeTone(parts []toneSpec, rate beep.SampleRate) []float64 {
	if len(parts) == 0 {
		return nil
	}

	gap := rate.N(toneGap)
	pcm := make([]float64, 0)
	for i, part := range parts {
		pcm = append(pcm, synthesizePart(part, rate)...)
		if i < len(parts)-1 {
			pcm = append(pcm, make([]float64, gap)...)
		}
	}
	return append(pcm, make([]float64, rate.N(tonePause))...)
}

func synthesizePart(spec toneSpec, rate beep.SampleRate) []float64 {
	n := rate.N(spec.duration)
	if n <= 0 || spec.frequencyHz <= 0 || spec.volume <= 0 {
		return nil
	}

	attackRelease := n / 10
	maxRamp := int(rate) / 200 // 5ms
	if attackRelease > maxRamp {
		attackRelease = maxRamp
	}
	if attackRelease < 1 {
		attackRelease = 1
	}

	pcm := make([]float64, n)
	for i := 0; i < n; i++ {
		envelope := 1.0
		if i < attackRelease {
			envelope = float64(i) / float64(attackRelease)
		}
		releaseIndex := n - i - 1
		if releaseIndex < attackRelease {
			release := float64(releaseIndex) / float64(attackRelease)
			if release < envelope {
				envelope = release
			}
		}
		t := float64(i) / float64(rate)
		pcm[i] = math.Sin(2*math.Pi*spec.frequencyHz*t) * spec.volume * envelope
	}
	return pcm
}

// samplesStreamer streams mono samples to both channels.
func samplesStreamer(pcm []float64) beep.Streamer {
	cursor := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if cursor >= len(pcm) {
			return 0, false
		}
		n := 0
		for n < len(samples) && cursor < len(pcm) {
			samples[n][0] = pcm[cursor]
			samples[n][1] = pcm[cursor]
			n++
			cursor++
		}
		return n, true
	})
}
