package audio

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
	"github.com/snoozio/snoozio/internal/config"
	"github.com/snoozio/snoozio/internal/logging"
	"github.com/snoozio/snoozio/internal/session"
)

// Backend opens alarm sounds as Pulse playback tracks.
type Backend struct {
	cfg     config.SoundConfig
	appName string
	logger  *slog.Logger
	tone    *beep.Buffer
	connect connectFunc
}

// NewBackend returns a Pulse-backed sound backend.
func NewBackend(cfg config.SoundConfig, appName string, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = logging.Discard()
	}
	b := &Backend{
		cfg:     cfg,
		appName: appName,
		logger:  logger,
		tone:    AlarmTone(),
	}
	b.connect = b.pulseConnect
	return b
}

// Open validates ref and returns an unprepared track for it.
func (b *Backend) Open(ref string, opts session.OpenOptions) (session.Player, error) {
	path, err := ResolveRef(ref)
	if err != nil {
		return nil, fmt.Errorf("open alarm sound: %w", err)
	}
	if err := checkFile(path); err != nil {
		return nil, fmt.Errorf("open alarm sound: %w", err)
	}
	return newTrack(path, func() (beep.StreamSeekCloser, beep.Format, error) {
		return decodeFile(path)
	}, b.connect, opts, b.logger), nil
}

// OpenDefault returns the configured default file when it decodes, otherwise
// the bundled tone.
func (b *Backend) OpenDefault(opts session.OpenOptions) (session.Player, error) {
	if file := strings.TrimSpace(b.cfg.DefaultFile); file != "" {
		_, err := Probe(file)
		if err == nil {
			return b.Open(file, opts)
		}
		b.logger.Warn("default sound unusable; using bundled tone", "file", file, "error", err.Error())
	}
	return newTrack(BuiltinToneID, b.openTone, b.connect, opts, b.logger), nil
}

func (b *Backend) openTone() (beep.StreamSeekCloser, beep.Format, error) {
	return nopCloser{b.tone.Streamer(0, b.tone.Len())}, b.tone.Format(), nil
}

type nopCloser struct {
	beep.StreamSeeker
}

func (nopCloser) Close() error { return nil }

func (b *Backend) pulseConnect(format beep.Format, read func([]float32) (int, error)) (playbackStream, func(), error) {
	client, err := newClient(b.appName)
	if err != nil {
		return nil, nil, err
	}

	role := strings.TrimSpace(b.cfg.MediaRole)
	if role == "" {
		role = "alarm"
	}

	opts := []pulse.PlaybackOption{
		pulse.PlaybackStereo,
		pulse.PlaybackSampleRate(int(format.SampleRate)),
		pulse.PlaybackLatency(0.1),
		pulse.PlaybackMediaName("snoozio alarm"),
		pulse.PlaybackRawOption(func(p *pulseproto.CreatePlaybackStream) {
			p.ChannelVolumes = pulseproto.ChannelVolumes{uint32(pulseproto.VolumeNorm), uint32(pulseproto.VolumeNorm)}
			if p.Properties == nil {
				p.Properties = pulseproto.PropList{}
			}
			p.Properties["media.role"] = pulseproto.PropListString(role)
		}),
	}
	if sink := b.resolveSink(client); sink != nil {
		opts = append(opts, pulse.PlaybackSink(sink))
	}

	stream, err := client.NewPlayback(pulse.Float32Reader(read), opts...)
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("create pulse playback stream: %w", err)
	}
	return stream, client.Close, nil
}

// resolveSink returns the configured sink, or nil for the server default.
func (b *Backend) resolveSink(client *pulse.Client) *pulse.Sink {
	preferred := strings.TrimSpace(b.cfg.Sink)
	if preferred == "" || strings.EqualFold(preferred, "default") {
		return nil
	}

	sinks, err := listSinks(client)
	if err != nil {
		b.logger.Warn("list sinks failed; using default sink", "error", err.Error())
		return nil
	}
	selection, err := selectSinkFromList(sinks, preferred)
	if err != nil {
		b.logger.Warn("sink selection failed; using default sink", "error", err.Error())
		return nil
	}
	if selection.Warning != "" {
		b.logger.Warn(selection.Warning)
	}

	sink, err := client.SinkByID(selection.Sink.ID)
	if err != nil {
		b.logger.Warn("resolve sink failed; using default sink", "sink", selection.Sink.ID, "error", err.Error())
		return nil
	}
	return sink
}
