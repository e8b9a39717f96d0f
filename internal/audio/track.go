package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/jfreymuth/pulse"
	"github.com/snoozio/snoozio/internal/logging"
	"github.com/snoozio/snoozio/internal/session"
)

var (
	// ErrNotPrepared is returned by Start before Prepare succeeded.
	ErrNotPrepared = errors.New("alarm sound not prepared")
	// ErrReleased is returned by any operation after Release.
	ErrReleased = errors.New("alarm sound released")
)

// watchInterval is how often a started track checks its stream for
// completion or failure.
const watchInterval = 50 * time.Millisecond

// playbackStream is the subset of *pulse.PlaybackStream a Track drives.
type playbackStream interface {
	Start()
	Stop()
	Close()
	Running() bool
	Error() error
}

type openFunc func() (beep.StreamSeekCloser, beep.Format, error)

type connectFunc func(format beep.Format, read func([]float32) (int, error)) (playbackStream, func(), error)

// Track is one alarm sound bound to one Pulse playback stream.
type Track struct {
	ref     string
	open    openFunc
	connect connectFunc
	looping bool
	volume  float64
	events  session.PlayerEvents
	logger  *slog.Logger

	mu        sync.Mutex
	source    beep.StreamSeekCloser
	pcm       *loopReader
	stream    playbackStream
	closeConn func()
	prepared  bool
	released  bool
	playing   bool
	run       uint64
}

func newTrack(ref string, open openFunc, connect connectFunc, opts session.OpenOptions, logger *slog.Logger) *Track {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Track{
		ref:     ref,
		open:    open,
		connect: connect,
		looping: opts.Looping,
		volume:  opts.Volume,
		events:  opts.Events,
		logger:  logger,
	}
}

// Ref returns the locator the track was opened from.
func (t *Track) Ref() string {
	return t.ref
}

// Prepare decodes the sound and connects its playback stream.
func (t *Track) Prepare(ctx context.Context) error {
	t.mu.Lock()
	switch {
	case t.released:
		t.mu.Unlock()
		return ErrReleased
	case t.prepared:
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	source, format, err := t.open()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		_ = source.Close()
		return err
	}

	pcm := newLoopReader(source, t.looping, t.volume)
	stream, closeConn, err := t.connect(format, pcm.Read)
	if err != nil {
		_ = source.Close()
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released || ctx.Err() != nil {
		stream.Close()
		closeConn()
		_ = source.Close()
		if t.released {
			return ErrReleased
		}
		return ctx.Err()
	}

	t.source = source
	t.pcm = pcm
	t.stream = stream
	t.closeConn = closeConn
	t.prepared = true
	t.logger.Debug("alarm sound prepared", "ref", t.ref, "sample_rate", int(format.SampleRate))
	return nil
}

// Start plays the sound from the beginning.
func (t *Track) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return ErrReleased
	}
	if !t.prepared {
		return ErrNotPrepared
	}
	if err := t.pcm.rewind(); err != nil {
		return fmt.Errorf("rewind %q: %w", t.ref, err)
	}

	t.run++
	t.playing = true
	t.stream.Start()
	go t.watch(t.run, t.stream, t.pcm)
	return nil
}

// Playing reports whether the stream is started and has not ended.
func (t *Track) Playing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playing
}

// Stop pauses output. Start plays from the beginning again.
func (t *Track) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return ErrReleased
	}
	if !t.prepared {
		return nil
	}
	t.run++
	t.playing = false
	t.stream.Stop()
	return nil
}

// Release closes the stream, the Pulse connection and the decoder. It is
// idempotent.
func (t *Track) Release() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return nil
	}
	t.released = true
	t.run++
	t.playing = false

	if t.stream != nil {
		t.stream.Close()
	}
	if t.closeConn != nil {
		t.closeConn()
	}
	if t.source != nil {
		if err := t.source.Close(); err != nil {
			return fmt.Errorf("close %q: %w", t.ref, err)
		}
	}
	return nil
}

// watch reports completion or failure of one started run. It exits silently
// once the run is superseded by Stop, Start or Release.
func (t *Track) watch(run uint64, stream playbackStream, pcm *loopReader) {
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for range ticker.C {
		t.mu.Lock()
		if t.run != run {
			t.mu.Unlock()
			return
		}
		err := stream.Error()
		if err == nil {
			err = pcm.Err()
		}
		done := pcm.Ended() && !stream.Running()
		if err != nil || done {
			t.playing = false
		}
		t.mu.Unlock()

		switch {
		case err != nil:
			t.logger.Warn("alarm stream failed", "ref", t.ref, "error", err.Error())
			if t.events.OnError != nil {
				t.events.OnError(err)
			}
			return
		case done:
			if t.events.OnComplete != nil {
				t.events.OnComplete()
			}
			return
		}
	}
}

// loopReader feeds interleaved stereo float32 frames to Pulse, rewinding the
// source when looping.
type loopReader struct {
	mu          sync.Mutex
	source      beep.StreamSeeker
	loop        bool
	volume      float64
	scratch     [][2]float64
	sinceRewind int
	ended       bool
	err         error
}

func newLoopReader(source beep.StreamSeeker, loop bool, volume float64) *loopReader {
	if volume <= 0 || volume > 1 {
		volume = 1
	}
	return &loopReader{source: source, loop: loop, volume: volume}
}

// Read implements pulse.Float32Reader.
func (r *loopReader) Read(buf []float32) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ended {
		return 0, pulse.EndOfData
	}

	frames := len(buf) / 2
	if cap(r.scratch) < frames {
		r.scratch = make([][2]float64, frames)
	}
	scratch := r.scratch[:frames]

	filled := 0
	for filled < frames {
		n, ok := r.source.Stream(scratch[filled:])
		filled += n
		r.sinceRewind += n
		if ok && n > 0 {
			continue
		}

		if err := r.source.Err(); err != nil {
			r.err = err
			r.ended = true
			break
		}
		if !r.loop || r.sinceRewind == 0 {
			r.ended = true
			break
		}
		if err := r.source.Seek(0); err != nil {
			r.err = fmt.Errorf("loop seek: %w", err)
			r.ended = true
			break
		}
		r.sinceRewind = 0
	}

	for i := 0; i < filled; i++ {
		buf[2*i] = float32(scratch[i][0] * r.volume)
		buf[2*i+1] = float32(scratch[i][1] * r.volume)
	}

	if r.ended {
		return filled * 2, pulse.EndOfData
	}
	return filled * 2, nil
}

func (r *loopReader) rewind() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.source.Seek(0); err != nil {
		return err
	}
	r.ended = false
	r.err = nil
	r.sinceRewind = 0
	return nil
}

func (r *loopReader) Ended() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ended
}

func (r *loopReader) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
