// Package session owns the alarm playback lifecycle: which sound is audible,
// how it falls back, how it loops, and how it is torn down.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/snoozio/snoozio/internal/fsm"
	"github.com/snoozio/snoozio/internal/logging"
)

// Options tune controller policy.
type Options struct {
	// VibrateWithSound starts vibration on every start path.
	VibrateWithSound bool
	// Looping asks players to loop natively. Completion restarts cover
	// resources that ignore it.
	Looping bool
}

// playbackSession is the single live alarm. It is replaced wholesale on every
// start and only mutated under Controller.mu.
type playbackSession struct {
	id      string
	request Request

	player     Player
	generation uint64
	fallback   bool
	playing    bool
	cancel     context.CancelFunc
}

// Controller orchestrates alarm playback state and its side effects.
type Controller struct {
	logger    *slog.Logger
	backend   Backend
	vibrator  Vibrator
	indicator Indicator
	resolver  Resolver
	opts      Options

	mu        sync.Mutex
	state     fsm.State
	current   *playbackSession
	vibrating bool
}

// NewController constructs a playback controller with safe default fallbacks.
func NewController(
	logger *slog.Logger,
	backend Backend,
	vibrator Vibrator,
	indicator Indicator,
	resolver Resolver,
	opts Options,
) *Controller {
	if logger == nil {
		logger = logging.Discard()
	}
	if vibrator == nil {
		vibrator = noopVibrator{}
	}
	if indicator == nil {
		indicator = noopIndicator{}
	}
	if resolver == nil {
		resolver = emptyResolver{}
	}

	return &Controller{
		logger:    logger,
		backend:   backend,
		vibrator:  vibrator,
		indicator: indicator,
		resolver:  resolver,
		opts:      opts,
		state:     fsm.StateIdle,
	}
}

// State returns the current FSM state snapshot.
func (c *Controller) State() fsm.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsPlaying reports whether an alarm sound is currently audible.
func (c *Controller) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil && c.current.playing
}

// Start tears down any active alarm and begins playing req. Preparation is
// asynchronous; Start returns before the sound is audible. Failures degrade
// to the bundled sound, so Start always reports success.
func (c *Controller) Start(req Request) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.teardownLocked()

	sess := &playbackSession{id: uuid.NewString(), request: req}
	c.current = sess
	c.transitionLocked(fsm.EventStart)

	c.logger.Info("alarm start",
		"session", sess.id,
		"sound_path", req.SoundPath,
		"sound_kind", req.kind(),
	)

	if c.opts.VibrateWithSound {
		c.startVibrationLocked()
	}

	path, custom := req.customPath()
	if !custom {
		c.playDefaultLocked(sess)
		return true
	}

	player, err := c.backend.Open(path, c.openOptions(sess, sess.generation+1))
	if err != nil {
		c.logger.Warn("open alarm sound failed; using default",
			"session", sess.id,
			"sound_path", path,
			"error", err.Error(),
		)
		c.playDefaultLocked(sess)
		return true
	}

	c.attachLocked(sess, player)
	return true
}

// StartForAlarm resolves alarmID against the alarm store and starts playback.
func (c *Controller) StartForAlarm(ctx context.Context, alarmID string) bool {
	req := c.resolver.Resolve(ctx, alarmID)
	c.logger.Info("alarm resolved", "alarm_id", alarmID, "sound_path", req.SoundPath, "sound_kind", req.kind())
	return c.Start(req)
}

// Stop silences the active alarm. It is safe to call when nothing plays.
func (c *Controller) Stop() bool {
	c.mu.Lock()
	c.teardownLocked()
	c.mu.Unlock()

	c.indicator.Hide(context.Background())
	return true
}

// Close releases everything the controller holds.
func (c *Controller) Close() {
	c.Stop()
}

// teardownLocked releases the session's audio and vibration. Every step runs
// even if an earlier one fails.
func (c *Controller) teardownLocked() {
	if sess := c.current; sess != nil {
		if sess.cancel != nil {
			sess.cancel()
		}
		if err := c.releasePlayer(sess.player); err != nil {
			c.logger.Error("release alarm sound failed", "session", sess.id, "error", err.Error())
		}
		sess.player = nil
		sess.playing = false
		c.current = nil
		c.logger.Info("alarm stopped", "session", sess.id)
	}

	c.stopVibrationLocked()
	c.transitionLocked(fsm.EventStop)
}

// releasePlayer stops the transport when it is running, then frees the
// resource. Release runs even if Stop fails.
func (c *Controller) releasePlayer(p Player) error {
	if p == nil {
		return nil
	}

	var stopErr error
	if p.Playing() {
		if err := p.Stop(); err != nil {
			stopErr = fmt.Errorf("stop player: %w", err)
		}
	}

	var releaseErr error
	if err := p.Release(); err != nil {
		releaseErr = fmt.Errorf("release player: %w", err)
	}

	return errors.Join(stopErr, releaseErr)
}

// playDefaultLocked switches sess to the bundled sound.
func (c *Controller) playDefaultLocked(sess *playbackSession) {
	sess.fallback = true

	player, err := c.backend.OpenDefault(c.openOptions(sess, sess.generation+1))
	if err != nil {
		c.logger.Error("open default alarm sound failed", "session", sess.id, "error", err.Error())
		c.silenceLocked(sess)
		return
	}

	c.attachLocked(sess, player)
}

// attachLocked makes player the session's resource and prepares it in the background.
func (c *Controller) attachLocked(sess *playbackSession, player Player) {
	sess.generation++
	sess.player = player
	sess.playing = false

	ctx, cancel := context.WithCancel(context.Background())
	sess.cancel = cancel

	go c.prepare(ctx, sess, sess.generation, player)
}

// prepare runs player preparation and applies its outcome if the session is
// still current.
func (c *Controller) prepare(ctx context.Context, sess *playbackSession, generation uint64, player Player) {
	err := player.Prepare(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isCurrentLocked(sess, generation) {
		c.logger.Debug("discarding stale preparation", "session", sess.id, "generation", generation)
		return
	}

	if err == nil {
		err = player.Start()
	}
	if err != nil {
		c.failLocked(sess, fmt.Errorf("prepare alarm sound: %w", err))
		return
	}

	sess.playing = true
	c.transitionLocked(fsm.EventPrepared)
	c.logger.Info("alarm playing", "session", sess.id, "fallback", sess.fallback)
}

// onComplete restarts a resource that ended on its own while still wanted.
func (c *Controller) onComplete(sess *playbackSession, generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isCurrentLocked(sess, generation) || !sess.playing {
		return
	}

	c.logger.Debug("alarm sound completed; restarting", "session", sess.id)
	if err := sess.player.Start(); err != nil {
		c.failLocked(sess, fmt.Errorf("restart alarm sound: %w", err))
	}
}

// onError handles an asynchronous playback failure.
func (c *Controller) onError(sess *playbackSession, generation uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isCurrentLocked(sess, generation) {
		return
	}
	c.failLocked(sess, fmt.Errorf("alarm playback: %w", err))
}

// failLocked discards the failing resource and falls back to the bundled
// sound, unless the bundled sound is what failed.
func (c *Controller) failLocked(sess *playbackSession, err error) {
	c.logger.Warn("alarm sound failed", "session", sess.id, "fallback", sess.fallback, "error", err.Error())

	if sess.cancel != nil {
		sess.cancel()
	}
	if releaseErr := c.releasePlayer(sess.player); releaseErr != nil {
		c.logger.Error("release failed alarm sound", "session", sess.id, "error", releaseErr.Error())
	}
	sess.player = nil
	sess.playing = false

	if sess.fallback {
		c.silenceLocked(sess)
		return
	}

	c.transitionLocked(fsm.EventFallback)
	c.playDefaultLocked(sess)
}

// silenceLocked leaves sess without sound. Vibration keeps running so the
// alarm is still noticeable.
func (c *Controller) silenceLocked(sess *playbackSession) {
	sess.player = nil
	sess.playing = false
	c.transitionLocked(fsm.EventFail)
	c.logger.Error("alarm has no playable sound", "session", sess.id)
}

func (c *Controller) isCurrentLocked(sess *playbackSession, generation uint64) bool {
	return c.current == sess && sess.generation == generation && sess.player != nil
}

// openOptions binds player events to one session generation.
func (c *Controller) openOptions(sess *playbackSession, generation uint64) OpenOptions {
	return OpenOptions{
		Looping: c.opts.Looping,
		Volume:  1.0,
		Events: PlayerEvents{
			OnComplete: func() { c.onComplete(sess, generation) },
			OnError:    func(err error) { c.onError(sess, generation, err) },
		},
	}
}

func (c *Controller) startVibrationLocked() {
	if err := c.vibrator.Start(); err != nil {
		c.logger.Error("start vibration failed", "error", err.Error())
		return
	}
	c.vibrating = true
}

func (c *Controller) stopVibrationLocked() {
	if !c.vibrating {
		return
	}
	c.vibrating = false
	if err := c.vibrator.Cancel(); err != nil {
		c.logger.Error("cancel vibration failed", "error", err.Error())
	}
}

// transitionLocked applies one FSM event; invalid transitions are logged and ignored.
func (c *Controller) transitionLocked(event fsm.Event) {
	next, err := fsm.Transition(c.state, event)
	if err != nil {
		c.logger.Debug("ignored playback transition", "state", c.state, "event", event, "error", err.Error())
		return
	}
	c.state = next
}
