package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	ref    string
	events PlayerEvents

	gate       chan struct{}
	prepareErr error
	startErr   error

	prepared atomic.Int32
	starts   atomic.Int32
	stops    atomic.Int32
	releases atomic.Int32

	mu      sync.Mutex
	playing bool
}

func (p *fakePlayer) Prepare(ctx context.Context) error {
	defer p.prepared.Add(1)
	if p.gate != nil {
		<-p.gate
	}
	return p.prepareErr
}

func (p *fakePlayer) Start() error {
	p.starts.Add(1)
	if p.startErr != nil {
		return p.startErr
	}
	p.mu.Lock()
	p.playing = true
	p.mu.Unlock()
	return nil
}

func (p *fakePlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *fakePlayer) Stop() error {
	p.stops.Add(1)
	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
	return nil
}

func (p *fakePlayer) Release() error {
	p.releases.Add(1)
	return nil
}

// complete simulates the resource running dry, from a player goroutine.
func (p *fakePlayer) complete() {
	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
	go p.events.OnComplete()
}

func (p *fakePlayer) fail(err error) {
	go p.events.OnError(err)
}

type fakeBackend struct {
	openErr    error
	defaultErr error
	// configure adjusts each player before it is returned.
	configure func(p *fakePlayer, isDefault bool)

	mu       sync.Mutex
	players  []*fakePlayer
	defaults []*fakePlayer
}

func (b *fakeBackend) Open(ref string, opts OpenOptions) (Player, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	p := &fakePlayer{ref: ref, events: opts.Events}
	if b.configure != nil {
		b.configure(p, false)
	}
	b.mu.Lock()
	b.players = append(b.players, p)
	b.mu.Unlock()
	return p, nil
}

func (b *fakeBackend) OpenDefault(opts OpenOptions) (Player, error) {
	if b.defaultErr != nil {
		return nil, b.defaultErr
	}
	p := &fakePlayer{ref: "builtin:alarm", events: opts.Events}
	if b.configure != nil {
		b.configure(p, true)
	}
	b.mu.Lock()
	b.players = append(b.players, p)
	b.defaults = append(b.defaults, p)
	b.mu.Unlock()
	return p, nil
}

func (b *fakeBackend) all() []*fakePlayer {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*fakePlayer(nil), b.players...)
}

func (b *fakeBackend) defaultCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.defaults)
}

func (b *fakeBackend) last() *fakePlayer {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.players) == 0 {
		return nil
	}
	return b.players[len(b.players)-1]
}

type fakeVibrator struct {
	startErr  error
	cancelErr error
	starts    atomic.Int32
	cancels   atomic.Int32
}

func (v *fakeVibrator) Start() error {
	v.starts.Add(1)
	return v.startErr
}

func (v *fakeVibrator) Cancel() error {
	v.cancels.Add(1)
	return v.cancelErr
}

type fakeIndicator struct {
	mu     sync.Mutex
	shown  []string
	hides  atomic.Int32
	onShow func()
}

func (i *fakeIndicator) ShowAlarm(_ context.Context, alarmID string) {
	if i.onShow != nil {
		i.onShow()
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.shown = append(i.shown, alarmID)
}

func (i *fakeIndicator) Hide(context.Context) {
	i.hides.Add(1)
}

type resolverFunc func(context.Context, string) Request

func (f resolverFunc) Resolve(ctx context.Context, alarmID string) Request {
	return f(ctx, alarmID)
}

var errBoom = errors.New("boom")

func strPtr(s string) *string {
	return &s
}

func waitForPlaying(t *testing.T, ctrl *Controller) {
	t.Helper()
	require.Eventually(t, ctrl.IsPlaying, time.Second, 5*time.Millisecond)
}
