package session

import "context"

// Player is one opened audio resource.
//
// Implementations deliver PlayerEvents from their own goroutines, never
// synchronously from Start, Stop or Release.
type Player interface {
	// Prepare readies the resource for playback. It blocks; the controller
	// calls it off the caller's goroutine and cancels ctx on teardown.
	Prepare(ctx context.Context) error
	// Start begins playback from the beginning of the resource.
	Start() error
	Playing() bool
	Stop() error
	Release() error
}

// PlayerEvents are the asynchronous notifications a Player emits after Start.
type PlayerEvents struct {
	// OnComplete fires when the resource ran out without an explicit Stop.
	OnComplete func()
	// OnError fires when playback fails after Start.
	OnError func(error)
}

// OpenOptions configure a resource at open time.
type OpenOptions struct {
	Looping bool
	Volume  float64
	Events  PlayerEvents
}

// Backend opens playable audio resources.
type Backend interface {
	// Open opens the resource at ref. Errors are resource-open failures.
	Open(ref string, opts OpenOptions) (Player, error)
	// OpenDefault opens the bundled fallback sound.
	OpenDefault(opts OpenOptions) (Player, error)
}

// Vibrator drives the repeating alarm vibration.
type Vibrator interface {
	Start() error
	Cancel() error
}

// Indicator surfaces a ringing alarm to the user.
type Indicator interface {
	ShowAlarm(ctx context.Context, alarmID string)
	Hide(ctx context.Context)
}

// Resolver turns an alarm identifier into a playback request. It never fails;
// unknown alarms resolve to an empty request.
type Resolver interface {
	Resolve(ctx context.Context, alarmID string) Request
}

type noopVibrator struct{}

func (noopVibrator) Start() error  { return nil }
func (noopVibrator) Cancel() error { return nil }

type noopIndicator struct{}

func (noopIndicator) ShowAlarm(context.Context, string) {}
func (noopIndicator) Hide(context.Context)              {}

type emptyResolver struct{}

func (emptyResolver) Resolve(context.Context, string) Request { return Request{} }
