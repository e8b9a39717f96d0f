// Package indicator registers the alarm notification channel and surfaces
// ringing alarms as desktop notifications.
package indicator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/snoozio/snoozio/internal/config"
	"github.com/snoozio/snoozio/internal/logging"
)

// alarmCategory tags alarm notifications for notification servers.
const alarmCategory = "x-snoozio.alarm"

// ErrChannelConflict is returned when a channel id is re-registered with a
// different definition.
var ErrChannelConflict = errors.New("notification channel already registered with a different definition")

// Importance ranks how intrusive a channel's notifications are.
type Importance int

const (
	ImportanceDefault Importance = iota
	ImportanceHigh
)

// Channel describes how alarm notifications are presented. Desktop
// notifications have no vibration or LED controls; vibration is driven by the
// playback controller instead.
type Channel struct {
	ID          string
	Name        string
	Description string
	Importance  Importance
	BypassDND   bool
}

// ChannelFromConfig builds the alarm channel definition.
func ChannelFromConfig(cfg config.IndicatorConfig) Channel {
	return Channel{
		ID:          cfg.ChannelID,
		Name:        cfg.ChannelName,
		Description: cfg.ChannelDescription,
		Importance:  ImportanceHigh,
		BypassDND:   cfg.BypassDND,
	}
}

func (c Channel) urgency() urgency {
	if c.Importance >= ImportanceHigh || c.BypassDND {
		return urgencyCritical
	}
	return urgencyNormal
}

// sender delivers notifications to one backend.
type sender interface {
	notify(ctx context.Context, n notification) (uint32, error)
	dismiss(ctx context.Context, id uint32) error
}

type desktopSender struct{}

func (desktopSender) notify(ctx context.Context, n notification) (uint32, error) {
	return desktopNotify(ctx, n)
}

func (desktopSender) dismiss(ctx context.Context, id uint32) error {
	return desktopDismiss(ctx, id)
}

// beeepSender posts through gen2brain/beeep. It cannot close notifications.
type beeepSender struct{}

func (beeepSender) notify(_ context.Context, n notification) (uint32, error) {
	if err := beeep.Notify(n.summary, n.body, ""); err != nil {
		return 0, fmt.Errorf("beeep notify: %w", err)
	}
	return 0, nil
}

func (beeepSender) dismiss(context.Context, uint32) error { return nil }

// Notifier is the concrete alarm indicator used by the daemon.
type Notifier struct {
	cfg      config.IndicatorConfig
	logger   *slog.Logger
	messages messages
	sender   sender

	mu             sync.Mutex
	channels       map[string]Channel
	notificationID uint32
}

// NewNotifier creates an indicator from config.
func NewNotifier(cfg config.IndicatorConfig, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = logging.Discard()
	}
	var s sender = desktopSender{}
	if strings.EqualFold(strings.TrimSpace(cfg.Backend), config.IndicatorBackendBeeep) {
		s = beeepSender{}
	}
	return &Notifier{
		cfg:      cfg,
		logger:   logger,
		messages: indicatorMessagesFromEnv(),
		sender:   s,
		channels: make(map[string]Channel),
	}
}

// RegisterChannel records ch. Registering an identical definition again is a
// no-op.
func (n *Notifier) RegisterChannel(ch Channel) error {
	if strings.TrimSpace(ch.ID) == "" {
		return errors.New("notification channel id must not be empty")
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if existing, ok := n.channels[ch.ID]; ok {
		if existing != ch {
			return fmt.Errorf("%w: %q", ErrChannelConflict, ch.ID)
		}
		return nil
	}
	n.channels[ch.ID] = ch
	n.logger.Debug("notification channel registered", "channel", ch.ID, "importance", int(ch.Importance))
	return nil
}

// Channel returns the registered channel with id.
func (n *Notifier) Channel(id string) (Channel, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	ch, ok := n.channels[id]
	return ch, ok
}

// ShowAlarm posts, or replaces, the ringing-alarm notification.
func (n *Notifier) ShowAlarm(ctx context.Context, alarmID string) {
	if !n.cfg.Enable {
		return
	}

	ch := ChannelFromConfig(n.cfg)
	if err := n.RegisterChannel(ch); err != nil {
		n.log("alarm channel registration failed", err)
	}

	n.run(ctx, func(ctx context.Context) error {
		n.mu.Lock()
		replaceID := n.notificationID
		n.mu.Unlock()

		id, err := n.sender.notify(ctx, notification{
			appName:   n.appName(),
			replaceID: replaceID,
			summary:   n.messages.alarmTitle,
			body:      n.messages.body(alarmID),
			urgency:   ch.urgency(),
			category:  alarmCategory,
			timeoutMS: 0,
		})
		if err != nil {
			return err
		}

		n.mu.Lock()
		n.notificationID = id
		n.mu.Unlock()
		return nil
	})
}

// Hide closes the ringing-alarm notification when present.
func (n *Notifier) Hide(ctx context.Context) {
	if !n.cfg.Enable {
		return
	}

	n.mu.Lock()
	id := n.notificationID
	n.notificationID = 0
	n.mu.Unlock()

	if id == 0 {
		return
	}
	n.run(ctx, func(ctx context.Context) error {
		return n.sender.dismiss(ctx, id)
	})
}

func (n *Notifier) appName() string {
	if name := strings.TrimSpace(n.cfg.AppName); name != "" {
		return name
	}
	return "snoozio"
}

// run executes an indicator operation with a bounded timeout.
func (n *Notifier) run(ctx context.Context, fn func(context.Context) error) {
	runCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := fn(runCtx); err != nil {
		n.log("indicator dispatch failed", err)
	}
}

func (n *Notifier) log(message string, err error) {
	if err == nil {
		return
	}
	n.logger.Warn(message, "error", err.Error())
}
