package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/snoozio/snoozio/internal/alarms"
	"github.com/snoozio/snoozio/internal/audio"
	"github.com/snoozio/snoozio/internal/config"
	"github.com/snoozio/snoozio/internal/indicator"
	"github.com/snoozio/snoozio/internal/ipc"
	"github.com/snoozio/snoozio/internal/kvstore"
	"github.com/snoozio/snoozio/internal/session"
	"github.com/snoozio/snoozio/internal/vibration"
	"golang.org/x/sync/errgroup"
)

// commandServe owns the runtime socket and serves alarm commands until ctx
// is cancelled. A launch payload is handled once the socket is up.
func (r Runner) commandServe(ctx context.Context, cfg config.Config, payload string, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8, logger)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) && payload != "" {
			return r.forwardOrFail(ctx, ipc.Request{Command: ipc.MethodNotify, Payload: payload})
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	controller, err := buildController(cfg, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer controller.Close()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return ipc.Serve(groupCtx, listener, controller, logger)
	})
	if payload != "" {
		group.Go(func() error {
			if !controller.HandleEvent(groupCtx, payload) {
				logger.Warn("launch payload ignored", "payload", payload)
			}
			return nil
		})
	}

	logger.Info("daemon listening", "socket", socketPath)
	if err := group.Wait(); err != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", err)
		logger.Error("daemon failed", "error", err.Error())
		return 1
	}

	logger.Info("daemon stopped")
	return 0
}

// buildController wires the platform adapters behind the playback controller.
func buildController(cfg config.Config, logger *slog.Logger) (*session.Controller, error) {
	storePath, err := config.ResolveStorePath(cfg.Store)
	if err != nil {
		return nil, err
	}
	store := kvstore.New(storePath, time.Duration(cfg.Store.LockTimeoutMS)*time.Millisecond)
	resolver := alarms.NewResolver(store, cfg.Store.Key, logger)

	notifier := indicator.NewNotifier(cfg.Indicator, logger)
	if err := notifier.RegisterChannel(indicator.ChannelFromConfig(cfg.Indicator)); err != nil {
		return nil, fmt.Errorf("register alarm channel: %w", err)
	}

	driver := vibration.Detect(cfg.Vibration, logger)
	logger.Info("vibration driver selected", "driver", driver.Name())
	vibrator := vibration.NewAlarm(driver, vibration.PatternFromConfig(cfg.Vibration))

	backend := audio.NewBackend(cfg.Sound, cfg.Indicator.AppName, logger)

	return session.NewController(logger, backend, vibrator, notifier, resolver, session.Options{
		VibrateWithSound: cfg.Vibration.Enable,
		Looping:          cfg.Sound.Loop,
	}), nil
}
