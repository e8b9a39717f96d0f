package app

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/snoozio/snoozio/internal/alarms"
	"github.com/snoozio/snoozio/internal/cli"
	"github.com/snoozio/snoozio/internal/config"
	"github.com/snoozio/snoozio/internal/kvstore"
)

func (r Runner) commandAlarms(ctx context.Context, cfg config.Config, parsed cli.Parsed, logger *slog.Logger) int {
	storePath, err := config.ResolveStorePath(cfg.Store)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	store := kvstore.New(storePath, time.Duration(cfg.Store.LockTimeoutMS)*time.Millisecond)

	if parsed.AlarmsAction == cli.AlarmsImport {
		return r.importAlarms(ctx, store, cfg.Store.Key, parsed.ImportFile, logger)
	}

	records, err := alarms.NewResolver(store, cfg.Store.Key, logger).Load(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(records) == 0 {
		fmt.Fprintln(r.Stdout, "no alarms stored")
		return 0
	}

	for _, record := range records {
		req := record.Request()
		soundPath := req.SoundPath
		if soundPath == "" {
			soundPath = "-"
		}
		fmt.Fprintf(r.Stdout, "id=%s | sound=%s | path=%s\n", record.ID, req.SoundKind, soundPath)
	}
	return 0
}

func (r Runner) importAlarms(ctx context.Context, store *kvstore.Store, key, file string, logger *slog.Logger) int {
	raw, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: read %q: %v\n", file, err)
		return 1
	}

	records, err := alarms.Parse(raw)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	if err := store.Put(ctx, key, string(bytes.TrimSpace(raw))); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("alarm import failed", "store", store.Path(), "error", err.Error())
		return 1
	}

	logger.Info("alarms imported", "count", len(records), "store", store.Path())
	fmt.Fprintf(r.Stdout, "imported %d alarms into %s\n", len(records), store.Path())
	return 0
}
