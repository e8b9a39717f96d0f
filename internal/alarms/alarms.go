// Package alarms reads alarm definitions persisted by the application layer
// and turns them into playback requests.
package alarms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/snoozio/snoozio/internal/logging"
	"github.com/snoozio/snoozio/internal/session"
)

// Record is one persisted alarm. Only the fields playback needs are decoded.
type Record struct {
	ID        string  `json:"id"`
	SoundID   string  `json:"soundId,omitempty"`
	SoundPath *string `json:"soundPath,omitempty"`
}

// Source reads a raw preference value.
type Source interface {
	Get(ctx context.Context, key string) (string, bool, error)
}

// Parse decodes the JSON array of alarm records.
func Parse(raw []byte) ([]Record, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("alarm list is empty")
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode alarm list: %w", err)
	}
	return records, nil
}

// Find returns the first record whose id matches.
func Find(records []Record, id string) (Record, bool) {
	for _, record := range records {
		if record.ID == id {
			return record, true
		}
	}
	return Record{}, false
}

// Request converts the record to a playback request. A missing sound id
// becomes the default kind.
func (r Record) Request() session.Request {
	req := session.Request{SoundKind: r.SoundID}
	if strings.TrimSpace(req.SoundKind) == "" {
		req.SoundKind = session.DefaultSoundKind
	}
	if r.SoundPath != nil {
		req.SoundPath = *r.SoundPath
	}
	return req
}

// Resolver looks alarms up in the preferences store.
type Resolver struct {
	source Source
	key    string
	logger *slog.Logger
}

// NewResolver reads alarm lists from key in source.
func NewResolver(source Source, key string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Resolver{source: source, key: key, logger: logger}
}

// Load returns every stored alarm. A missing key is an empty list.
func (r *Resolver) Load(ctx context.Context) ([]Record, error) {
	raw, found, err := r.source.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("read alarm store: %w", err)
	}
	if !found {
		return nil, nil
	}
	return Parse([]byte(raw))
}

// Resolve returns the playback request for alarmID. Every failure resolves to
// an empty request so the default sound plays.
func (r *Resolver) Resolve(ctx context.Context, alarmID string) session.Request {
	records, err := r.Load(ctx)
	if err != nil {
		r.logger.Error("alarm lookup failed", "alarm_id", alarmID, "error", err.Error())
		return session.Request{}
	}

	record, ok := Find(records, alarmID)
	if !ok {
		r.logger.Warn("alarm not found", "alarm_id", alarmID, "known", len(records))
		return session.Request{}
	}
	return record.Request()
}
