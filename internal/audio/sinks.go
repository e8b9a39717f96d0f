// Package audio decodes alarm sounds and plays them on PulseAudio sinks.
package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// Sink describes one Pulse output sink surfaced to snoozio.
type Sink struct {
	ID          string
	Description string
	State       string
	Available   bool
	Muted       bool
	Default     bool
}

// Selection is the resolved output sink plus optional fallback warning context.
type Selection struct {
	Sink     Sink
	Warning  string
	Fallback bool
}

func newClient(appName string) (*pulse.Client, error) {
	if strings.TrimSpace(appName) == "" {
		appName = "snoozio"
	}
	client, err := pulse.NewClient(
		pulse.ClientApplicationName(appName),
		pulse.ClientApplicationIconName("alarm-clock"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}
	return client, nil
}

// ListSinks returns Pulse output sinks with default/availability metadata.
func ListSinks(_ context.Context) ([]Sink, error) {
	client, err := newClient("")
	if err != nil {
		return nil, err
	}
	defer client.Close()

	return listSinks(client)
}

func listSinks(client *pulse.Client) ([]Sink, error) {
	defaultSink, err := client.DefaultSink()
	if err != nil {
		return nil, fmt.Errorf("read default sink: %w", err)
	}
	defaultID := defaultSink.ID()

	var sinkInfos pulseproto.GetSinkInfoListReply
	if err := client.RawRequest(&pulseproto.GetSinkInfoList{}, &sinkInfos); err != nil {
		return nil, fmt.Errorf("list sinks: %w", err)
	}

	sinks := make([]Sink, 0, len(sinkInfos))
	for _, info := range sinkInfos {
		if info == nil {
			continue
		}
		sinks = append(sinks, Sink{
			ID:          info.SinkName,
			Description: info.Device,
			State:       sinkStateString(info.State),
			Available:   sinkAvailable(info),
			Muted:       info.Mute,
			Default:     info.SinkName == defaultID,
		})
	}
	return sinks, nil
}

// SelectSink resolves the sound.sink preference against live sinks.
func SelectSink(ctx context.Context, preferred string) (Selection, error) {
	sinks, err := ListSinks(ctx)
	if err != nil {
		return Selection{}, err
	}
	return selectSinkFromList(sinks, preferred)
}

// selectSinkFromList applies selection policy to a pre-fetched sink list. An
// alarm must stay audible, so a muted or unavailable preferred sink falls back
// to the default sink instead of failing.
func selectSinkFromList(sinks []Sink, preferred string) (Selection, error) {
	if len(sinks) == 0 {
		return Selection{}, errors.New("no audio output sinks found")
	}

	var (
		defaultSink *Sink
		byName      *Sink
	)

	preferred = strings.TrimSpace(strings.ToLower(preferred))
	for i := range sinks {
		sink := &sinks[i]
		if sink.Default {
			defaultSink = sink
		}
		if byName == nil && preferred != "" && preferred != "default" && sinkMatches(*sink, preferred) {
			byName = sink
		}
	}

	if preferred == "" || preferred == "default" {
		if defaultSink == nil {
			return Selection{}, errors.New("default audio sink is unavailable")
		}
		return Selection{Sink: *defaultSink}, nil
	}

	if byName != nil && byName.Available && !byName.Muted {
		return Selection{Sink: *byName}, nil
	}

	reason := "not found"
	if byName != nil {
		reason = "unavailable"
		if byName.Muted {
			reason = "muted"
		}
	}

	if defaultSink == nil {
		return Selection{}, fmt.Errorf("sound.sink %q is %s and no default sink exists", preferred, reason)
	}

	return Selection{
		Sink:     *defaultSink,
		Warning:  fmt.Sprintf("sound.sink %q is %s; falling back to %q", preferred, reason, defaultSink.ID),
		Fallback: byName == nil || byName.ID != defaultSink.ID,
	}, nil
}

// sinkMatches reports whether a search term matches a sink id or description.
func sinkMatches(sink Sink, term string) bool {
	if term == "" {
		return false
	}
	id := strings.ToLower(sink.ID)
	desc := strings.ToLower(sink.Description)
	return strings.Contains(id, term) || strings.Contains(desc, term)
}

// sinkStateString maps Pulse sink state constants to human-readable values.
func sinkStateString(state uint32) string {
	switch state {
	case 0:
		return "running"
	case 1:
		return "idle"
	case 2:
		return "suspended"
	default:
		return fmt.Sprintf("unknown(%d)", state)
	}
}

// sinkAvailable maps Pulse sink port availability to a simple boolean.
func sinkAvailable(sink *pulseproto.GetSinkInfoReply) bool {
	if sink == nil {
		return false
	}
	if len(sink.Ports) == 0 {
		return true
	}
	for _, port := range sink.Ports {
		if port.Name != sink.ActivePortName {
			continue
		}
		// PulseAudio values: unknown=0, no=1, yes=2.
		return port.Available == 0 || port.Available == 2
	}
	return true
}
