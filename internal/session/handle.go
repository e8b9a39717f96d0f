package session

import (
	"context"
	"strings"

	"github.com/snoozio/snoozio/internal/ipc"
)

// alarmPayloadPrefix marks system-event payloads that carry an alarm id.
const alarmPayloadPrefix = "alarm:"

// Handle serves IPC method calls from the application layer.
func (c *Controller) Handle(ctx context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case ipc.MethodPlay:
		ok := c.Start(Request{SoundPath: deref(req.SoundPath), SoundKind: deref(req.SoundType)})
		return ipc.Response{OK: true, Result: ok, State: string(c.State()), Message: "alarm started"}
	case ipc.MethodStop:
		ok := c.Stop()
		return ipc.Response{OK: true, Result: ok, State: string(c.State()), Message: "alarm stopped"}
	case ipc.MethodIsPlaying:
		return ipc.Response{OK: true, Result: c.IsPlaying(), State: string(c.State())}
	case ipc.MethodStatus:
		return ipc.Response{OK: true, Result: c.IsPlaying(), State: string(c.State()), Message: "status"}
	case ipc.MethodNotify:
		handled := c.HandleEvent(ctx, req.Payload)
		return ipc.Response{OK: true, Result: handled, State: string(c.State())}
	default:
		c.logger.Debug("unknown method", "command", req.Command)
		resp := ipc.NotImplemented(req.Command)
		resp.State = string(c.State())
		return resp
	}
}

// HandleEvent reacts to a system-event payload of the form "alarm:<id>". It
// reports whether the payload named an alarm.
func (c *Controller) HandleEvent(ctx context.Context, payload string) bool {
	alarmID, ok := ParseAlarmPayload(payload)
	if !ok {
		c.logger.Debug("ignoring event payload", "payload", payload)
		return false
	}

	c.logger.Info("alarm event received", "alarm_id", alarmID)
	c.StartForAlarm(ctx, alarmID)
	c.indicator.ShowAlarm(ctx, alarmID)
	return true
}

// ParseAlarmPayload extracts the alarm id from an "alarm:<id>" payload.
func ParseAlarmPayload(payload string) (string, bool) {
	payload = strings.TrimSpace(payload)
	if !strings.HasPrefix(payload, alarmPayloadPrefix) {
		return "", false
	}
	return strings.TrimPrefix(payload, alarmPayloadPrefix), true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
