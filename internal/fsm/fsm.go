package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle      State = "idle"
	StatePreparing State = "preparing"
	StatePlaying   State = "playing"
)

const (
	EventStart    Event = "start"
	EventPrepared Event = "prepared"
	EventFallback Event = "fallback"
	EventStop     Event = "stop"
	EventFail     Event = "fail"
)

// Transition returns the playback state reached by applying event to current.
//
// stop and fail are accepted from every state so teardown never gets stuck.
func Transition(current State, event Event) (State, error) {
	switch current {
	case StateIdle, StatePreparing, StatePlaying:
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}

	if event == EventStop || event == EventFail {
		return StateIdle, nil
	}

	switch current {
	case StateIdle:
		switch event {
		case EventStart:
			return StatePreparing, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StatePreparing:
		switch event {
		case EventPrepared:
			return StatePlaying, nil
		case EventFallback:
			return StatePreparing, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		switch event {
		case EventFallback:
			return StatePreparing, nil
		default:
			return current, invalidTransition(current, event)
		}
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
