package ipc

// Method names accepted by the daemon socket.
const (
	MethodPlay      = "playAlarmSound"
	MethodStop      = "stopAlarmSound"
	MethodIsPlaying = "isAlarmPlaying"
	MethodNotify    = "notify"
	MethodStatus    = "status"
)

// Request is one method call. Optional string arguments are pointers so an
// absent argument stays distinguishable from an empty one.
type Request struct {
	Command   string  `json:"command"`
	SoundPath *string `json:"soundPath,omitempty"`
	SoundType *string `json:"soundType,omitempty"`
	Payload   string  `json:"payload,omitempty"`
}

type Response struct {
	OK             bool   `json:"ok"`
	Result         bool   `json:"result"`
	NotImplemented bool   `json:"not_implemented,omitempty"`
	State          string `json:"state,omitempty"`
	Message        string `json:"message,omitempty"`
	Error          string `json:"error,omitempty"`
}

// NotImplemented is the response for a method the daemon does not know.
func NotImplemented(command string) Response {
	return Response{OK: false, NotImplemented: true, Error: "not implemented: " + command}
}
