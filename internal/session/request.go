package session

import "strings"

// nullSoundPath is the literal some callers send for an unset path.
const nullSoundPath = "null"

// DefaultSoundKind labels requests that did not name a sound.
const DefaultSoundKind = "default"

// Request describes the alarm sound a caller wants to hear.
type Request struct {
	SoundPath string
	SoundKind string
}

// customPath returns the caller-supplied sound locator, if it names one.
func (r Request) customPath() (string, bool) {
	path := strings.TrimSpace(r.SoundPath)
	if path == "" || path == nullSoundPath {
		return "", false
	}
	return path, true
}

func (r Request) kind() string {
	if kind := strings.TrimSpace(r.SoundKind); kind != "" && kind != nullSoundPath {
		return kind
	}
	return DefaultSoundKind
}
