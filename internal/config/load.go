package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Loaded captures resolved config path, parsed values, and non-fatal warnings.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load resolves, reads, parses, and validates the runtime configuration. A
// missing file yields the built-in alarm defaults.
func Load(explicitPath string) (Loaded, error) {
	resolvedPath, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	loaded := Loaded{Path: resolvedPath, Config: Default()}

	content, err := os.ReadFile(resolvedPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		loaded.Warnings = append(loaded.Warnings, Warning{
			Message: fmt.Sprintf("config file %q not found; using built-in alarm defaults", resolvedPath),
		})
	case err != nil:
		return Loaded{}, fmt.Errorf("read snoozio config %q: %w", resolvedPath, err)
	default:
		cfg, warnings, err := Parse(string(content), loaded.Config)
		if err != nil {
			return Loaded{}, fmt.Errorf("parse config %q: %w", resolvedPath, err)
		}
		loaded.Config = cfg
		loaded.Warnings = warnings
		loaded.Exists = true
	}

	if w, ok := defaultSoundWarning(loaded.Config.Sound); ok {
		loaded.Warnings = append(loaded.Warnings, w)
	}
	return loaded, nil
}

// defaultSoundWarning flags a local default_file that does not exist. URIs
// are left to the audio backend.
func defaultSoundWarning(sound SoundConfig) (Warning, bool) {
	ref := strings.TrimSpace(sound.DefaultFile)
	if ref == "" || strings.Contains(ref, "://") {
		return Warning{}, false
	}
	if _, err := os.Stat(expandUserPath(ref)); err == nil {
		return Warning{}, false
	}
	return Warning{
		Message: fmt.Sprintf("sound.default_file %q not found; alarms fall back to the bundled tone", ref),
	}, true
}
