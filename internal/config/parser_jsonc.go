package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

type jsoncConfig struct {
	Store     *jsoncStore     `json:"store"`
	Sound     *jsoncSound     `json:"sound"`
	Vibration *jsoncVibration `json:"vibration"`
	Indicator *jsoncIndicator `json:"indicator"`
}

type jsoncStore struct {
	Path          *string `json:"path"`
	Key           *string `json:"key"`
	LockTimeoutMS *int    `json:"lock_timeout_ms"`
}

type jsoncSound struct {
	DefaultFile *string `json:"default_file"`
	Sink        *string `json:"sink"`
	MediaRole   *string `json:"media_role"`
	Loop        *bool   `json:"loop"`
}

type jsoncVibration struct {
	Enable    *bool   `json:"enable"`
	Device    *string `json:"device"`
	SysfsRoot *string `json:"sysfs_root"`
	WaitMS    *int    `json:"wait_ms"`
	OnMS      *int    `json:"on_ms"`
	OffMS     *int    `json:"off_ms"`
}

type jsoncIndicator struct {
	Enable             *bool   `json:"enable"`
	Backend            *string `json:"backend"`
	AppName            *string `json:"app_name"`
	ChannelID          *string `json:"channel_id"`
	ChannelName        *string `json:"channel_name"`
	ChannelDescription *string `json:"channel_description"`
	BypassDND          *bool   `json:"bypass_dnd"`
}

func parseJSONC(content string, base Config) (Config, []Warning, error) {
	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}

	cfg := base
	warnings := payload.applyTo(&cfg)

	validatedWarnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	warnings = append(warnings, validatedWarnings...)
	return cfg, warnings, nil
}

func (payload jsoncConfig) applyTo(cfg *Config) []Warning {
	warnings := make([]Warning, 0)

	if payload.Store != nil {
		if payload.Store.Path != nil {
			cfg.Store.Path = strings.TrimSpace(*payload.Store.Path)
		}
		if payload.Store.Key != nil {
			cfg.Store.Key = strings.TrimSpace(*payload.Store.Key)
		}
		if payload.Store.LockTimeoutMS != nil {
			cfg.Store.LockTimeoutMS = *payload.Store.LockTimeoutMS
		}
	}

	if payload.Sound != nil {
		if payload.Sound.DefaultFile != nil {
			cfg.Sound.DefaultFile = strings.TrimSpace(*payload.Sound.DefaultFile)
		}
		if payload.Sound.Sink != nil {
			cfg.Sound.Sink = strings.TrimSpace(*payload.Sound.Sink)
		}
		if payload.Sound.MediaRole != nil {
			cfg.Sound.MediaRole = strings.TrimSpace(*payload.Sound.MediaRole)
		}
		if payload.Sound.Loop != nil {
			cfg.Sound.Loop = *payload.Sound.Loop
		}
	}

	if payload.Vibration != nil {
		if payload.Vibration.Enable != nil {
			cfg.Vibration.Enable = *payload.Vibration.Enable
		}
		if payload.Vibration.Device != nil {
			cfg.Vibration.Device = strings.ToLower(strings.TrimSpace(*payload.Vibration.Device))
		}
		if payload.Vibration.SysfsRoot != nil {
			cfg.Vibration.SysfsRoot = strings.TrimSpace(*payload.Vibration.SysfsRoot)
		}
		if payload.Vibration.WaitMS != nil {
			cfg.Vibration.WaitMS = *payload.Vibration.WaitMS
		}
		if payload.Vibration.OnMS != nil {
			cfg.Vibration.OnMS = *payload.Vibration.OnMS
		}
		if payload.Vibration.OffMS != nil {
			cfg.Vibration.OffMS = *payload.Vibration.OffMS
		}
		if payload.Vibration.Enable != nil && !*payload.Vibration.Enable && payload.Vibration.Device != nil {
			warnings = append(warnings, Warning{Message: "vibration.device is ignored while vibration.enable=false"})
		}
	}

	if payload.Indicator != nil {
		if payload.Indicator.Enable != nil {
			cfg.Indicator.Enable = *payload.Indicator.Enable
		}
		if payload.Indicator.Backend != nil {
			cfg.Indicator.Backend = strings.ToLower(strings.TrimSpace(*payload.Indicator.Backend))
		}
		if payload.Indicator.AppName != nil {
			cfg.Indicator.AppName = strings.TrimSpace(*payload.Indicator.AppName)
		}
		if payload.Indicator.ChannelID != nil {
			cfg.Indicator.ChannelID = strings.TrimSpace(*payload.Indicator.ChannelID)
		}
		if payload.Indicator.ChannelName != nil {
			cfg.Indicator.ChannelName = strings.TrimSpace(*payload.Indicator.ChannelName)
		}
		if payload.Indicator.ChannelDescription != nil {
			cfg.Indicator.ChannelDescription = strings.TrimSpace(*payload.Indicator.ChannelDescription)
		}
		if payload.Indicator.BypassDND != nil {
			cfg.Indicator.BypassDND = *payload.Indicator.BypassDND
		}
	}

	return warnings
}

func normalizeJSONC(content string) (string, error) {
	withoutComments, err := stripJSONCComments(content)
	if err != nil {
		return "", err
	}
	return stripJSONCTrailingCommas(withoutComments), nil
}

func stripJSONCComments(content string) (string, error) {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false
	lineComment := false
	blockComment := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if lineComment {
			if ch == '\n' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			if ch == '\r' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			out.WriteByte(' ')
			continue
		}

		if blockComment {
			if ch == '*' && i+1 < len(content) && content[i+1] == '/' {
				blockComment = false
				out.WriteString("  ")
				i++
				continue
			}
			if ch == '\n' || ch == '\r' || ch == '\t' {
				out.WriteByte(ch)
			} else {
				out.WriteByte(' ')
			}
			continue
		}

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == '/' && i+1 < len(content) {
			next := content[i+1]
			if next == '/' {
				lineComment = true
				out.WriteString("  ")
				i++
				continue
			}
			if next == '*' {
				blockComment = true
				out.WriteString("  ")
				i++
				continue
			}
		}

		out.WriteByte(ch)
	}

	if blockComment {
		return "", fmt.Errorf("unterminated block comment in JSONC")
	}

	return out.String(), nil
}

func stripJSONCTrailingCommas(content string) string {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == ',' {
			j := i + 1
			for j < len(content) && isJSONWhitespace(content[j]) {
				j++
			}
			if j < len(content) && (content[j] == '}' || content[j] == ']') {
				continue
			}
		}

		out.WriteByte(ch)
	}

	return out.String()
}

func isJSONWhitespace(ch byte) bool {
	switch ch {
	case ' ', '\n', '\r', '\t':
		return true
	default:
		return false
	}
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra struct{}
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return fmt.Errorf("multiple JSON values are not allowed")
	}
	return err
}

func wrapJSONDecodeError(content string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(content, syntaxErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(content, typeErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	return err
}

func offsetToLineCol(content string, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}

	limit := int(offset)
	if limit > len(content) {
		limit = len(content)
	}

	line := 1
	col := 1
	for i := 0; i < limit-1; i++ {
		if content[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
