package indicator

import (
	"fmt"
	"os"
	"strings"
)

type locale string

const (
	localeEnglish locale = "en"
	localeGerman  locale = "de"
)

type messages struct {
	alarmTitle string
	alarmBody  string
	unknownID  string
}

func (m messages) body(alarmID string) string {
	if strings.TrimSpace(alarmID) == "" {
		return m.unknownID
	}
	return fmt.Sprintf(m.alarmBody, alarmID)
}

func indicatorMessagesFromEnv() messages {
	return indicatorMessages(resolveLocale(os.Getenv("LANG")))
}

func resolveLocale(raw string) locale {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(raw, "de") {
		return localeGerman
	}
	return localeEnglish
}

func indicatorMessages(tag locale) messages {
	switch tag {
	case localeGerman:
		return messages{
			alarmTitle: "Wecker",
			alarmBody:  "Wecker %s klingelt",
			unknownID:  "Wecker klingelt",
		}
	case localeEnglish:
		fallthrough
	default:
		return messages{
			alarmTitle: "Alarm",
			alarmBody:  "Alarm %s is ringing",
			unknownID:  "Alarm is ringing",
		}
	}
}
