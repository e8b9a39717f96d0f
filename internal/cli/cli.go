package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandServe   Command = "serve"
	CommandPlay    Command = "play"
	CommandStop    Command = "stop"
	CommandStatus  Command = "status"
	CommandFire    Command = "fire"
	CommandAlarms  Command = "alarms"
	CommandSinks   Command = "sinks"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandServe:   {},
	CommandPlay:    {},
	CommandStop:    {},
	CommandStatus:  {},
	CommandFire:    {},
	CommandAlarms:  {},
	CommandSinks:   {},
	CommandDoctor:  {},
	CommandVersion: {},
	CommandHelp:    {},
}

// AlarmsAction selects the alarms subcommand.
type AlarmsAction string

const (
	AlarmsList   AlarmsAction = "list"
	AlarmsImport AlarmsAction = "import"
)

type Parsed struct {
	Command    Command
	ConfigPath string
	ShowHelp   bool

	// Payload is the system-event payload for serve and fire.
	Payload string
	// SoundPath is nil when play was given no --sound flag.
	SoundPath *string
	SoundKind *string

	AlarmsAction AlarmsAction
	ImportFile   string
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp
			if err := parseCommandArgs(&parsed, args[i+1:]); err != nil {
				return Parsed{}, err
			}
			return parsed, nil
		}
	}

	return parsed, nil
}

// parseCommandArgs consumes everything after the command word.
func parseCommandArgs(parsed *Parsed, rest []string) error {
	switch parsed.Command {
	case CommandServe:
		for i := 0; i < len(rest); i++ {
			if rest[i] != "--payload" {
				return fmt.Errorf("unexpected argument for serve: %s", rest[i])
			}
			i++
			if i >= len(rest) {
				return errors.New("--payload requires a value")
			}
			parsed.Payload = rest[i]
		}
		return nil
	case CommandPlay:
		for i := 0; i < len(rest); i++ {
			flag := rest[i]
			if flag != "--sound" && flag != "--kind" {
				return fmt.Errorf("unexpected argument for play: %s", flag)
			}
			i++
			if i >= len(rest) {
				return fmt.Errorf("%s requires a value", flag)
			}
			value := rest[i]
			if flag == "--sound" {
				parsed.SoundPath = &value
			} else {
				parsed.SoundKind = &value
			}
		}
		return nil
	case CommandFire:
		if len(rest) != 1 {
			return errors.New("fire requires exactly one payload argument")
		}
		parsed.Payload = rest[0]
		return nil
	case CommandAlarms:
		parsed.AlarmsAction = AlarmsList
		if len(rest) == 0 {
			return nil
		}
		switch AlarmsAction(rest[0]) {
		case AlarmsList:
			if len(rest) != 1 {
				return errors.New("unexpected arguments after alarms list")
			}
		case AlarmsImport:
			if len(rest) != 2 {
				return errors.New("alarms import requires exactly one file")
			}
			parsed.AlarmsAction = AlarmsImport
			parsed.ImportFile = rest[1]
		default:
			return fmt.Errorf("unknown alarms action: %s", rest[0])
		}
		return nil
	default:
		if len(rest) > 0 {
			return fmt.Errorf("unexpected arguments after command %q", parsed.Command)
		}
		return nil
	}
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command>

Commands:
  serve [--payload P]             Run the alarm daemon; P is a launch payload like alarm:<id>
  play [--sound PATH] [--kind K]  Start alarm playback (default sound when PATH is omitted)
  stop                            Stop alarm playback and vibration
  status                          Print whether an alarm is playing
  fire PAYLOAD                    Deliver a system-event payload (alarm:<id>) to the daemon
  alarms [list|import FILE]       List stored alarms or import a JSON alarm list
  sinks                           List available audio output sinks
  doctor                          Run configuration and environment checks
  version                         Print version information
  help                            Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/snoozio/config.jsonc)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
