package core

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// CommandKind classifies an inbound chat line.
type CommandKind int

const (
	// CommandBroadcast is ordinary public text.
	CommandBroadcast CommandKind = iota
	// CommandWhisper addresses one named user.
	CommandWhisper
	// CommandReply addresses the last user who whispered the sender.
	CommandReply
	// CommandAdmin is a moderation command issued by an administrator.
	CommandAdmin
	// CommandIgnore is malformed input that produces no output.
	CommandIgnore
)

// AdminAction is the subcommand of an administrator command.
type AdminAction int

const (
	AdminUnknown AdminAction = iota
	AdminClose
	AdminMute
	AdminBan
)

const (
	whisperPrefix = "/whisper "
	replyPrefix   = "/reply "
)

// Command is the classified form of an inbound chat line.
type Command struct {
	Kind     CommandKind
	Action   AdminAction
	Target   string
	Body     string
	Duration time.Duration // mute duration, zero means default
	Invalid  string        // why an admin command was rejected
	Raw      string
}

// ParseCommand classifies text sent by a user. Precedence: admin command,
// whisper, reply, broadcast.
func ParseCommand(text string, admin bool) Command {
	cmd := Command{Raw: text}

	switch {
	case admin && strings.HasPrefix(text, "/"):
		return parseAdmin(cmd, text)
	case strings.HasPrefix(text, whisperPrefix):
		target, body := splitTarget(text[len(whisperPrefix):])
		if target == "" || strings.TrimSpace(body) == "" {
			cmd.Kind = CommandIgnore
			return cmd
		}
		cmd.Kind = CommandWhisper
		cmd.Target = target
		cmd.Body = body
		return cmd
	case strings.HasPrefix(text, replyPrefix):
		body := text[len(replyPrefix):]
		if strings.TrimSpace(body) == "" {
			cmd.Kind = CommandIgnore
			return cmd
		}
		cmd.Kind = CommandReply
		cmd.Body = body
		return cmd
	}

	if strings.TrimSpace(text) == "" {
		cmd.Kind = CommandIgnore
		return cmd
	}
	cmd.Kind = CommandBroadcast
	cmd.Body = text
	return cmd
}

func parseAdmin(cmd Command, text string) Command {
	cmd.Kind = CommandAdmin
	fields := strings.Fields(text)

	switch fields[0] {
	case "/close":
		cmd.Action = AdminClose
	case "/mute":
		cmd.Action = AdminMute
	case "/ban":
		cmd.Action = AdminBan
	default:
		cmd.Action = AdminUnknown
		return cmd
	}

	if len(fields) < 2 {
		cmd.Invalid = "missing target user"
		return cmd
	}
	cmd.Target = fields[1]

	if cmd.Action == AdminMute && len(fields) > 2 {
		secs, err := strconv.Atoi(fields[2])
		if err != nil || secs <= 0 || int64(secs) > maxMuteSeconds {
			cmd.Invalid = "mute duration must be a positive number of seconds"
			return cmd
		}
		cmd.Duration = time.Duration(secs) * time.Second
	}
	return cmd
}

// maxMuteSeconds is the largest mute that still fits a time.Duration.
const maxMuteSeconds = math.MaxInt64 / int64(time.Second)

// splitTarget separates the first whitespace-delimited token from the rest
// of the line.
func splitTarget(s string) (target, body string) {
	s = strings.TrimLeft(s, " \t")
	idx := strings.IndexAny(s, " \t")
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimLeft(s[idx+1:], " \t")
}
