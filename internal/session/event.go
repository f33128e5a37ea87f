package session

import "encoding/json"

// Kind is the hook event name reported by the agent.
type Kind string

const (
	KindSessionStart      Kind = "SessionStart"
	KindUserPromptSubmit  Kind = "UserPromptSubmit"
	KindPreToolUse        Kind = "PreToolUse"
	KindPostToolUse       Kind = "PostToolUse"
	KindStop              Kind = "Stop"
	KindSubagentStop      Kind = "SubagentStop"
	KindPermissionRequest Kind = "PermissionRequest"
	KindNotification      Kind = "Notification"
	KindSessionEnd        Kind = "SessionEnd"
)

// UnknownSessionID stands in for payloads that carry no session id.
const UnknownSessionID = "unknown"

// Event is one already-parsed producer event.
type Event struct {
	Kind             Kind
	SessionID        string
	ToolName         string
	WorkingDirectory string
	Prompt           string
	// Matcher qualifies Notification events (permission_prompt, elicitation_dialog, ...).
	Matcher string
}

// StatusFor maps an event to the status it produces. removal is true for
// the terminal kind, in which case the record is deleted rather than written.
func StatusFor(ev Event) (status Status, removal bool) {
	switch ev.Kind {
	case KindSessionStart:
		return StatusActive, false
	case KindUserPromptSubmit, KindPreToolUse, KindPostToolUse, KindSubagentStop:
		return StatusWorking, false
	case KindStop, KindPermissionRequest:
		return StatusWaiting, false
	case KindNotification:
		if ev.Matcher == "permission_prompt" || ev.Matcher == "elicitation_dialog" {
			return StatusWaiting, false
		}
		return StatusUnknown, false
	case KindSessionEnd:
		return StatusIdle, true
	default:
		return StatusUnknown, false
	}
}

// hookPayload is the JSON document Claude Code writes to a hook's stdin.
// Only the fields we use are decoded.
type hookPayload struct {
	HookEventName string          `json:"hook_event_name"`
	SessionID     string          `json:"session_id"`
	ToolName      string          `json:"tool_name"`
	Cwd           string          `json:"cwd"`
	Prompt        string          `json:"prompt"`
	Matcher       json.RawMessage `json:"matcher,omitempty"`
}

// ParseHookPayload decodes a hook payload into an Event. Malformed input
// still yields an event (unknown kind, unknown session) so it gets recorded.
func ParseHookPayload(data []byte) Event {
	var p hookPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return Event{SessionID: UnknownSessionID}
	}

	ev := Event{
		Kind:             Kind(p.HookEventName),
		SessionID:        p.SessionID,
		ToolName:         p.ToolName,
		WorkingDirectory: p.Cwd,
		Prompt:           p.Prompt,
	}
	if ev.SessionID == "" {
		ev.SessionID = UnknownSessionID
	}
	if len(p.Matcher) > 0 {
		var matcher string
		if err := json.Unmarshal(p.Matcher, &matcher); err == nil {
			ev.Matcher = matcher
		}
	}
	return ev
}
