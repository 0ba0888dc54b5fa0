package session

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role identifies who produced a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

var (
	ErrInvalidSessionID = errors.New("session id is empty")
	ErrInvalidRole      = errors.New("invalid message role")
	ErrMissingToolRef   = errors.New("tool message requires tool_call_id")
)

// ToolCall records a tool invocation the model requested in an assistant
// message. Arguments holds the raw JSON the model produced.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"`
}

// Message is one entry in a session transcript.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	At         time.Time  `json:"at"`
}

// State is the per-session source of truth: an ordered, append-only
// transcript. Messages are never removed or reordered, so the transcript
// length is monotonically non-decreasing across turns.
type State struct {
	SessionID  string    `json:"session_id"`
	CustomerID string    `json:"customer_id"`
	Messages   []Message `json:"messages,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Version    int       `json:"version"`
}

func NewState(sessionID, customerID string, now time.Time) *State {
	return &State{
		SessionID:  sessionID,
		CustomerID: customerID,
		Messages:   make([]Message, 0, 8),
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
		Version:    1,
	}
}

// Append adds messages to the end of the transcript.
func (s *State) Append(msgs ...Message) {
	s.Messages = append(s.Messages, msgs...)
}

// Len returns the transcript length.
func (s *State) Len() int {
	return len(s.Messages)
}

func (s *State) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// Validate checks structural invariants before the state is persisted.
func (s *State) Validate() error {
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrInvalidSessionID
	}
	for i, msg := range s.Messages {
		switch msg.Role {
		case RoleUser, RoleAssistant:
		case RoleTool:
			if strings.TrimSpace(msg.ToolCallID) == "" {
				return fmt.Errorf("%w: message index=%d", ErrMissingToolRef, i)
			}
		default:
			return fmt.Errorf("%w: %q at index=%d", ErrInvalidRole, msg.Role, i)
		}
	}
	return nil
}

// Clone returns a deep copy so stored state cannot alias caller memory.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	for i, msg := range s.Messages {
		if len(msg.ToolCalls) > 0 {
			out.Messages[i].ToolCalls = append([]ToolCall(nil), msg.ToolCalls...)
		}
	}
	return &out
}

func UserMessage(text string, now time.Time) Message {
	return Message{Role: RoleUser, Content: text, At: now.UTC()}
}

func AssistantMessage(text string, now time.Time) Message {
	return Message{Role: RoleAssistant, Content: text, At: now.UTC()}
}

func AssistantToolCalls(calls []ToolCall, now time.Time) Message {
	return Message{Role: RoleAssistant, ToolCalls: calls, At: now.UTC()}
}

func ToolMessage(toolCallID, content string, now time.Time) Message {
	return Message{Role: RoleTool, ToolCallID: toolCallID, Content: content, At: now.UTC()}
}
