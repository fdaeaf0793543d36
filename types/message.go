// Package types contains shared type definitions used across the trailhead packages.
// It helps avoid import cycles while providing common data structures.
package types

import "fmt"

// Role identifies the speaker of a conversation message.
// Only the three roles below are accepted anywhere in the module.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the closed set of roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// String returns the wire name of the role.
func (r Role) String() string {
	return string(r)
}

// UnmarshalText parses a role name, rejecting anything outside the closed set.
func (r *Role) UnmarshalText(text []byte) error {
	candidate := Role(text)
	if !candidate.Valid() {
		return fmt.Errorf("invalid message role: %q", string(text))
	}
	*r = candidate
	return nil
}

// Message represents a single role-tagged turn handed to the language model.
type Message struct {
	Role    Role   `json:"role"`    // Speaker of the message
	Content string `json:"content"` // Text of the message
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant-role message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// CloneMessages returns an independent copy of msgs.
// Messages hold only value fields, so a shallow copy of the slice is enough.
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
