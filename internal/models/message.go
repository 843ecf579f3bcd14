package models

import "time"

// Role identifies who authored a message
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModel
}

// Message is a single turn of the conversation. Messages are values and are
// never modified after they have been appended to a conversation.
type Message struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserMessage creates a message authored by the user
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text, CreatedAt: time.Now()}
}

// NewModelMessage creates a message authored by the model
func NewModelMessage(text string) Message {
	return Message{Role: RoleModel, Text: text, CreatedAt: time.Now()}
}

// IsUser returns true if the message was written by the user
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}
