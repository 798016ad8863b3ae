// Package domain contains core domain types for the lex-publica application.
package domain

import (
	"time"
)

// DefaultSessionTitle is the title a session keeps until its first user message.
const DefaultSessionTitle = "Nouvelle conversation"

// maxTitleRunes is how much of the first user message becomes the session title.
const maxTitleRunes = 30

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ChatMessage is a single entry in a chat session.
type ChatMessage struct {
	Role           Role      `json:"role"`
	Text           string    `json:"text"`
	Timestamp      time.Time `json:"timestamp"`
	SelectedOption *string   `json:"selectedOption,omitempty"`
}

// ChatSession is one conversation thread.
type ChatSession struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `json:"messages"`
	UpdatedAt int64         `json:"updatedAt"` // Unix milliseconds
}

// Clone returns a deep copy of the session.
func (s ChatSession) Clone() ChatSession {
	out := s
	out.Messages = make([]ChatMessage, len(s.Messages))
	for i, m := range s.Messages {
		if m.SelectedOption != nil {
			opt := *m.SelectedOption
			m.SelectedOption = &opt
		}
		out.Messages[i] = m
	}
	return out
}

// TitleFromMessage derives a session title from the first user message.
// Titles longer than 30 characters are cut and suffixed with "...".
func TitleFromMessage(text string) string {
	runes := []rune(text)
	if len(runes) <= maxTitleRunes {
		return text
	}
	return string(runes[:maxTitleRunes]) + "..."
}
