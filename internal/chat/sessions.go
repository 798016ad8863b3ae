package chat

import (
	"sort"

	"github.com/acoulibaly-ghb/lex-publica-admin-l2hz/internal/domain"
)

// Greeting opens every new session.
const Greeting = "Bonjour ! Je suis **Ada**, votre assistante de révision. " +
	"Pour que je puisse suivre votre progression et enregistrer vos scores aux quiz, " +
	"**commençons par faire connaissance : quel est votre prénom ou votre pseudo ?**"

// CreateNewSession creates a session seeded with the greeting, makes it
// active and returns its ID.
func (s *Store) CreateNewSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createSessionLocked()
}

func (s *Store) createSessionLocked() string {
	now := s.now()
	session := domain.ChatSession{
		ID:    s.newID(),
		Title: domain.DefaultSessionTitle,
		Messages: []domain.ChatMessage{{
			Role:      domain.RoleModel,
			Text:      Greeting,
			Timestamp: now,
		}},
		UpdatedAt: now.UnixMilli(),
	}

	s.sessions = append([]domain.ChatSession{session}, s.sessions...)
	s.activeSessionID = session.ID
	s.persistSessionsLocked()
	return session.ID
}

// DeleteSession removes a session. When the active session is deleted the
// most recent remaining one becomes active; when none remain a fresh
// session is created. Unknown IDs are ignored.
func (s *Store) DeleteSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.sessionIndexLocked(id)
	if i < 0 {
		return
	}
	s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)

	if len(s.sessions) == 0 {
		s.createSessionLocked()
		return
	}
	if s.activeSessionID == id {
		s.activeSessionID = s.sessions[0].ID
	}
	s.persistSessionsLocked()
}

// AddMessageToSession appends msg to a session and keeps the session list
// ordered by most recent update. The first user reply after the greeting
// names the session. Unknown session IDs are ignored.
func (s *Store) AddMessageToSession(sessionID string, msg domain.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.sessionIndexLocked(sessionID)
	if i < 0 {
		return
	}

	session := &s.sessions[i]
	if len(session.Messages) == 1 && msg.Role == domain.RoleUser && session.Title == domain.DefaultSessionTitle {
		session.Title = domain.TitleFromMessage(msg.Text)
	}
	if msg.SelectedOption != nil {
		opt := *msg.SelectedOption
		msg.SelectedOption = &opt
	}
	session.Messages = append(session.Messages, msg)
	session.UpdatedAt = s.now().UnixMilli()

	sort.SliceStable(s.sessions, func(a, b int) bool {
		return s.sessions[a].UpdatedAt > s.sessions[b].UpdatedAt
	})
	s.persistSessionsLocked()
}

// SelectOptionInMessage records the option the user picked in the message
// at msgIndex. Out-of-range indexes and unknown sessions are ignored.
func (s *Store) SelectOptionInMessage(sessionID string, msgIndex int, option string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.sessionIndexLocked(sessionID)
	if i < 0 {
		return
	}
	messages := s.sessions[i].Messages
	if msgIndex < 0 || msgIndex >= len(messages) {
		return
	}

	messages[msgIndex].SelectedOption = &option
	s.persistSessionsLocked()
}

// ActiveSession returns the active session, if it still exists.
func (s *Store) ActiveSession() (domain.ChatSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.sessionIndexLocked(s.activeSessionID)
	if i < 0 {
		return domain.ChatSession{}, false
	}
	return s.sessions[i].Clone(), true
}

// ActiveSessionID returns the ID of the active session.
func (s *Store) ActiveSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeSessionID
}

// SetActiveSession switches the active session. It reports false for
// unknown IDs. The active session is not persisted; on restart the most
// recent session is active.
func (s *Store) SetActiveSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessionIndexLocked(id) < 0 {
		return false
	}
	s.activeSessionID = id
	return true
}

// Sessions returns every session, most recently updated first.
func (s *Store) Sessions() []domain.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ChatSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.Clone())
	}
	return out
}

func (s *Store) sessionIndexLocked(id string) int {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}
