package chat

import (
	"fmt"
	"strings"

	"github.com/acoulibaly-ghb/lex-publica-admin-l2hz/internal/domain"
)

// FindProfilesByName returns the profiles whose name matches, ignoring case
// and surrounding whitespace.
func (s *Store) FindProfilesByName(name string) []domain.StudentProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []domain.StudentProfile
	for _, p := range s.profiles {
		if p.MatchesName(name) {
			matches = append(matches, p.Clone())
		}
	}
	return matches
}

// CreateNewProfile creates a profile named name with a "<name> #NNN" ID,
// logs into it and pushes it to the remote.
func (s *Store) CreateNewProfile(name string) domain.StudentProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	clean := strings.TrimSpace(name)
	profile := domain.StudentProfile{
		ID:     fmt.Sprintf("%s #%d", clean, 100+s.intn(900)),
		Name:   clean,
		Scores: []domain.ScoreRecord{},
	}

	s.profiles = append(s.profiles, profile)
	s.currentProfileID = profile.ID
	s.persistProfilesLocked()
	s.persistActiveProfileLocked()
	s.pushLocked(profile)

	s.logger.Info("Profile created", "profile_id", profile.ID)
	return profile.Clone()
}

// LoginToProfile makes the profile with id current. Unknown IDs are ignored.
func (s *Store) LoginToProfile(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profileIndexLocked(id) < 0 {
		return
	}
	s.currentProfileID = id
	s.persistActiveProfileLocked()
}

// LogoutProfile clears the current profile.
func (s *Store) LogoutProfile() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentProfileID = ""
	s.persistActiveProfileLocked()
}

// SaveScore appends score to a profile and pushes the updated profile to
// the remote. Unknown profile IDs are ignored.
func (s *Store) SaveScore(profileID string, score domain.ScoreRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.profileIndexLocked(profileID)
	if i < 0 {
		return
	}

	s.profiles[i].Scores = append(s.profiles[i].Scores, score)
	s.persistProfilesLocked()
	s.pushLocked(s.profiles[i])
}

// CurrentProfile returns the logged-in profile, if it still exists.
func (s *Store) CurrentProfile() (domain.StudentProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.profileIndexLocked(s.currentProfileID)
	if i < 0 {
		return domain.StudentProfile{}, false
	}
	return s.profiles[i].Clone(), true
}

// Profiles returns every known profile.
func (s *Store) Profiles() []domain.StudentProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneProfiles(s.profiles)
}

func (s *Store) profileIndexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.profiles {
		if s.profiles[i].ID == id {
			return i
		}
	}
	return -1
}
