// Package chat owns the client's chat sessions and student profiles. It
// persists them to a local key/value store and reconciles profiles with the
// shared remote record on a best-effort basis.
package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/acoulibaly-ghb/lex-publica-admin-l2hz/internal/domain"
	"github.com/google/uuid"
)

// Local store keys.
const (
	SessionsKey      = "droit_public_sessions"
	ProfilesKey      = "droit_public_profiles"
	ActiveProfileKey = "droit_public_active_profile"
)

const (
	defaultSyncTimeout  = 10 * time.Second
	defaultCloseTimeout = 5 * time.Second
)

// LocalStore is durable key/value storage on the client device.
type LocalStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Store holds the canonical in-memory sessions and profiles for one client
// session. All mutations are serialized and persisted before they return;
// remote pushes and the startup pull run in the background.
type Store struct {
	mu sync.Mutex

	local  LocalStore
	remote ProfileSync
	logger *slog.Logger

	now         func() time.Time
	intn        func(n int) int
	newID       func() string
	syncTimeout time.Duration

	sessions         []domain.ChatSession
	profiles         []domain.StudentProfile
	activeSessionID  string
	currentProfileID string

	ctx    context.Context
	cancel context.CancelFunc
	tasks  taskGroup
	closed bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithRand sets the source used for profile ID suffixes. intn must return
// a value in [0, n).
func WithRand(intn func(n int) int) Option {
	return func(s *Store) { s.intn = intn }
}

// WithIDGenerator sets the session ID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithSyncTimeout bounds each remote call.
func WithSyncTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.syncTimeout = d
		}
	}
}

// NewStore loads state from local and starts the one-time profile pull from
// remote. A nil remote means the client runs offline. Loading never fails:
// missing or unreadable state is replaced with defaults.
func NewStore(ctx context.Context, local LocalStore, remote ProfileSync, opts ...Option) *Store {
	if remote == nil {
		remote = OfflineSync{}
	}

	s := &Store{
		local:       local,
		remote:      remote,
		logger:      slog.Default(),
		now:         time.Now,
		intn:        rand.IntN,
		newID:       uuid.NewString,
		syncTimeout: defaultSyncTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))

	s.mu.Lock()
	s.load(ctx)
	s.startPullLocked()
	s.mu.Unlock()

	return s
}

func (s *Store) load(ctx context.Context) {
	var sessions []domain.ChatSession
	if ok := s.readJSON(ctx, SessionsKey, &sessions); ok && len(sessions) > 0 {
		for i := range sessions {
			if sessions[i].Messages == nil {
				sessions[i].Messages = []domain.ChatMessage{}
			}
		}
		s.sessions = sessions
		s.activeSessionID = sessions[0].ID
	} else {
		s.createSessionLocked()
	}

	var profiles []domain.StudentProfile
	if ok := s.readJSON(ctx, ProfilesKey, &profiles); !ok || profiles == nil {
		profiles = []domain.StudentProfile{}
	}
	s.profiles = normalizeProfiles(profiles)

	active, ok, err := s.local.Get(ctx, ActiveProfileKey)
	if err != nil {
		s.logger.Warn("Failed to read active profile", "error", err)
	} else if ok {
		s.currentProfileID = active
	}

	s.logger.Info("Client state loaded",
		"sessions", len(s.sessions),
		"profiles", len(s.profiles),
		"active_profile", s.currentProfileID)
}

// readJSON decodes the value under key into v. It reports false when the
// key is absent or its content cannot be decoded.
func (s *Store) readJSON(ctx context.Context, key string, v any) bool {
	raw, ok, err := s.local.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Failed to read local state", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.logger.Warn("Discarding corrupt local state", "key", key, "error", err)
		return false
	}
	return true
}

func (s *Store) writeJSON(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("Failed to encode local state", "key", key, "error", err)
		return
	}
	if err := s.local.Set(context.Background(), key, string(data)); err != nil {
		s.logger.Warn("Failed to persist local state", "key", key, "error", err)
	}
}

func (s *Store) persistSessionsLocked() {
	s.writeJSON(SessionsKey, s.sessions)
}

func (s *Store) persistProfilesLocked() {
	s.writeJSON(ProfilesKey, s.profiles)
}

func (s *Store) persistActiveProfileLocked() {
	if s.currentProfileID == "" {
		if err := s.local.Delete(context.Background(), ActiveProfileKey); err != nil {
			s.logger.Warn("Failed to clear active profile", "error", err)
		}
		return
	}
	if err := s.local.Set(context.Background(), ActiveProfileKey, s.currentProfileID); err != nil {
		s.logger.Warn("Failed to persist active profile", "error", err)
	}
}

// Flush waits until every background sync task has finished or ctx is done.
func (s *Store) Flush(ctx context.Context) error {
	return s.tasks.wait(ctx)
}

// Close stops accepting background work, waits briefly for in-flight tasks
// and cancels whatever is left.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultCloseTimeout)
	defer cancel()
	if err := s.tasks.wait(ctx); err != nil {
		s.logger.Warn("Abandoning pending sync tasks", "pending", s.tasks.pending())
	}
	s.cancel()
	_ = s.tasks.wait(context.Background())
}
