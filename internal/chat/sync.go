package chat

import (
	"context"
	"sync"

	"github.com/acoulibaly-ghb/lex-publica-admin-l2hz/internal/domain"
)

// ProfileSync is the remote profile service.
type ProfileSync interface {
	FetchProfiles(ctx context.Context) ([]domain.StudentProfile, error)
	PushProfile(ctx context.Context, profile domain.StudentProfile) error
}

// OfflineSync is used when no remote is configured. It has no profiles and
// accepts every push.
type OfflineSync struct{}

// FetchProfiles returns no profiles.
func (OfflineSync) FetchProfiles(context.Context) ([]domain.StudentProfile, error) {
	return nil, nil
}

// PushProfile does nothing.
func (OfflineSync) PushProfile(context.Context, domain.StudentProfile) error {
	return nil
}

// startPullLocked fetches remote profiles once and merges them into memory.
func (s *Store) startPullLocked() {
	s.goLocked("pull", func(ctx context.Context) error {
		remote, err := s.remote.FetchProfiles(ctx)
		if err != nil {
			return err
		}
		if len(remote) == 0 {
			return nil
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		before := len(s.profiles)
		s.profiles = Merge(s.profiles, remote)
		s.persistProfilesLocked()
		s.logger.Info("Merged remote profiles",
			"remote", len(remote),
			"local_before", before,
			"local_after", len(s.profiles))
		return nil
	})
}

// pushLocked sends a snapshot of profile to the remote.
func (s *Store) pushLocked(profile domain.StudentProfile) {
	snapshot := profile.Clone()
	s.goLocked("push", func(ctx context.Context) error {
		return s.remote.PushProfile(ctx, snapshot)
	})
}

// goLocked runs fn in the background with the sync timeout. Failures are
// logged and dropped: there is no retry. Must be called with s.mu held.
func (s *Store) goLocked(task string, fn func(ctx context.Context) error) {
	if s.closed {
		s.logger.Debug("Store closed, skipping sync task", "task", task)
		return
	}

	s.tasks.add()
	go func() {
		defer s.tasks.done()

		ctx, cancel := context.WithTimeout(s.ctx, s.syncTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			s.logger.Debug("Remote sync failed", "task", task, "error", err)
		}
	}()
}

// taskGroup counts in-flight background tasks. Unlike sync.WaitGroup it may
// be waited on while new tasks are being added.
type taskGroup struct {
	mu   sync.Mutex
	n    int
	idle chan struct{}
}

func (g *taskGroup) add() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.n == 0 {
		g.idle = make(chan struct{})
	}
	g.n++
}

func (g *taskGroup) done() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n--
	if g.n == 0 {
		close(g.idle)
	}
}

func (g *taskGroup) pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}

func (g *taskGroup) wait(ctx context.Context) error {
	g.mu.Lock()
	if g.n == 0 {
		g.mu.Unlock()
		return nil
	}
	idle := g.idle
	g.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
