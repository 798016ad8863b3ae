// Package gateway reads and rewrites the shared profile record held by the
// remote key-value service.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/acoulibaly-ghb/lex-publica-admin-l2hz/internal/domain"
)

// ProfilesKey is the single remote record holding every profile.
const ProfilesKey = "global_profiles"

var (
	// ErrNotConfigured is returned by Fetch when no backend is configured.
	ErrNotConfigured = errors.New("database not configured")
	// ErrDisabled is returned by Upsert when no backend is configured.
	ErrDisabled = errors.New("sync disabled")
	// ErrSync wraps backend failures during Upsert.
	ErrSync = errors.New("sync error")
)

// Backend is the remote key-value service.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Gateway serves Fetch and Upsert over the profile record. It holds no state
// between calls.
type Gateway struct {
	backend Backend
	logger  *slog.Logger
}

// New creates a gateway. A nil backend means sync is not configured.
func New(backend Backend, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{backend: backend, logger: logger}
}

// Enabled reports whether a backend is configured.
func (g *Gateway) Enabled() bool {
	return g.backend != nil
}

// Fetch returns the stored profiles. A missing or unreadable record yields
// an empty list and no error, and entries that are not profiles are
// skipped. When no backend is configured the empty list comes with
// ErrNotConfigured.
func (g *Gateway) Fetch(ctx context.Context) ([]domain.StudentProfile, error) {
	if !g.Enabled() {
		return []domain.StudentProfile{}, ErrNotConfigured
	}

	entries, err := g.read(ctx)
	if err != nil {
		g.logger.Warn("Profile fetch degraded to empty list", "error", err)
		return []domain.StudentProfile{}, nil
	}

	profiles := make([]domain.StudentProfile, 0, len(entries))
	for i, entry := range entries {
		var p domain.StudentProfile
		if err := json.Unmarshal(entry, &p); err != nil {
			g.logger.Warn("Skipping unreadable profile entry", "index", i, "error", err)
			continue
		}
		if p.Scores == nil {
			p.Scores = []domain.ScoreRecord{}
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// Upsert replaces the entry with the same profile ID, or appends one, and
// writes the whole record back. Other entries are written back byte for
// byte. Concurrent upserts are not coordinated: the last write wins.
func (g *Gateway) Upsert(ctx context.Context, profile domain.StudentProfile) error {
	if !g.Enabled() {
		return ErrDisabled
	}
	if profile.Scores == nil {
		profile.Scores = []domain.ScoreRecord{}
	}

	entries, err := g.read(ctx)
	if err != nil {
		return fmt.Errorf("%w: read profiles: %v", ErrSync, err)
	}

	encoded, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("%w: encode profile: %v", ErrSync, err)
	}
	entries = upsertByID(entries, profile.ID, encoded)

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("%w: encode profiles: %v", ErrSync, err)
	}
	if err := g.backend.Set(ctx, ProfilesKey, string(data)); err != nil {
		return fmt.Errorf("%w: write profiles: %v", ErrSync, err)
	}

	g.logger.Info("Profile synced", "profile_id", profile.ID, "scores", len(profile.Scores), "total_profiles", len(entries))
	return nil
}

// read loads the record as a list of raw entries. An absent record is an
// empty list.
func (g *Gateway) read(ctx context.Context) ([]json.RawMessage, error) {
	raw, ok, err := g.backend.Get(ctx, ProfilesKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []json.RawMessage{}, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ProfilesKey, err)
	}
	if entries == nil {
		entries = []json.RawMessage{}
	}
	return entries, nil
}

func upsertByID(entries []json.RawMessage, id string, encoded json.RawMessage) []json.RawMessage {
	for i, entry := range entries {
		var head struct {
			ID string `json:"id"`
		}
		if json.Unmarshal(entry, &head) == nil && head.ID == id {
			entries[i] = encoded
			return entries
		}
	}
	return append(entries, encoded)
}
