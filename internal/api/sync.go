package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/acoulibaly-ghb/lex-publica-admin-l2hz/internal/domain"
	"github.com/acoulibaly-ghb/lex-publica-admin-l2hz/internal/gateway"
	"github.com/go-chi/chi/v5"
)

// Error codes returned by the sync endpoint.
const (
	CodeDatabaseNotConfigured = "DATABASE_NOT_CONFIGURED"
	CodeDBDisabled            = "DB_DISABLED"
	CodeSyncError             = "SYNC_ERROR"
)

const notConfiguredMessage = "Configure KV_REST_API_URL and KV_REST_API_TOKEN to enable global profile sync."

// maxSyncBodySize bounds the POST body (one profile).
const maxSyncBodySize = 1 << 20

// Publisher receives profiles after they were written to the remote record.
type Publisher interface {
	Publish(profile domain.StudentProfile)
}

// SyncHandler exposes the gateway over HTTP.
type SyncHandler struct {
	gw     *gateway.Gateway
	pub    Publisher
	logger *slog.Logger
}

// UpsertRequest is the POST body of the sync endpoint.
type UpsertRequest struct {
	Profile *domain.StudentProfile `json:"profile"`
}

// NewSyncHandler creates a sync handler. pub may be nil.
func NewSyncHandler(gw *gateway.Gateway, pub Publisher, logger *slog.Logger) *SyncHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncHandler{gw: gw, pub: pub, logger: logger}
}

// RegisterRoutes registers the sync routes.
func (h *SyncHandler) RegisterRoutes(r chi.Router) {
	r.HandleFunc("/api/sync", h.ServeSync)
	r.Get("/api/config", h.GetConfig)
}

// ServeSync dispatches GET to Fetch and POST to Upsert.
func (h *SyncHandler) ServeSync(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.Fetch(w, r)
	case http.MethodPost:
		h.Upsert(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// Fetch returns every synced profile.
func (h *SyncHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.gw.Fetch(r.Context())
	if errors.Is(err, gateway.ErrNotConfigured) {
		ErrorWithMessage(w, http.StatusInternalServerError, CodeDatabaseNotConfigured, notConfiguredMessage)
		return
	}
	JSON(w, http.StatusOK, profiles)
}

// Upsert stores one profile in the shared record.
func (h *SyncHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	if !h.gw.Enabled() {
		Error(w, http.StatusInternalServerError, CodeDBDisabled)
		return
	}

	var req UpsertRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSyncBodySize)).Decode(&req); err != nil || req.Profile == nil {
		h.logger.Warn("Rejected sync payload", "error", err)
		Error(w, http.StatusInternalServerError, CodeSyncError)
		return
	}
	if err := h.gw.Upsert(r.Context(), *req.Profile); err != nil {
		if errors.Is(err, gateway.ErrDisabled) {
			Error(w, http.StatusInternalServerError, CodeDBDisabled)
			return
		}
		h.logger.Error("Profile sync failed", "error", err, "profile_id", req.Profile.ID)
		Error(w, http.StatusInternalServerError, CodeSyncError)
		return
	}

	if h.pub != nil {
		h.pub.Publish(*req.Profile)
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetConfig tells the dashboard whether global sync is available.
func (h *SyncHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"sync_enabled": h.gw.Enabled(),
	})
}
