package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/carebyte/carebot/internal/attrs"
	"github.com/carebyte/carebot/internal/log"
	"github.com/carebyte/carebot/internal/session"
)

// sessionHandler holds dependencies for session API endpoints.
type sessionHandler struct {
	store  session.Store
	seed   attrs.Seed
	logger log.Logger
}

// sessionResponse is the JSON representation of a session. The override
// record goes through Redacted so the auth token never leaves the server
// in readable form.
type sessionResponse struct {
	ID           string            `json:"id"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
	Version      int64             `json:"version"`
	UseOverrides bool              `json:"useOverrides"`
	Overrides    attrs.Overrides   `json:"overrides"`
	Messages     []session.Message `json:"messages"`
}

func toSessionResponse(st *session.State) sessionResponse {
	return sessionResponse{
		ID:           st.ID,
		CreatedAt:    st.CreatedAt,
		UpdatedAt:    st.UpdatedAt,
		Version:      st.Version,
		UseOverrides: st.UseOverrides,
		Overrides:    st.Overrides.Redacted(),
		Messages:     st.Messages,
	}
}

// createSession handles POST /api/v1/sessions. It creates a session with
// the configured attribute prefills; the request body is ignored.
func (h *sessionHandler) createSession(w http.ResponseWriter, r *http.Request) {
	st := session.NewState(h.seed)
	if err := h.store.Create(r.Context(), st); err != nil {
		h.logger.Error("failed to create session", "error", err)
		writeError(w, http.StatusInternalServerError, "store_error", "failed to create session", h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(st), h.logger)
}

// getSession handles GET /api/v1/sessions/{id}.
func (h *sessionHandler) getSession(w http.ResponseWriter, r *http.Request) {
	st, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "session not found", h.logger)
			return
		}
		h.logger.Error("failed to get session", "error", err)
		writeError(w, http.StatusInternalServerError, "store_error", "failed to get session", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(st), h.logger)
}

// deleteSession handles DELETE /api/v1/sessions/{id}. Deleting a missing
// session succeeds, matching the store contract.
func (h *sessionHandler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.logger.Error("failed to delete session", "error", err)
		writeError(w, http.StatusInternalServerError, "store_error", "failed to delete session", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// updateSettingsRequest is the body for PATCH /sessions/{id}/settings.
// All fields are optional; set entries are applied before unset entries.
type updateSettingsRequest struct {
	UseOverrides *bool             `json:"useOverrides"`
	Set          map[string]string `json:"set"`
	Unset        []string          `json:"unset"`
}

// updateSettings handles PATCH /api/v1/sessions/{id}/settings. It applies
// partial override changes and the toggle under optimistic locking: on a
// concurrent write the caller gets 409 and retries with fresh state.
func (h *sessionHandler) updateSettings(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", h.logger)
		return
	}

	st, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "session not found", h.logger)
			return
		}
		h.logger.Error("failed to get session", "error", err)
		writeError(w, http.StatusInternalServerError, "store_error", "failed to get session", h.logger)
		return
	}

	for key, value := range req.Set {
		if err := st.Overrides.Set(key, value); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_attribute", err.Error(), h.logger)
			return
		}
	}
	for _, key := range req.Unset {
		if err := st.Overrides.Unset(key); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_attribute", err.Error(), h.logger)
			return
		}
	}
	if req.UseOverrides != nil {
		st.UseOverrides = *req.UseOverrides
	}

	if err := h.store.Update(r.Context(), st); err != nil {
		switch {
		case errors.Is(err, session.ErrVersionConflict):
			writeError(w, http.StatusConflict, "version_conflict", "session was modified concurrently, retry", h.logger)
		case errors.Is(err, session.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "session not found", h.logger)
		default:
			h.logger.Error("failed to update session", "error", err)
			writeError(w, http.StatusInternalServerError, "store_error", "failed to update session", h.logger)
		}
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(st), h.logger)
}
