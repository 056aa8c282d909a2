package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/carebyte/carebot/internal/chat"
	"github.com/carebyte/carebot/internal/log"
	"github.com/carebyte/carebot/internal/session"
)

// chatHandler holds dependencies for the chat endpoints.
type chatHandler struct {
	store  session.Store
	runner *chat.Runner
	turns  *inflight
	logger log.Logger
}

// chatRequest is the body for both chat endpoints.
type chatRequest struct {
	SessionID string `json:"sessionId"`
	Prompt    string `json:"prompt"`
}

// chatResponse is the JSON reply for the blocking endpoint. Failed turns
// come back with failed=true and the diagnostic text in reply; the HTTP
// status is still 200 because the diagnostic is part of the conversation.
type chatResponse struct {
	SessionID string           `json:"sessionId"`
	Reply     string           `json:"reply"`
	Failed    bool             `json:"failed"`
	Kind      chat.FailureKind `json:"kind"`
}

// decode parses and validates the request body. The error result is an
// (code, message) pair ready for writeError or an SSE error event.
func (h *chatHandler) decode(w http.ResponseWriter, r *http.Request) (chatRequest, string, string) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, "invalid_request", "invalid request body"
	}
	if req.SessionID == "" {
		return req, "missing_session_id", "sessionId is required"
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return req, "missing_prompt", "prompt is required"
	}
	return req, "", ""
}

// send handles POST /api/v1/chat, running one blocking turn.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	req, code, message := h.decode(w, r)
	if code != "" {
		writeError(w, http.StatusBadRequest, code, message, h.logger)
		return
	}

	if !h.turns.acquire(req.SessionID) {
		writeError(w, http.StatusConflict, "turn_in_flight", "a turn is already running for this session", h.logger)
		return
	}
	defer h.turns.release(req.SessionID)

	st, err := h.store.Get(r.Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "session not found", h.logger)
			return
		}
		h.logger.Error("failed to get session", "error", err)
		writeError(w, http.StatusInternalServerError, "store_error", "failed to get session", h.logger)
		return
	}

	outcome := h.runner.Run(r.Context(), st, req.Prompt, nil)

	if err := h.persistTurn(r.Context(), st); err != nil {
		h.logger.Error("failed to persist turn", "error", err, "session_id", st.ID)
		writeError(w, http.StatusInternalServerError, "store_error", "failed to persist turn", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: st.ID,
		Reply:     outcome.Reply,
		Failed:    outcome.Failed(),
		Kind:      outcome.Kind,
	}, h.logger)
}

// persistTurn stores the turn's transcript delta. A settings write can race
// the turn; on version conflict the turn's two messages are re-applied to
// fresh state so the agent's reply is not lost.
func (h *chatHandler) persistTurn(ctx context.Context, st *session.State) error {
	err := h.store.Update(ctx, st)
	if !errors.Is(err, session.ErrVersionConflict) {
		return err
	}

	// Run appends exactly the user prompt and the reply.
	turn := st.Messages[len(st.Messages)-2:]
	for range 2 {
		fresh, err := h.store.Get(ctx, st.ID)
		if err != nil {
			return err
		}
		fresh.Messages = append(fresh.Messages, turn...)
		err = h.store.Update(ctx, fresh)
		if !errors.Is(err, session.ErrVersionConflict) {
			return err
		}
	}
	return session.ErrVersionConflict
}

// sseChunk is the payload for chunk events.
type sseChunk struct {
	Text string `json:"text"`
}

// sseDone is the payload for done events.
type sseDone struct {
	Response  string `json:"response"`
	SessionID string `json:"sessionId"`
}

// sseError is the payload for error events.
type sseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// stream handles POST /api/v1/chat/stream, running one turn over
// Server-Sent Events. Deltas arrive as chunk events while the agent
// responds; the turn ends with either a done event or an error event
// carrying the failure kind and the diagnostic.
func (h *chatHandler) stream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.logger.Error("streaming not supported")
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// SSE headers are committed before the body is read, so validation
	// failures arrive as error events rather than HTTP status codes.
	req, code, message := h.decode(w, r)
	if code != "" {
		h.writeSSE(w, flusher, "error", sseError{Code: code, Message: message})
		return
	}

	if !h.turns.acquire(req.SessionID) {
		h.writeSSE(w, flusher, "error", sseError{Code: "turn_in_flight", Message: "a turn is already running for this session"})
		return
	}
	defer h.turns.release(req.SessionID)

	ctx := r.Context()

	st, err := h.store.Get(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			h.writeSSE(w, flusher, "error", sseError{Code: "not_found", Message: "session not found"})
			return
		}
		h.logger.Error("failed to get session", "error", err)
		h.writeSSE(w, flusher, "error", sseError{Code: "store_error", Message: "failed to get session"})
		return
	}

	h.logger.Debug("SSE stream started", "session_id", st.ID)

	outcome := h.runner.Run(ctx, st, req.Prompt, func(delta, _ string) {
		h.writeSSE(w, flusher, "chunk", sseChunk{Text: delta})
	})

	// The turn is persisted even when the client has gone: the agent's
	// reply (or the cancellation partial) belongs in the transcript.
	if err := h.persistTurn(context.WithoutCancel(ctx), st); err != nil {
		h.logger.Error("failed to persist turn", "error", err, "session_id", st.ID)
		h.writeSSE(w, flusher, "error", sseError{Code: "store_error", Message: "failed to persist turn"})
		return
	}

	if ctx.Err() != nil {
		h.logger.Debug("client disconnected", "session_id", st.ID)
		return
	}

	if outcome.Failed() {
		h.writeSSE(w, flusher, "error", sseError{Code: outcome.Kind.String(), Message: outcome.Reply})
		return
	}

	h.writeSSE(w, flusher, "done", sseDone{Response: outcome.Reply, SessionID: st.ID})
	h.logger.Debug("SSE stream completed", "session_id", st.ID, "reply_len", len(outcome.Reply))
}

// writeSSE marshals data and writes one SSE event, flushing immediately so
// chunks reach the client as they are produced.
func (h *chatHandler) writeSSE(w io.Writer, flusher http.Flusher, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("failed to marshal SSE payload", "event", event, "error", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
	flusher.Flush()
}
