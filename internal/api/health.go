package api

import (
	"net/http"

	"github.com/carebyte/carebot/internal/log"
	"github.com/carebyte/carebot/internal/session"
)

// health is a liveness probe for Docker/Kubernetes.
// Returns 200 OK with {"status":"ok"} as long as the process is up.
func health(logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	}
}

// readiness is a readiness probe. It pings the session store so the server
// is only marked ready when turns can actually be persisted.
func readiness(store session.Store, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			logger.Error("readiness check failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "store_unavailable", "session store not ready", logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	}
}
