// Package api provides the JSON REST API server for carebot.
//
// # Architecture
//
// The server uses Go 1.22+ routing with a layered middleware stack:
//
//	Recovery → Logging → RateLimit → Routes
//
// Health probes (/health, /ready) bypass the middleware stack via a
// top-level mux, ensuring they remain fast and unthrottled.
//
// # Endpoints
//
// Health probes (no middleware):
//   - GET /health — returns {"status":"ok"}
//   - GET /ready  — pings the session store, 503 when unreachable
//
// Sessions:
//   - POST   /api/v1/sessions                — create a session with prefilled overrides
//   - GET    /api/v1/sessions/{id}           — get session state (token masked)
//   - PATCH  /api/v1/sessions/{id}/settings  — update overrides and the toggle
//   - DELETE /api/v1/sessions/{id}           — delete a session
//
// Chat:
//   - POST /api/v1/chat        — run one turn, blocking, JSON response
//   - POST /api/v1/chat/stream — run one turn, streaming via SSE
//
// # Error Handling
//
// HTTP-level errors use an envelope format:
//
//	{"error": {"code": "...", "message": "..."}}
//
// Turn failures are not HTTP errors: the agent's diagnostic reply is part
// of the conversation, so a failed turn still returns 200 (or a terminal
// SSE error event) with the diagnostic text and the failure kind, and the
// transcript keeps both the prompt and the diagnostic.
//
// # SSE Streaming
//
// Chat responses stream via Server-Sent Events with typed events:
//
//   - chunk: incremental text {"text": "..."}
//   - done:  final reply {"response": "...", "sessionId": "..."}
//   - error: turn or request failure {"code": "...", "message": "..."}
//
// Validation failures on the stream endpoint arrive as error events, not
// HTTP status codes, since SSE headers are committed before the body is
// read.
//
// # Turn Serialization
//
// One turn per session at a time: a second chat request for a session whose
// turn is still running gets 409 turn_in_flight. Sessions are independent.
package api
