// Package session persists conversation state across turns.
//
// A [State] is the unit of persistence: the transcript, the attribute
// override record and the override toggle, stamped with a version counter.
// A [Store] keeps states by ID; two backends exist, an in-process map for
// single-user runs and Redis for deployments where the API server is
// restarted or scaled out.
//
// # Concurrency
//
// Both backends use optimistic locking. [Store.Update] compares the version
// of the submitted state against the stored one and fails with
// [ErrVersionConflict] when another writer got there first; the caller
// re-reads and retries or surfaces the conflict. States handed out by a
// store are private copies, so callers can mutate them freely before
// submitting them back.
//
// # Expiry
//
// The Redis backend expires sessions after a configurable TTL and refreshes
// it on every read and write, so an abandoned conversation disappears on its
// own. The memory backend never expires anything and is meant for
// development runs only.
package session
