package bedrock

import "errors"

var (
	// ErrMissingTransport indicates the client was built without a transport.
	ErrMissingTransport = errors.New("missing transport")

	// ErrMissingAgentID indicates the client was built without an agent id.
	ErrMissingAgentID = errors.New("missing agent id")

	// ErrMissingAliasID indicates the client was built without an alias id.
	ErrMissingAliasID = errors.New("missing agent alias id")

	// ErrInvalidGuardrailInterval indicates a non-positive guardrail interval.
	ErrInvalidGuardrailInterval = errors.New("invalid guardrail interval")
)
