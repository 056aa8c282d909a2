package chat

import "errors"

// FailureKind classifies how a turn ended. Presentation layers switch on it
// exhaustively instead of parsing diagnostic strings.
type FailureKind int

const (
	// FailureNone: the turn produced a real reply.
	FailureNone FailureKind = iota

	// FailureGuard: a precondition stopped the turn before any network
	// call. The conversation stays usable.
	FailureGuard

	// FailureService: the remote service reported an error during
	// invocation or streaming.
	FailureService

	// FailureRuntime: any other failure. Separating it from
	// FailureService lets operators tell infrastructure trouble from
	// local bugs.
	FailureRuntime
)

// String returns the wire name of the kind.
func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureGuard:
		return "guard"
	case FailureService:
		return "service"
	case FailureRuntime:
		return "runtime"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the kind as its wire name.
func (k FailureKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// ErrMissingCustomerOUID trips the override guard: overrides are enabled
// but no customer identifier survived attribute building.
var ErrMissingCustomerOUID = errors.New("missing customerOuid while overrides are enabled")

// GuardMessage is the transcript diagnostic for a guard-stopped turn.
const GuardMessage = "⚠️ Overrides are ON but 'customerOuid' is empty. Enter a value or turn overrides OFF."

// Outcome is the result of one turn. Reply is never empty on a failed turn;
// it carries the diagnostic that was appended to the transcript.
type Outcome struct {
	Reply string
	Kind  FailureKind
	Err   error
}

// Failed reports whether the turn ended in any failure kind.
func (o Outcome) Failed() bool {
	return o.Kind != FailureNone
}
