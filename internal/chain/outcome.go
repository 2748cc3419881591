package chain

import "strings"

// Outcome classifies the result of a contract read so callers can tell a
// definitive "not on chain" answer apart from a node or transport failure.
type Outcome int

const (
	// Found means the call succeeded and returned data.
	Found Outcome = iota
	// NotFound means the contract itself rejected the call (a revert),
	// which for lookups means no such record exists.
	NotFound
	// TransientError means the node could not be reached or answered with
	// an infrastructure failure; the record may still exist.
	TransientError
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	default:
		return "transient_error"
	}
}

// Classify maps a call error to an Outcome. A nil error is Found.
func Classify(err error) Outcome {
	if err == nil {
		return Found
	}
	if isRevert(err) {
		return NotFound
	}
	return TransientError
}

// RevertReason extracts the human-readable reason from a revert error,
// e.g. "execution reverted: Property is mortgaged" yields
// "Property is mortgaged". Returns "" for non-revert errors.
func RevertReason(err error) string {
	if err == nil || !isRevert(err) {
		return ""
	}
	msg := err.Error()
	idx := strings.Index(msg, revertMarker)
	reason := msg[idx+len(revertMarker):]
	reason = strings.TrimPrefix(reason, ":")
	return strings.TrimSpace(reason)
}

const revertMarker = "execution reverted"

func isRevert(err error) bool {
	return strings.Contains(err.Error(), revertMarker)
}
