// internal/dialogue/result.go
package dialogue

import "voicefin/internal/intent"

// Stage is where a turn ended in the dialogue state machine.
type Stage string

const (
	StageAwaitingSlots Stage = "AWAITING_SLOTS"
	StageReady         Stage = "READY"
	StageDispatched    Stage = "DISPATCHED"
	StageUnsupported   Stage = "UNSUPPORTED"
)

// Reason is the machine-readable outcome of a turn. Expected conversational
// outcomes (unsupported intent, missing slots) share the same shape as
// failures so callers can branch without string matching messages.
type Reason string

const (
	ReasonCompleted        Reason = "COMPLETED"
	ReasonUnsupported      Reason = "UNSUPPORTED_INTENT"
	ReasonMissingSlots     Reason = "MISSING_SLOTS"
	ReasonInvalidSlotValue Reason = "INVALID_SLOT_VALUE"
	ReasonActionFailed     Reason = "ACTION_FAILED"
)

// TurnResult is the structured outcome of one dialogue turn. Turns never
// surface expected conditions as errors; only infrastructure faults (state
// store unreachable) leave Turn as an error.
type TurnResult struct {
	Success bool          `json:"success"`
	Intent  intent.Intent `json:"intent"`
	Stage   Stage         `json:"stage"`
	Reason  Reason        `json:"reason"`
	Message string        `json:"message"`
	Missing []string      `json:"missing,omitempty"`
	Data    interface{}   `json:"data,omitempty"`
}
