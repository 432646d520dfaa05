package delivery

import (
	"fmt"
	"strings"

	"gitlab.com/swifttrack/driver-app/internal/model"
)

// Event names used in transition errors.
const (
	EventMarkInTransit = "mark_in_transit"
	EventMarkDelivered = "mark_delivered"
	EventMarkFailed    = "mark_failed"
)

// IllegalTransition rejects an event not permitted from the package's
// current state. Terminal packages reject every event, including a replay of
// the transition that made them terminal.
type IllegalTransition struct {
	From  model.PackageStatus
	Event string
}

func (e *IllegalTransition) Error() string {
	return fmt.Sprintf("illegal transition: %s not permitted from %s", e.Event, e.From)
}

// ProofIncomplete rejects a delivery whose proof is missing required parts.
type ProofIncomplete struct {
	Missing []string
}

func (e *ProofIncomplete) Error() string {
	return "proof of delivery incomplete: missing " + strings.Join(e.Missing, ", ")
}

// FailureReasonInvalid rejects a failure record with an unknown reason or a
// missing required note.
type FailureReasonInvalid struct {
	ReasonID    string
	MissingNote bool
}

func (e *FailureReasonInvalid) Error() string {
	if e.MissingNote {
		return fmt.Sprintf("failure reason %s requires a note", e.ReasonID)
	}
	return fmt.Sprintf("unknown failure reason %q", e.ReasonID)
}
