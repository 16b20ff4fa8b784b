package mongodb

import (
	"fmt"
)

// -----------------------------------------------
// swap status change graph
//
// Pending -> |- Confirmed -> |- Completed
//            |               |- Failed
//            |               |- Expired
//            |- Canceled
//            |- Failed
//            |- Expired
//
// {Completed, Failed, Expired, Canceled} are terminal,
// no transition leaves a terminal state.
// -----------------------------------------------

// SwapStatus swap status
type SwapStatus uint16

// swap status values
const (
	SwapPending   SwapStatus = iota // 0
	SwapConfirmed                   // 1
	SwapCompleted                   // 2
	SwapFailed                      // 3
	SwapExpired                     // 4
	SwapCanceled                    // 5
)

// IsTerminal swap life ended
func (status SwapStatus) IsTerminal() bool {
	switch status {
	case SwapCompleted, SwapFailed, SwapExpired, SwapCanceled:
		return true
	default:
		return false
	}
}

// CanTransitionTo status change is allowed by the status graph
func (status SwapStatus) CanTransitionTo(to SwapStatus) bool {
	if status.IsTerminal() {
		return false
	}
	switch to {
	case SwapConfirmed:
		return status == SwapPending
	case SwapCompleted:
		return status == SwapConfirmed
	case SwapCanceled:
		return status == SwapPending
	case SwapFailed, SwapExpired:
		return true
	default:
		return false
	}
}

// allowedSources the non-terminal statuses a transition may start from
func allowedSources(to SwapStatus) []SwapStatus {
	sources := make([]SwapStatus, 0, 2)
	for _, from := range []SwapStatus{SwapPending, SwapConfirmed} {
		if from.CanTransitionTo(to) {
			sources = append(sources, from)
		}
	}
	return sources
}

func (status SwapStatus) String() string {
	switch status {
	case SwapPending:
		return "Pending"
	case SwapConfirmed:
		return "Confirmed"
	case SwapCompleted:
		return "Completed"
	case SwapFailed:
		return "Failed"
	case SwapExpired:
		return "Expired"
	case SwapCanceled:
		return "Canceled"
	default:
		return fmt.Sprintf("unknown swap status %d", status)
	}
}
