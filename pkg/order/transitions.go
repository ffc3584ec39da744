package order

import (
	"fmt"

	"github.com/marmos91/fixlink/internal/protocol/fix"
)

// transition is the outcome of one cell of the status table.
type transition int

const (
	// transitIgnore: the event is legal but produces no status change
	// (e.g. any report on a finished order).
	transitIgnore transition = iota
	// transitApply: move to the status carried by the message.
	transitApply
	// transitReject: the transition is a state-machine violation.
	transitReject
)

// anyStatus is the table's default-row / default-cell key.
const anyStatus = fix.OrdStatus("*")

type statusRow map[fix.OrdStatus]transition

func (r statusRow) lookup(s fix.OrdStatus) transition {
	if t, ok := r[s]; ok {
		return t
	}
	return r[anyStatus]
}

// execReportTable maps current status -> (reported status -> outcome) for
// ExecutionReport messages with ExecType other than REPLACED.
var execReportTable = map[fix.OrdStatus]statusRow{
	fix.StatusCreated: {
		fix.StatusPendingNew: transitApply,
		fix.StatusRejected:   transitApply,
		anyStatus:            transitReject,
	},
	fix.StatusPendingNew: {
		fix.StatusRejected:        transitApply,
		fix.StatusNew:             transitApply,
		fix.StatusFilled:          transitApply,
		fix.StatusPartiallyFilled: transitApply,
		fix.StatusCanceled:        transitApply,
		fix.StatusSuspended:       transitApply,
		anyStatus:                 transitReject,
	},
	fix.StatusNew: {
		fix.StatusNew:                transitIgnore,
		fix.StatusPendingNew:         transitReject,
		fix.StatusCreated:            transitReject,
		fix.StatusAcceptedForBidding: transitReject,
		anyStatus:                    transitApply,
	},
	fix.StatusFilled:   {anyStatus: transitIgnore},
	fix.StatusCanceled: {anyStatus: transitIgnore},
	fix.StatusRejected: {anyStatus: transitIgnore},
	fix.StatusExpired:  {anyStatus: transitIgnore},
	fix.StatusSuspended: {
		fix.StatusNew:             transitApply,
		fix.StatusPartiallyFilled: transitApply,
		fix.StatusCanceled:        transitApply,
		fix.StatusSuspended:       transitIgnore,
		anyStatus:                 transitReject,
	},
	fix.StatusPartiallyFilled: {
		fix.StatusFilled:          transitApply,
		fix.StatusPartiallyFilled: transitApply,
		fix.StatusPendingReplace:  transitApply,
		fix.StatusPendingCancel:   transitApply,
		fix.StatusCanceled:        transitApply,
		fix.StatusExpired:         transitApply,
		fix.StatusSuspended:       transitApply,
		fix.StatusStopped:         transitApply,
		anyStatus:                 transitReject,
	},
	fix.StatusPendingCancel: {
		fix.StatusCanceled: transitApply,
		fix.StatusCreated:  transitReject,
		anyStatus:          transitIgnore,
	},
	// StatusPendingReplace is handled separately: the outcome depends on
	// the report's ExecType, see pendingReplaceRow.
}

// pendingReplaceRow resolves reports arriving while a replace is pending.
// Only ExecType=REPLACED confirms the amendment; everything else (fills
// under the original clord id, restatements) waits.
func pendingReplaceRow(execType fix.ExecType) statusRow {
	if execType == fix.ExecReplaced {
		return statusRow{
			fix.StatusNew:             transitApply,
			fix.StatusPartiallyFilled: transitApply,
			fix.StatusFilled:          transitApply,
			fix.StatusCanceled:        transitApply,
			anyStatus:                 transitReject,
		}
	}
	return statusRow{
		fix.StatusCreated:            transitReject,
		fix.StatusAcceptedForBidding: transitReject,
		anyStatus:                    transitIgnore,
	}
}

// cancelRejectRow applies to OrderCancelReject: the reject restores whatever
// status it carries, except the never-valid ones.
var cancelRejectRow = statusRow{
	fix.StatusCreated:            transitReject,
	fix.StatusAcceptedForBidding: transitReject,
	anyStatus:                    transitApply,
}

// requestTable gates outgoing cancel/replace requests by current status.
var requestTable = map[fix.OrdStatus]transition{
	fix.StatusPendingCancel:   transitIgnore,
	fix.StatusPendingReplace:  transitIgnore,
	fix.StatusNew:             transitApply,
	fix.StatusSuspended:       transitApply,
	fix.StatusPartiallyFilled: transitApply,
}

// ChangeStatus is the FIX order state transition function.
//
// status is the order's current status; msgType the incoming (or requested)
// message kind: ExecutionReport '8', OrderCancelReject '9',
// OrderCancelRequest 'F' or OrderCancelReplaceRequest 'G'; execType the
// report's ExecType (ExecNone for non-reports); msgStatus the status carried
// by the message (or the status a request aims for).
//
// It returns the next status when the transition applies, the empty status
// when the event is legal but changes nothing, and ErrInvalidTransition when
// the state table forbids it.
func ChangeStatus(status fix.OrdStatus, msgType fix.MsgType, execType fix.ExecType, msgStatus fix.OrdStatus) (fix.OrdStatus, error) {
	var t transition

	switch msgType {
	case fix.MsgTypeExecutionReport:
		if status == fix.StatusPendingReplace {
			t = pendingReplaceRow(execType).lookup(msgStatus)
		} else if row, ok := execReportTable[status]; ok {
			t = row.lookup(msgStatus)
		} else {
			t = transitReject
		}
	case fix.MsgTypeOrderCancelReject:
		t = cancelRejectRow.lookup(msgStatus)
	case fix.MsgTypeOrderCancelRequest, fix.MsgTypeOrderCancelReplaceRequest:
		var ok bool
		if t, ok = requestTable[status]; !ok {
			t = transitReject
		}
	default:
		return "", fmt.Errorf("%w: no status transition table for msg type %q", ErrInvalidTransition, msgType)
	}

	switch t {
	case transitApply:
		return msgStatus, nil
	case transitIgnore:
		return "", nil
	default:
		return "", ErrInvalidTransition
	}
}
