package order

import "errors"

var (
	// ErrInvalidTransition is returned for order-status transitions the
	// FIX state table forbids outright.
	ErrInvalidTransition = errors.New("fix order state transition error")

	// ErrClOrdIDMismatch is returned when an execution report references
	// neither the current nor the original client order id.
	ErrClOrdIDMismatch = errors.New("clord_id mismatch")

	// ErrWrongMsgType is returned when a report processor is handed the
	// wrong message type.
	ErrWrongMsgType = errors.New("incorrect message type")

	// ErrNotAllowed is returned when a cancel or replace request is not
	// legal from the order's current state.
	ErrNotAllowed = errors.New("order state does not allow this request")

	// ErrNoChange is returned by ReplaceReq when neither price nor
	// quantity would change.
	ErrNoChange = errors.New("no price / qty change in replace request")
)
