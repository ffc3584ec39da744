package session

import "errors"

var (
	// ErrNotConnected is returned by Send before the network connection is
	// up or after it went down.
	ErrNotConnected = errors.New("connection must be established before sending any FIX message")

	// ErrFirstMessageNotLogon is returned when the first message sent
	// after connecting is neither Logon nor Logout.
	ErrFirstMessageNotLogon = errors.New("you must send first Logon(35=A)/Logout() message immediately after connection")

	// ErrWaitingLogon is returned when the initiator tries to send before
	// the peer answered its Logon.
	ErrWaitingLogon = errors.New("initiator is waiting for Logon() response, you must not send any additional messages before")

	// ErrResendInProgress is returned for application sends while a
	// sequence gap is being replayed.
	ErrResendInProgress = errors.New("resend in progress, application sends are paused")

	// ErrSessionRejected is returned by NewInitiator when
	// Engine.ValidateSession refuses the comp-id pair.
	ErrSessionRejected = errors.New("logon rejected for invalid session")
)
