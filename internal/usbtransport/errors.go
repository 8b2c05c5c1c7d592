package usbtransport

import "github.com/defiant-labs/ptpfs/ptperr"

// newIOError, newTimeoutError, newStalledError, and newDisconnectedError
// wrap a transport-layer failure in the shared *ptperr.Error taxonomy so
// callers above this package never need to type-switch on a
// usbtransport-local error type.

func newIOError(op string, inner error) error {
	return &ptperr.Error{Op: op, Code: ptperr.CodeTransportIO, Msg: "usb i/o error", Inner: inner}
}

func newTimeoutError(op string, inner error) error {
	return &ptperr.Error{Op: op, Code: ptperr.CodeTransportTimeout, Msg: "usb operation timed out", Inner: inner}
}

func newStalledError(op string, inner error) error {
	return &ptperr.Error{Op: op, Code: ptperr.CodeTransportStalled, Msg: "usb endpoint stalled", Inner: inner}
}

func newDisconnectedError(op string, inner error) error {
	return &ptperr.Error{Op: op, Code: ptperr.CodeTransportDisconnected, Msg: "usb device disconnected", Inner: inner}
}
