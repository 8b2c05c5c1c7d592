// Package ptperr provides the structured error taxonomy shared by every
// layer of the PTP engine.
package ptperr

import (
	"errors"
	"fmt"
)

// Code represents a high-level error category.
type Code string

const (
	CodeTransportIO           Code = "transport io error"
	CodeTransportTimeout      Code = "transport timeout"
	CodeTransportStalled      Code = "transport stalled"
	CodeTransportDisconnected Code = "transport disconnected"

	CodeBadHeader       Code = "bad container header"
	CodeLengthOverflow  Code = "container length overflow"
	CodeUnexpectedType  Code = "unexpected container type"
	CodeTxIDMismatch    Code = "transaction id mismatch"
	CodeCodeMismatch    Code = "data container code mismatch"

	CodeTruncated Code = "truncated data"
	CodeBadString Code = "malformed string"

	CodeResponse          Code = "non-OK response"
	CodeNotSupported      Code = "operation not supported"
	CodeCacheInconsistent Code = "cache inconsistent"

	CodeUnsupportedDataType Code = "unsupported property data type"
	CodeByteOrderUnsupported Code = "byte order not implemented"

	CodeInvalidParameters Code = "invalid parameters"
	CodeSessionNotOpen    Code = "session not open"
	CodeSessionBroken     Code = "session broken"
)

// Error is a structured error with context, mirroring the shape of a
// typical wire-protocol failure: what operation, which session, which
// transaction, which category, and the peer response code if any.
type Error struct {
	Op            string // operation that failed, e.g. "GetObjectInfo"
	SessionID     uint32 // 0 if not applicable
	TransactionID uint32 // transaction id in flight, 0 if not applicable
	Code          Code
	ResponseCode  uint16 // peer response code, 0 if not a Response error
	Msg           string
	Inner         error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}

	switch {
	case e.Op != "" && e.ResponseCode != 0:
		return fmt.Sprintf("ptp: %s: %s (response=0x%04x)", e.Op, msg, e.ResponseCode)
	case e.Op != "" && e.TransactionID != 0:
		return fmt.Sprintf("ptp: %s: %s (tx=%d)", e.Op, msg, e.TransactionID)
	case e.Op != "":
		return fmt.Sprintf("ptp: %s: %s", e.Op, msg)
	default:
		return fmt.Sprintf("ptp: %s", msg)
	}
}

func (e *Error) Unwrap() error {
	return e.Inner
}

func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	if te.Code != "" && te.Code != e.Code {
		return false
	}
	if te.ResponseCode != 0 && te.ResponseCode != e.ResponseCode {
		return false
	}
	return true
}

// New creates a new structured error.
func New(op string, code Code, msg string) *Error {
	return &Error{Op: op, Code: code, Msg: msg}
}

// NewResponse creates an error representing a non-OK PTP response.
func NewResponse(op string, txID uint32, responseCode uint16) *Error {
	return &Error{
		Op:            op,
		TransactionID: txID,
		Code:          CodeResponse,
		ResponseCode:  responseCode,
		Msg:           ResponseCodeString(responseCode),
	}
}

// Wrap wraps an arbitrary error with operation context, preserving an
// existing *Error's category where possible.
func Wrap(op string, inner error) *Error {
	if inner == nil {
		return nil
	}
	var e *Error
	if errors.As(inner, &e) {
		return &Error{
			Op:            op,
			SessionID:     e.SessionID,
			TransactionID: e.TransactionID,
			Code:          e.Code,
			ResponseCode:  e.ResponseCode,
			Msg:           e.Msg,
			Inner:         e.Inner,
		}
	}
	return &Error{Op: op, Code: CodeTransportIO, Msg: inner.Error(), Inner: inner}
}

// IsCode reports whether err (or something it wraps) carries the given code.
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsResponse reports whether err represents a specific PTP response code.
func IsResponse(err error, responseCode uint16) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == CodeResponse && e.ResponseCode == responseCode
	}
	return false
}
