package ptperr

import "fmt"

// PTP response codes the engine must classify (PIMA 15740:2000 §6, plus
// the EK vendor extension's reuse of the standard code space).
const (
	RC_OK                    uint16 = 0x2001
	RC_GeneralError          uint16 = 0x2002
	RC_SessionNotOpen        uint16 = 0x2003
	RC_InvalidTransactionID  uint16 = 0x2004
	RC_OperationNotSupported uint16 = 0x2005
	RC_ParameterNotSupported uint16 = 0x2006
	RC_IncompleteTransfer    uint16 = 0x2007
	RC_InvalidStorageID      uint16 = 0x2008
	RC_InvalidObjectHandle   uint16 = 0x2009
	RC_StoreFull             uint16 = 0x200c
	RC_ObjectWriteProtected  uint16 = 0x200d
	RC_AccessDenied          uint16 = 0x200f
	RC_StoreNotAvailable     uint16 = 0x2013
	RC_DeviceBusy            uint16 = 0x2019
	RC_InvalidParameter      uint16 = 0x201d
	RC_SessionAlreadyOpen    uint16 = 0x201e
)

var responseCodeNames = map[uint16]string{
	RC_OK:                    "OK",
	RC_GeneralError:          "GeneralError",
	RC_SessionNotOpen:        "SessionNotOpen",
	RC_InvalidTransactionID:  "InvalidTransactionID",
	RC_OperationNotSupported: "OperationNotSupported",
	RC_ParameterNotSupported: "ParameterNotSupported",
	RC_IncompleteTransfer:    "IncompleteTransfer",
	RC_InvalidStorageID:      "InvalidStorageID",
	RC_InvalidObjectHandle:   "InvalidObjectHandle",
	RC_StoreFull:             "StoreFull",
	RC_ObjectWriteProtected:  "ObjectWriteProtected",
	RC_AccessDenied:          "AccessDenied",
	RC_StoreNotAvailable:     "StoreNotAvailable",
	RC_DeviceBusy:            "DeviceBusy",
	RC_InvalidParameter:      "InvalidParameter",
	RC_SessionAlreadyOpen:    "SessionAlreadyOpen",
}

// ResponseCodeString renders a response code as "Name (0x2009)" for CLI
// and log output, falling back to "unknown response 0x...." for codes
// the core does not name.
func ResponseCodeString(code uint16) string {
	if name, ok := responseCodeNames[code]; ok {
		return fmt.Sprintf("%s (0x%04x)", name, code)
	}
	return fmt.Sprintf("unknown response 0x%04x", code)
}

// POSIXErrno maps a PTP response code to the errno the filesystem
// adapter should surface to the kernel. Unmapped codes default to EIO.
func POSIXErrno(code uint16) int {
	switch code {
	case RC_ObjectWriteProtected, RC_AccessDenied:
		return eperm
	case RC_StoreFull:
		return enospc
	case RC_InvalidStorageID, RC_InvalidObjectHandle, RC_InvalidParameter:
		return einval
	case RC_StoreNotAvailable:
		return enodev
	case RC_DeviceBusy:
		return ebusy
	default:
		return eio
	}
}

// errno values spelled out so this package never imports syscall
// (kept transport-agnostic; internal/fuseadapter converts to
// syscall.Errno at its own boundary).
const (
	eperm  = 1
	eio    = 5
	enodev = 19
	einval = 22
	enospc = 28
	ebusy  = 16
)
