package fuseadapter

import (
	"errors"
	"syscall"

	"github.com/defiant-labs/ptpfs/ptperr"
)

// errnoFor maps a ptperr.Error (or arbitrary error) to the errno FUSE
// should surface to the kernel (§7: "FUSE maps PTP errors to POSIX...
// via ptperr.POSIXErrno"). A non-OK response reuses POSIXErrno's
// table and a not-supported error becomes ENOSYS; every other category
// (transport, protocol, codec, cache inconsistency) surfaces as EIO.
func errnoFor(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	var e *ptperr.Error
	if errors.As(err, &e) {
		switch e.Code {
		case ptperr.CodeResponse:
			return syscall.Errno(ptperr.POSIXErrno(e.ResponseCode))
		case ptperr.CodeNotSupported:
			return syscall.ENOSYS
		default:
			return syscall.EIO
		}
	}
	return syscall.EIO
}
