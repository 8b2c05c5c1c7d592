package fuseadapter

import (
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/defiant-labs/ptpfs/ptperr"
)

func TestErrnoFor_NilIsZero(t *testing.T) {
	assert.Equal(t, syscall.Errno(0), errnoFor(nil))
}

func TestErrnoFor_ResponseCodeUsesPOSIXErrnoTable(t *testing.T) {
	err := ptperr.NewResponse("DeleteObject", 1, ptperr.RC_ObjectWriteProtected)
	assert.Equal(t, syscall.EPERM, errnoFor(err))

	err = ptperr.NewResponse("SendObject", 1, ptperr.RC_StoreFull)
	assert.Equal(t, syscall.ENOSPC, errnoFor(err))
}

func TestErrnoFor_NotSupportedMapsToENOSYS(t *testing.T) {
	err := ptperr.New("GetObjectPropsSupported", ptperr.CodeNotSupported, "vendor op unsupported")
	assert.Equal(t, syscall.ENOSYS, errnoFor(err))
}

func TestErrnoFor_TransportAndCacheErrorsFallBackToEIO(t *testing.T) {
	assert.Equal(t, syscall.EIO, errnoFor(ptperr.New("GetObject", ptperr.CodeTransportIO, "short read")))
	assert.Equal(t, syscall.EIO, errnoFor(ptperr.New("ptptree.reconcileHandle", ptperr.CodeCacheInconsistent, "ambiguous")))
}

func TestErrnoFor_ArbitraryErrorFallsBackToEIO(t *testing.T) {
	assert.Equal(t, syscall.EIO, errnoFor(errors.New("boom")))
}
