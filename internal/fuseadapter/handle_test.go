package fuseadapter

import (
	"context"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defiant-labs/ptpfs/internal/ptptxn"
	"github.com/defiant-labs/ptpfs/internal/ptpwire"
	"github.com/defiant-labs/ptpfs/ptperr"
	"github.com/defiant-labs/ptpfs/ptptree"
)

// stubSession is a minimal ptptree.Session double exercising only the
// write-back path: DeleteObject + SendObjectInfo + SendObject, plus
// whatever ListDir needs to reconcile a non-zero assigned handle.
type stubSession struct {
	deleted       []uint32
	sentInfo      ptpwire.ObjectInfo
	sentBytes     []byte
	assignHandle  uint32
	objects       map[uint32]ptpwire.ObjectInfo
	handlesByDir  map[uint32][]uint32
}

func newStubSession() *stubSession {
	return &stubSession{
		objects:      make(map[uint32]ptpwire.ObjectInfo),
		handlesByDir: make(map[uint32][]uint32),
		assignHandle: 0x42,
	}
}

func (s *stubSession) GetStorageIDs(ctx context.Context) ([]uint32, error) { return []uint32{1}, nil }
func (s *stubSession) GetStorageInfo(ctx context.Context, storageID uint32) (ptpwire.StorageInfo, error) {
	return ptpwire.StorageInfo{}, nil
}
func (s *stubSession) GetObjectHandles(ctx context.Context, storageID uint32, formatFilter uint16, parent uint32) ([]uint32, error) {
	return s.handlesByDir[parent], nil
}
func (s *stubSession) GetObjectInfo(ctx context.Context, handle uint32) (ptpwire.ObjectInfo, error) {
	info, ok := s.objects[handle]
	if !ok {
		return ptpwire.ObjectInfo{}, ptperr.NewResponse("GetObjectInfo", 0, ptperr.RC_InvalidObjectHandle)
	}
	return info, nil
}
func (s *stubSession) GetObject(ctx context.Context, handle uint32, expectedSize int64) (*ptptxn.BlockList, error) {
	return nil, nil
}
func (s *stubSession) SendObjectInfo(ctx context.Context, storageID, parent uint32, info ptpwire.ObjectInfo) (uint32, uint32, uint32, error) {
	s.sentInfo = info
	return storageID, parent, s.assignHandle, nil
}
func (s *stubSession) SendObject(ctx context.Context, payload []byte, size int64) error {
	s.sentBytes = append([]byte(nil), payload...)
	return nil
}
func (s *stubSession) DeleteObject(ctx context.Context, handle uint32, format uint16) error {
	s.deleted = append(s.deleted, handle)
	return nil
}

var _ ptptree.Session = (*stubSession)(nil)

func TestWriteHandle_BuffersOutOfOrderWrites(t *testing.T) {
	s := newStubSession()
	tree := ptptree.NewTree(s, ptptree.CacheInconsistentOnAmbiguity)
	s.objects[5] = ptpwire.ObjectInfo{StorageID: 1, ParentObject: ptpwire.RootHandle, Filename: "notes.txt"}
	node := &ptptree.Node{Kind: ptptree.File, Key: ptptree.NodeKey{StorageID: 1, Handle: 5}, Parent: ptptree.NodeKey{StorageID: 1}, Filename: "notes.txt"}

	h := newWriteHandle(tree, node)
	n, errno := h.Write(context.Background(), []byte("world"), 5)
	require.Equal(t, syscall.Errno(0), errno)
	assert.Equal(t, uint32(5), n)

	n, errno = h.Write(context.Background(), []byte("hello"), 0)
	require.Equal(t, syscall.Errno(0), errno)
	assert.Equal(t, uint32(5), n)

	assert.Equal(t, "helloworld", string(h.buf))
}

func TestWriteHandle_FlushThenReleaseWritesBackOnce(t *testing.T) {
	s := newStubSession()
	tree := ptptree.NewTree(s, ptptree.CacheInconsistentOnAmbiguity)
	s.objects[5] = ptpwire.ObjectInfo{StorageID: 1, ParentObject: ptpwire.RootHandle, Filename: "notes.txt"}
	node := &ptptree.Node{Kind: ptptree.File, Key: ptptree.NodeKey{StorageID: 1, Handle: 5}, Parent: ptptree.NodeKey{StorageID: 1}, Filename: "notes.txt"}
	// list the root so the tree knows the parent storage WriteBack needs.
	_, err := tree.ListDir(context.Background(), ptptree.RootKey)
	require.NoError(t, err)

	h := newWriteHandle(tree, node)
	_, errno := h.Write(context.Background(), []byte("hello"), 0)
	require.Equal(t, syscall.Errno(0), errno)

	require.Equal(t, syscall.Errno(0), h.Flush(context.Background()))
	assert.Contains(t, s.deleted, uint32(5))
	assert.Equal(t, []byte("hello"), s.sentBytes)

	s.sentBytes = nil
	require.Equal(t, syscall.Errno(0), h.Release(context.Background()))
	assert.Nil(t, s.sentBytes, "Release after a clean Flush must not write back again")
}
