package fuseadapter

import (
	"context"
	"testing"

	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/stretchr/testify/assert"

	"github.com/defiant-labs/ptpfs/internal/ptpwire"
	"github.com/defiant-labs/ptpfs/ptptree"
)

func TestStableAttr_DiffersByKindAndKey(t *testing.T) {
	dir := stableAttr(ptptree.Dir, ptptree.NodeKey{StorageID: 1, Handle: 2})
	file := stableAttr(ptptree.File, ptptree.NodeKey{StorageID: 1, Handle: 3})

	assert.Equal(t, uint32(fuse.S_IFDIR), dir.Mode)
	assert.Equal(t, uint32(fuse.S_IFREG), file.Mode)
	assert.NotEqual(t, dir.Ino, file.Ino)
}

func TestApplyAttr_DirectoryGetsDirMode(t *testing.T) {
	s := newStubSession()
	tree := ptptree.NewTree(s, ptptree.CacheInconsistentOnAmbiguity)
	n := &ptpNode{tree: tree, opts: Options{UID: 1000, GID: 1000}}

	var attr fuse.Attr
	n.applyAttr(context.Background(), &ptptree.Node{Kind: ptptree.Dir}, &attr)

	assert.Equal(t, uint32(fuse.S_IFDIR|0755), attr.Mode)
	assert.Equal(t, uint32(1000), attr.Uid)
	assert.Equal(t, uint32(1000), attr.Gid)
}

func TestApplyAttr_FileUsesObjectInfoSizeAndProtection(t *testing.T) {
	s := newStubSession()
	s.objects[5] = ptpwire.ObjectInfo{CompressedSize: 4096}
	tree := ptptree.NewTree(s, ptptree.CacheInconsistentOnAmbiguity)
	n := &ptpNode{tree: tree, opts: Options{UID: 1000, GID: 1000}}

	var attr fuse.Attr
	n.applyAttr(context.Background(), &ptptree.Node{Kind: ptptree.File, Key: ptptree.NodeKey{Handle: 5}}, &attr)

	assert.Equal(t, uint32(fuse.S_IFREG|0644), attr.Mode)
	assert.EqualValues(t, 4096, attr.Size)
}

func TestApplyAttr_WriteProtectedFileIsReadOnlyMode(t *testing.T) {
	s := newStubSession()
	s.objects[6] = ptpwire.ObjectInfo{CompressedSize: 10, ProtectionStatus: 0x0001}
	tree := ptptree.NewTree(s, ptptree.CacheInconsistentOnAmbiguity)
	n := &ptpNode{tree: tree, opts: Options{}}

	var attr fuse.Attr
	n.applyAttr(context.Background(), &ptptree.Node{Kind: ptptree.File, Key: ptptree.NodeKey{Handle: 6}}, &attr)

	assert.Equal(t, uint32(fuse.S_IFREG|0444), attr.Mode)
}

func TestApplyAttr_MissingObjectInfoLeavesSizeZero(t *testing.T) {
	s := newStubSession()
	tree := ptptree.NewTree(s, ptptree.CacheInconsistentOnAmbiguity)
	n := &ptpNode{tree: tree}

	var attr fuse.Attr
	n.applyAttr(context.Background(), &ptptree.Node{Kind: ptptree.File, Key: ptptree.NodeKey{Handle: 999}}, &attr)

	assert.EqualValues(t, 0, attr.Size)
	assert.Equal(t, uint32(fuse.S_IFREG|0644), attr.Mode)
}
