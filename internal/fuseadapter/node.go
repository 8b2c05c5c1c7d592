package fuseadapter

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/defiant-labs/ptpfs/internal/logging"
	"github.com/defiant-labs/ptpfs/ptptree"
)

// ptpNode is both the root and every non-root inode: a storage
// directory, a folder, or a file. Which one it is follows kind, not a
// separate Go type per role — the tree layer already draws that
// distinction (ptptree.NodeKind) and this adapter just reads it.
type ptpNode struct {
	fs.Inode

	tree   *ptptree.Tree
	key    ptptree.NodeKey
	kind   ptptree.NodeKind
	opts   Options
	logger *logging.Logger
}

var (
	_ fs.NodeLookuper  = (*ptpNode)(nil)
	_ fs.NodeReaddirer = (*ptpNode)(nil)
	_ fs.NodeGetattrer = (*ptpNode)(nil)
	_ fs.NodeOpener    = (*ptpNode)(nil)
	_ fs.NodeCreater   = (*ptpNode)(nil)
	_ fs.NodeMkdirer   = (*ptpNode)(nil)
	_ fs.NodeUnlinker  = (*ptpNode)(nil)
	_ fs.NodeRmdirer   = (*ptpNode)(nil)
	_ fs.NodeStatfser  = (*ptpNode)(nil)
)

func (n *ptpNode) child(treeNode *ptptree.Node) *ptpNode {
	return &ptpNode{tree: n.tree, key: treeNode.Key, kind: treeNode.Kind, opts: n.opts, logger: n.logger}
}

func stableAttr(kind ptptree.NodeKind, key ptptree.NodeKey) fs.StableAttr {
	mode := uint32(fuse.S_IFREG)
	if kind != ptptree.File {
		mode = fuse.S_IFDIR
	}
	return fs.StableAttr{
		Mode: mode,
		Ino:  uint64(key.StorageID)<<32 | uint64(key.Handle),
	}
}

// applyAttr fills attr for treeNode, fetching ObjectInfo for a file's
// size and write-protection bit. A failed ObjectInfo fetch leaves size
// 0 rather than failing the whole call — matching the tree's own
// "drop, don't fail" posture for per-object lookups (§4.6).
func (n *ptpNode) applyAttr(ctx context.Context, treeNode *ptptree.Node, attr *fuse.Attr) {
	attr.Uid = n.opts.UID
	attr.Gid = n.opts.GID
	if treeNode.Kind != ptptree.File {
		attr.Mode = fuse.S_IFDIR | 0755
		return
	}
	attr.Mode = fuse.S_IFREG | 0644
	info, err := n.tree.ObjectInfo(ctx, treeNode)
	if err != nil {
		return
	}
	attr.Size = uint64(info.CompressedSize)
	if info.ProtectionStatus != 0 {
		attr.Mode = fuse.S_IFREG | 0444
	}
}

func (n *ptpNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	children, err := n.tree.ListDir(ctx, n.key)
	if err != nil {
		n.logger.WithOperation("Lookup").WithError(err).Warn("list directory failed")
		return nil, errnoFor(err)
	}
	for _, c := range children {
		if c.Filename != name {
			continue
		}
		child := n.child(c)
		child.applyAttr(ctx, c, &out.Attr)
		return n.NewInode(ctx, child, stableAttr(c.Kind, c.Key)), 0
	}
	return nil, syscall.ENOENT
}

func (n *ptpNode) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	children, err := n.tree.ListDir(ctx, n.key)
	if err != nil {
		n.logger.WithOperation("Readdir").WithError(err).Warn("list directory failed")
		return nil, errnoFor(err)
	}
	entries := make([]fuse.DirEntry, 0, len(children))
	for _, c := range children {
		mode := uint32(fuse.S_IFREG)
		if c.Kind != ptptree.File {
			mode = fuse.S_IFDIR
		}
		entries = append(entries, fuse.DirEntry{Name: c.Filename, Mode: mode, Ino: stableAttr(c.Kind, c.Key).Ino})
	}
	return fs.NewListDirStream(entries), 0
}

func (n *ptpNode) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	treeNode, ok := n.tree.Get(n.key)
	if !ok {
		treeNode = &ptptree.Node{Kind: n.kind, Key: n.key}
	}
	n.applyAttr(ctx, treeNode, &out.Attr)
	return 0
}

// Open rejects O_RDWR outright (§6.5), serves a read-only open with a
// full, eager download into a BlockList, and a write-only open with an
// empty buffered handle flushed back on Flush/Release.
func (n *ptpNode) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if n.kind != ptptree.File {
		return nil, 0, syscall.EISDIR
	}
	if flags&syscall.O_ACCMODE == syscall.O_RDWR {
		return nil, 0, syscall.EFAULT
	}

	treeNode, ok := n.tree.Get(n.key)
	if !ok {
		return nil, 0, syscall.ENOENT
	}

	if flags&syscall.O_ACCMODE == syscall.O_WRONLY {
		return newWriteHandle(n.tree, treeNode), fuse.FOPEN_DIRECT_IO, 0
	}

	info, err := n.tree.ObjectInfo(ctx, treeNode)
	if err != nil {
		n.logger.WithOperation("Open").WithError(err).Warn("object info failed")
		return nil, 0, errnoFor(err)
	}
	blocks, err := n.tree.Download(ctx, treeNode, int64(info.CompressedSize))
	if err != nil {
		n.logger.WithOperation("Open").WithError(err).Warn("download failed")
		return nil, 0, errnoFor(err)
	}
	return newReadHandle(blocks), fuse.FOPEN_DIRECT_IO, 0
}

func (n *ptpNode) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	treeNode, err := n.tree.Create(ctx, n.key, name, 0)
	if err != nil {
		return nil, nil, 0, errnoFor(err)
	}
	child := n.child(treeNode)
	child.applyAttr(ctx, treeNode, &out.Attr)
	inode := n.NewInode(ctx, child, stableAttr(treeNode.Kind, treeNode.Key))
	return inode, newWriteHandle(n.tree, treeNode), fuse.FOPEN_DIRECT_IO, 0
}

func (n *ptpNode) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	treeNode, err := n.tree.Mkdir(ctx, n.key, name)
	if err != nil {
		return nil, errnoFor(err)
	}
	child := n.child(treeNode)
	child.applyAttr(ctx, treeNode, &out.Attr)
	return n.NewInode(ctx, child, stableAttr(treeNode.Kind, treeNode.Key)), 0
}

// Unlink and Rmdir both resolve to the same DeleteObject call: devices
// treat folders and files identically on delete (§6.5, verbatim).
func (n *ptpNode) Unlink(ctx context.Context, name string) syscall.Errno {
	return n.remove(ctx, name)
}

func (n *ptpNode) Rmdir(ctx context.Context, name string) syscall.Errno {
	return n.remove(ctx, name)
}

func (n *ptpNode) remove(ctx context.Context, name string) syscall.Errno {
	children, err := n.tree.ListDir(ctx, n.key)
	if err != nil {
		return errnoFor(err)
	}
	for _, c := range children {
		if c.Filename != name {
			continue
		}
		if err := n.tree.Delete(ctx, c); err != nil {
			return errnoFor(err)
		}
		return 0
	}
	return syscall.ENOENT
}

func (n *ptpNode) Statfs(ctx context.Context, out *fuse.StatfsOut) syscall.Errno {
	stat, err := n.tree.StatFS(ctx)
	if err != nil {
		return errnoFor(err)
	}
	const blockSize = 1024
	out.Bsize = blockSize
	out.Frsize = blockSize
	out.Blocks = stat.TotalBytes / blockSize
	out.Bfree = stat.FreeBytes / blockSize
	out.Bavail = out.Bfree
	return 0
}
