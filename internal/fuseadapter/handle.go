package fuseadapter

import (
	"context"
	"io"
	"sync"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/defiant-labs/ptpfs/internal/ptptxn"
	"github.com/defiant-labs/ptpfs/ptptree"
)

// readHandle serves page-at-a-time reads out of a fully downloaded
// BlockList (§6.5: "read... page-at-a-time via GetObject into the FUSE
// read buffer" — the download itself happens once, at Open).
type readHandle struct {
	blocks *ptptxn.BlockList
}

func newReadHandle(blocks *ptptxn.BlockList) *readHandle {
	return &readHandle{blocks: blocks}
}

var (
	_ fs.FileReader   = (*readHandle)(nil)
	_ fs.FileReleaser = (*readHandle)(nil)
)

func (h *readHandle) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	n, err := h.blocks.ReadAt(dest, off)
	if err != nil && err != io.EOF {
		return nil, syscall.EIO
	}
	return fuse.ReadResultData(dest[:n]), 0
}

func (h *readHandle) Release(ctx context.Context) syscall.Errno {
	h.blocks.Release()
	return 0
}

// writeHandle buffers a file's full content client-side and writes it
// back wholesale on Flush/Release (§6.5: "write (sequential, buffered
// until Release/close)"). Flush then Release both fire on a single
// close(); dirty tracks whether a write-back is still owed so the
// second call is a no-op rather than a duplicate upload.
type writeHandle struct {
	mu    sync.Mutex
	tree  *ptptree.Tree
	node  *ptptree.Node
	buf   []byte
	dirty bool
}

func newWriteHandle(tree *ptptree.Tree, node *ptptree.Node) *writeHandle {
	return &writeHandle{tree: tree, node: node}
}

var (
	_ fs.FileWriter   = (*writeHandle)(nil)
	_ fs.FileFlusher  = (*writeHandle)(nil)
	_ fs.FileReleaser = (*writeHandle)(nil)
)

func (h *writeHandle) Write(ctx context.Context, data []byte, off int64) (uint32, syscall.Errno) {
	h.mu.Lock()
	defer h.mu.Unlock()

	end := int(off) + len(data)
	if end > len(h.buf) {
		grown := make([]byte, end)
		copy(grown, h.buf)
		h.buf = grown
	}
	copy(h.buf[off:], data)
	h.dirty = true
	return uint32(len(data)), 0
}

func (h *writeHandle) Flush(ctx context.Context) syscall.Errno {
	return h.writeBack(ctx)
}

func (h *writeHandle) Release(ctx context.Context) syscall.Errno {
	return h.writeBack(ctx)
}

func (h *writeHandle) writeBack(ctx context.Context) syscall.Errno {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.dirty {
		return 0
	}
	newNode, err := h.tree.WriteBack(ctx, h.node, h.buf)
	if err != nil {
		return errnoFor(err)
	}
	h.node = newNode
	h.dirty = false
	return 0
}
