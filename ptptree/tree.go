package ptptree

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/defiant-labs/ptpfs/internal/ptptxn"
	"github.com/defiant-labs/ptpfs/internal/ptpwire"
	"github.com/defiant-labs/ptpfs/ptperr"
)

// Session is the subset of *ptpsession.Session the tree needs. Naming
// it as an interface (rather than importing ptpsession directly) keeps
// this package's tests independent of a real transport/engine stack —
// the same role teacher's Backend interface plays for its queue runner.
type Session interface {
	GetStorageIDs(ctx context.Context) ([]uint32, error)
	GetStorageInfo(ctx context.Context, storageID uint32) (ptpwire.StorageInfo, error)
	GetObjectHandles(ctx context.Context, storageID uint32, formatFilter uint16, parent uint32) ([]uint32, error)
	GetObjectInfo(ctx context.Context, handle uint32) (ptpwire.ObjectInfo, error)
	GetObject(ctx context.Context, handle uint32, expectedSize int64) (*ptptxn.BlockList, error)
	SendObjectInfo(ctx context.Context, storageID, parent uint32, info ptpwire.ObjectInfo) (respStorageID, respParent, handle uint32, err error)
	SendObject(ctx context.Context, payload []byte, size int64) error
	DeleteObject(ctx context.Context, handle uint32, format uint16) error
}

// ReconciliationPolicy selects how Create/Mkdir resolve a zero-handle
// SendObjectInfo response (§9 open question, never hard-wired).
type ReconciliationPolicy int

const (
	// CacheInconsistentOnAmbiguity reports an error when more than one
	// new handle appears after a zero-handle create.
	CacheInconsistentOnAmbiguity ReconciliationPolicy = iota
	// FirstNewHandle deterministically picks the lowest new handle,
	// matching the original source's "pick the first" behavior.
	FirstNewHandle
)

// Tree is the object tree / directory-listing cache over one open
// session. The zero value is not usable; construct with NewTree.
type Tree struct {
	session       Session
	arena         *Arena
	dirs          *dirCacheTable
	reconciliation ReconciliationPolicy
}

// NewTree constructs a Tree backed by session, seeded with an empty
// root.
func NewTree(session Session, reconciliation ReconciliationPolicy) *Tree {
	return &Tree{
		session:        session,
		arena:          NewArena(),
		dirs:           newDirCacheTable(),
		reconciliation: reconciliation,
	}
}

// Get returns the Node for key, if known.
func (t *Tree) Get(key NodeKey) (*Node, bool) {
	return t.arena.Get(key)
}

// ListDir returns dir's children, serving a cached listing if one
// exists (§3 lifecycle: "Handle lists cached per directory until
// mutation invalidates").
func (t *Tree) ListDir(ctx context.Context, dir NodeKey) ([]*Node, error) {
	if cache, ok := t.dirs.lookup(dir); ok {
		return t.resolveChildren(cache.Entries), nil
	}

	dirNode, ok := t.arena.Get(dir)
	if !ok {
		return nil, fmt.Errorf("ptptree: unknown directory %+v", dir)
	}

	var children []*Node
	var err error
	switch {
	case dir == RootKey:
		children, err = t.listStorages(ctx)
	case dirNode.Kind == StorageDir:
		children, err = t.listStorageObjects(ctx, dir)
	case dirNode.Kind == Dir:
		children, err = t.listFolderObjects(ctx, dir)
	default:
		return nil, fmt.Errorf("ptptree: %+v is not a directory", dir)
	}
	if err != nil {
		return nil, err
	}

	keys := make([]NodeKey, len(children))
	for i, c := range children {
		t.arena.Put(c)
		keys[i] = c.Key
	}
	t.dirs.store(dir, keys)
	return children, nil
}

func (t *Tree) resolveChildren(keys []NodeKey) []*Node {
	out := make([]*Node, 0, len(keys))
	for _, k := range keys {
		if n, ok := t.arena.Get(k); ok {
			out = append(out, n)
		}
	}
	return out
}

// listStorages populates the root's children: one StorageDir per
// attached (mounted) StorageID.
func (t *Tree) listStorages(ctx context.Context) ([]*Node, error) {
	ids, err := t.session.GetStorageIDs(ctx)
	if err != nil {
		return nil, err
	}

	var out []*Node
	for _, id := range ids {
		if !ptpwire.IsMounted(id) {
			continue
		}
		name := fmt.Sprintf("storage-%08x", id)
		if info, infoErr := t.session.GetStorageInfo(ctx, id); infoErr == nil && info.VolumeLabel != "" {
			name = info.VolumeLabel
		}
		out = append(out, &Node{
			Kind:     StorageDir,
			Key:      NodeKey{StorageID: id},
			Parent:   RootKey,
			Filename: name,
		})
	}
	return out, nil
}

// listStorageObjects lists a storage's root-of-storage objects. PTP
// devices are inconsistent about honoring parent=RootHandle for a
// storage-wide query, so the result is post-filtered to objects whose
// own StorageID matches and whose ParentObject marks them as
// root-of-storage: either the zero handle or RootHandle (§4.6,
// "device-dependent storage-wide list workaround, verbatim from
// spec").
func (t *Tree) listStorageObjects(ctx context.Context, dir NodeKey) ([]*Node, error) {
	handles, err := t.session.GetObjectHandles(ctx, dir.StorageID, 0, ptpwire.RootHandle)
	if err != nil {
		return nil, err
	}
	return t.fetchObjectNodes(ctx, dir, handles, func(info ptpwire.ObjectInfo) bool {
		return info.StorageID == dir.StorageID && (info.ParentObject == 0 || info.ParentObject == ptpwire.RootHandle)
	})
}

// listFolderObjects lists the direct children of a Dir node.
func (t *Tree) listFolderObjects(ctx context.Context, dir NodeKey) ([]*Node, error) {
	handles, err := t.session.GetObjectHandles(ctx, dir.StorageID, 0, dir.Handle)
	if err != nil {
		return nil, err
	}
	return t.fetchObjectNodes(ctx, dir, handles, func(info ptpwire.ObjectInfo) bool {
		return info.ParentObject == dir.Handle
	})
}

// fetchObjectNodes fetches ObjectInfo for each handle and builds a
// Node for those keep(info) accepts. A handle that fails to fetch (or
// is out of scope) is dropped rather than failing the whole listing
// (§4.6: "Post-filtering discards out-of-scope entries rather than
// rejecting the whole listing").
func (t *Tree) fetchObjectNodes(ctx context.Context, dir NodeKey, handles []uint32, keep func(ptpwire.ObjectInfo) bool) ([]*Node, error) {
	var out []*Node
	for _, h := range handles {
		info, err := t.session.GetObjectInfo(ctx, h)
		if err != nil {
			continue
		}
		if !keep(info) {
			continue
		}
		kind := File
		if info.IsDirectory() {
			kind = Dir
		}
		out = append(out, &Node{
			Kind:     kind,
			Key:      NodeKey{StorageID: dir.StorageID, Handle: h},
			Parent:   dir,
			Filename: info.Filename,
		})
	}
	return out, nil
}

// Invalidate drops dir's cached listing. Called after any successful
// create/send/delete in that directory.
func (t *Tree) Invalidate(dir NodeKey) {
	t.dirs.invalidate(dir)
}

// parentObjectHandle returns the parent_object value to use when
// creating an object directly under parent: RootHandle for a
// StorageDir, or the folder's own handle for a Dir.
func (t *Tree) parentObjectHandle(parent NodeKey) (uint32, error) {
	node, ok := t.arena.Get(parent)
	if !ok {
		return 0, fmt.Errorf("ptptree: unknown parent %+v", parent)
	}
	switch node.Kind {
	case StorageDir:
		return ptpwire.RootHandle, nil
	case Dir:
		return parent.Handle, nil
	default:
		return 0, fmt.Errorf("ptptree: %+v is not a directory", parent)
	}
}

// Create uploads a new, empty-then-filled object named filename under
// parent (§4.6 create algorithm). size is the final object size
// reported in ObjectInfo; Create itself sends an empty body, and the
// actual bytes are written later through WriteBack once the caller's
// buffered file is complete.
func (t *Tree) Create(ctx context.Context, parent NodeKey, filename string, size int64) (*Node, error) {
	parentHandle, err := t.parentObjectHandle(parent)
	if err != nil {
		return nil, err
	}
	info := ptpwire.ObjectInfo{
		StorageID:      parent.StorageID,
		ObjectFormat:   ptpwire.ObjectFormatForSuffix(suffix(filename)),
		ParentObject:   parentHandle,
		CompressedSize: uint32(size),
		Filename:       filename,
	}
	return t.createObject(ctx, parent, parentHandle, info, File)
}

// Mkdir creates a new Association/GenericFolder under parent.
func (t *Tree) Mkdir(ctx context.Context, parent NodeKey, dirname string) (*Node, error) {
	parentHandle, err := t.parentObjectHandle(parent)
	if err != nil {
		return nil, err
	}
	info := ptpwire.ObjectInfo{
		StorageID:       parent.StorageID,
		ObjectFormat:    ptpwire.ObjectFormatAssociation,
		AssociationType: ptpwire.AssociationGenericFolder,
		ParentObject:    parentHandle,
		Filename:        dirname,
	}
	return t.createObject(ctx, parent, parentHandle, info, Dir)
}

func (t *Tree) createObject(ctx context.Context, parent NodeKey, parentHandle uint32, info ptpwire.ObjectInfo, kind NodeKind) (*Node, error) {
	preHandles, preErr := t.handleSet(ctx, parent)
	if preErr != nil {
		return nil, preErr
	}

	_, _, handle, err := t.session.SendObjectInfo(ctx, parent.StorageID, parentHandle, info)
	if err != nil {
		return nil, err
	}
	if err := t.session.SendObject(ctx, nil, 0); err != nil {
		return nil, err
	}

	t.dirs.invalidate(parent)
	if handle == 0 {
		handle, err = t.reconcileHandle(ctx, parent, preHandles)
		if err != nil {
			return nil, err
		}
	}

	node := &Node{Kind: kind, Key: NodeKey{StorageID: parent.StorageID, Handle: handle}, Parent: parent, Filename: info.Filename}
	t.arena.Put(node)
	return node, nil
}

// handleSet lists parent fresh (bypassing the cache) and returns the
// set of handles currently present, used as the "before" snapshot for
// zero-handle reconciliation.
func (t *Tree) handleSet(ctx context.Context, parent NodeKey) (map[uint32]bool, error) {
	t.dirs.invalidate(parent)
	children, err := t.ListDir(ctx, parent)
	if err != nil {
		return nil, err
	}
	set := make(map[uint32]bool, len(children))
	for _, c := range children {
		set[c.Key.Handle] = true
	}
	return set, nil
}

// reconcileHandle re-lists parent and diffs against preHandles to find
// the handle the device just assigned (§4.6 step 4).
func (t *Tree) reconcileHandle(ctx context.Context, parent NodeKey, preHandles map[uint32]bool) (uint32, error) {
	t.dirs.invalidate(parent)
	children, err := t.ListDir(ctx, parent)
	if err != nil {
		return 0, err
	}

	var fresh []uint32
	for _, c := range children {
		if !preHandles[c.Key.Handle] {
			fresh = append(fresh, c.Key.Handle)
		}
	}

	switch len(fresh) {
	case 1:
		return fresh[0], nil
	case 0:
		return 0, ptperr.New("ptptree.reconcileHandle", ptperr.CodeCacheInconsistent, "no new handle appeared after create")
	default:
		if t.reconciliation == FirstNewHandle {
			sort.Slice(fresh, func(i, j int) bool { return fresh[i] < fresh[j] })
			return fresh[0], nil
		}
		return 0, ptperr.New("ptptree.reconcileHandle", ptperr.CodeCacheInconsistent, "ambiguous new handle after create")
	}
}

// WriteBack replaces node's content wholesale: delete the old object,
// then SendObjectInfo/SendObject the new bytes under the same
// filename/parent (§4.6, "buffer writes until close"). The returned
// Node carries a new handle; callers must drop any reference to the
// old NodeKey (the FUSE adapter re-resolves the dentry/inode).
func (t *Tree) WriteBack(ctx context.Context, node *Node, data []byte) (*Node, error) {
	if node.Kind != File {
		return nil, fmt.Errorf("ptptree: %+v is not a file", node.Key)
	}
	parentHandle, err := t.parentObjectHandle(node.Parent)
	if err != nil {
		return nil, err
	}

	if err := t.session.DeleteObject(ctx, node.Key.Handle, 0); err != nil {
		return nil, err
	}
	t.arena.Delete(node.Key)

	info := ptpwire.ObjectInfo{
		StorageID:      node.Key.StorageID,
		ObjectFormat:   ptpwire.ObjectFormatForSuffix(suffix(node.Filename)),
		ParentObject:   parentHandle,
		CompressedSize: uint32(len(data)),
		Filename:       node.Filename,
	}
	newNode, err := t.createObjectAfterDelete(ctx, node.Parent, parentHandle, info, data)
	if err != nil {
		return nil, err
	}
	t.dirs.invalidate(node.Parent)
	return newNode, nil
}

// createObjectAfterDelete mirrors createObject's pre-create handle
// snapshot and SendObjectInfo/SendObject/reconcile sequence, but sends
// data as the object body and always creates a File. The snapshot is
// taken after the caller (WriteBack) has deleted the old handle, so a
// zero-handle response reconciles against the remaining entries.
func (t *Tree) createObjectAfterDelete(ctx context.Context, parent NodeKey, parentHandle uint32, info ptpwire.ObjectInfo, data []byte) (*Node, error) {
	preHandles, err := t.handleSet(ctx, parent)
	if err != nil {
		return nil, err
	}

	_, _, handle, err := t.session.SendObjectInfo(ctx, parent.StorageID, parentHandle, info)
	if err != nil {
		return nil, err
	}
	if err := t.session.SendObject(ctx, data, int64(len(data))); err != nil {
		return nil, err
	}

	t.dirs.invalidate(parent)
	if handle == 0 {
		handle, err = t.reconcileHandle(ctx, parent, preHandles)
		if err != nil {
			return nil, err
		}
	}

	node := &Node{Kind: File, Key: NodeKey{StorageID: parent.StorageID, Handle: handle}, Parent: parent, Filename: info.Filename}
	t.arena.Put(node)
	return node, nil
}

// Delete removes node, used for both Unlink and Rmdir (§6.5: folders
// delete the same way files do).
func (t *Tree) Delete(ctx context.Context, node *Node) error {
	if err := t.session.DeleteObject(ctx, node.Key.Handle, 0); err != nil {
		return err
	}
	t.arena.Delete(node.Key)
	t.dirs.invalidate(node.Parent)
	return nil
}

// ObjectInfo fetches node's current ObjectInfo directly from the
// device, bypassing the directory listing cache. Used by a file
// front-end (e.g. the FUSE adapter's Getattr/Open) that needs an
// up-to-date size without walking the whole parent directory.
func (t *Tree) ObjectInfo(ctx context.Context, node *Node) (ptpwire.ObjectInfo, error) {
	if node.Kind != File {
		return ptpwire.ObjectInfo{}, fmt.Errorf("ptptree: %+v is not a file", node.Key)
	}
	return t.session.GetObjectInfo(ctx, node.Key.Handle)
}

// Download fetches node's full binary content. The returned BlockList
// is caller-owned; see ptpsession.Session.GetObject.
func (t *Tree) Download(ctx context.Context, node *Node, expectedSize int64) (*ptptxn.BlockList, error) {
	if node.Kind != File {
		return nil, fmt.Errorf("ptptree: %+v is not a file", node.Key)
	}
	return t.session.GetObject(ctx, node.Key.Handle, expectedSize)
}

// StatFS is the free-space summary across every attached, reachable
// storage (§4.6: unreachable storages contribute zero).
type StatFS struct {
	TotalBytes uint64
	FreeBytes  uint64
}

func (t *Tree) StatFS(ctx context.Context) (StatFS, error) {
	ids, err := t.session.GetStorageIDs(ctx)
	if err != nil {
		return StatFS{}, err
	}

	var out StatFS
	for _, id := range ids {
		if !ptpwire.IsMounted(id) {
			continue
		}
		info, infoErr := t.session.GetStorageInfo(ctx, id)
		if infoErr != nil {
			continue
		}
		out.TotalBytes += info.MaxCapacity
		out.FreeBytes += info.FreeSpaceInBytes
	}
	return out, nil
}

func suffix(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 || i == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}
