// Package fuseadapter mounts a ptptree.Tree as a FUSE filesystem
// (§6.5): the root directory's children are per-storage directories,
// whose children are the device's folder/file tree. It is built on
// github.com/hanwen/go-fuse/v2's high-level "fs" inode API, the same
// package the pack's rclone vendor copy documents as the recommended
// way to implement a filesystem without hand-rolling the raw FUSE wire
// protocol (vendor/.../fuse/api.go: "packages nodefs and pathfs
// provide ways to implement filesystems at higher levels").
package fuseadapter

import (
	"fmt"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/defiant-labs/ptpfs/internal/logging"
	"github.com/defiant-labs/ptpfs/ptptree"
)

// Options configures ownership applied uniformly to every inode, per
// the "uid=<n>,gid=<n> mount option" requirement.
type Options struct {
	UID uint32
	GID uint32
}

// Root builds the filesystem's root inode embedder, ready to pass to
// Mount.
func Root(tree *ptptree.Tree, opts Options, logger *logging.Logger) fs.InodeEmbedder {
	if logger == nil {
		logger = logging.Default()
	}
	return &ptpNode{
		tree:   tree,
		key:    ptptree.RootKey,
		kind:   ptptree.StorageDir,
		opts:   opts,
		logger: logger,
	}
}

// Mount mounts root at mountPoint under the name "ptpfs", with the
// uid/gid ownership mount options from opts and extended attributes
// disabled; all other go-fuse mount options keep their defaults.
func Mount(mountPoint string, tree *ptptree.Tree, opts Options, logger *logging.Logger) (*fuse.Server, error) {
	root := Root(tree, opts, logger)
	server, err := fs.Mount(mountPoint, root, &fs.Options{
		MountOptions: fuse.MountOptions{
			FsName:        "ptpfs",
			Name:          "ptpfs",
			Options:       []string{fmt.Sprintf("uid=%d", opts.UID), fmt.Sprintf("gid=%d", opts.GID)},
			DisableXAttrs: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("fuseadapter: mount %s: %w", mountPoint, err)
	}
	return server, nil
}
