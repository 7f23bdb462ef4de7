// Package vdisk composes the geometry, bitmap, inode, directory, and
// path-resolution layers into the file-level operations a shell drives:
// copy-in/out, extend/truncate, link/unlink, mkdir/cd/ls/pwd/info.
package vdisk

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/psatala/vdisk/bitmap"
	"github.com/psatala/vdisk/geometry"
	"github.com/psatala/vdisk/inode"
	"github.com/psatala/vdisk/pathwalk"
	"github.com/psatala/vdisk/store"
	"github.com/psatala/vdisk/vdfs"
	"github.com/psatala/vdisk/vlog"
)

// Engine is the filesystem's entry point: one instance per open backing
// file, holding the current directory as a pathwalk.Location.
type Engine struct {
	dev         store.Device
	geo         geometry.Geometry
	inodeBitmap *bitmap.Bitmap
	blockBitmap *bitmap.Bitmap
	acc         *inode.Accessor
	dir         *inode.Directory
	hostFS      afero.Fs
	cwd         pathwalk.Location
	log         *vlog.Logger
}

// Open builds an Engine over dev, formatting it on first use: a volume
// whose inode bitmap bit 0 is clear is unformatted, so the bitmaps are
// zeroed and a root directory is created at inode 0. A volume whose bit 0
// is already set is assumed formatted and is reused as-is.
func Open(dev store.Device, hostFS afero.Fs, log *vlog.Logger) (*Engine, error) {
	geo := geometry.New(dev.Size())
	inodeBitmap := bitmap.New(dev, geo.InodeBitmapBlock, geo.NInodesTotal())
	blockBitmap := bitmap.New(dev, geo.DataBitmapBlock, geo.NDataBlocks())
	acc := inode.NewAccessor(dev, geo)
	dir := inode.NewDirectory(dev, geo, acc, inodeBitmap, blockBitmap)

	e := &Engine{
		dev:         dev,
		geo:         geo,
		inodeBitmap: inodeBitmap,
		blockBitmap: blockBitmap,
		acc:         acc,
		dir:         dir,
		hostFS:      hostFS,
		cwd:         pathwalk.Location{Inode: vdfs.RootInode, Path: nil},
		log:         log,
	}

	formatted, err := inodeBitmap.IsSet(uint32(vdfs.RootInode))
	if err != nil {
		return nil, err
	}
	if formatted {
		log.Verbosef("reusing formatted volume, root inode %d", vdfs.RootInode)
		return e, nil
	}

	log.Verbosef("formatting new volume")
	if err := inodeBitmap.ClearAll(); err != nil {
		return nil, err
	}
	if err := blockBitmap.ClearAll(); err != nil {
		return nil, err
	}

	root, err := dir.CreateEmpty()
	if err != nil {
		return nil, err
	}
	if root != vdfs.RootInode {
		return nil, Fatalf("root directory allocated at unexpected inode %d", root)
	}
	if err := dir.AddEntry(root, root, "."); err != nil {
		return nil, err
	}
	if err := dir.AddEntry(root, root, ".."); err != nil {
		return nil, err
	}

	return e, nil
}

// Close releases the backing device.
func (e *Engine) Close() error {
	return e.dev.Close()
}

// resolveParent resolves path's parent directory and returns its location
// along with the unconsumed leaf segment.
func (e *Engine) resolveParent(vpath string) (pathwalk.Location, string, error) {
	loc, leaf, err := pathwalk.Resolve(e.dir, e.acc, e.cwd, vpath, pathwalk.Parent)
	if err != nil {
		return loc, "", err
	}
	if leaf == "" {
		return loc, "", Fatal(fmt.Errorf("%s: %w", vpath, vdfs.ErrInvalidPath))
	}
	return loc, leaf, nil
}

// lookupFile resolves vpath's parent, looks up the leaf name, and refuses
// if the result is a directory. It returns the leaf's inode number, its
// decoded record, and the parent location (for callers that also need to
// remove the directory entry).
func (e *Engine) lookupFile(vpath string) (uint16, inode.Inode, pathwalk.Location, error) {
	parent, leaf, err := e.resolveParent(vpath)
	if err != nil {
		return 0, inode.Inode{}, pathwalk.Location{}, err
	}

	inum, ok, err := e.dir.Lookup(parent.Inode, leaf)
	if err != nil {
		return 0, inode.Inode{}, pathwalk.Location{}, err
	}
	if !ok {
		return 0, inode.Inode{}, pathwalk.Location{}, Fatal(fmt.Errorf("%s: %w", vpath, vdfs.ErrNotFound))
	}

	in, err := e.acc.Read(inum)
	if err != nil {
		return 0, inode.Inode{}, pathwalk.Location{}, err
	}
	if in.IsDir() {
		return 0, inode.Inode{}, pathwalk.Location{}, Fatal(fmt.Errorf("%s: %w", vpath, vdfs.ErrIsDirectory))
	}

	return inum, in, parent, nil
}
