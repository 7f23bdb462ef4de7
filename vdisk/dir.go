package vdisk

import (
	"fmt"
	"io"
	"strings"

	"github.com/psatala/vdisk/pathwalk"
	"github.com/psatala/vdisk/vdfs"
)

// Mkdir creates an empty directory at vpath, wires its "." and ".."
// entries, and adds the leaf name to the parent. The parent's room is
// checked before the child directory is allocated, so a directory-full
// failure never leaves an orphaned, unreferenced inode behind.
func (e *Engine) Mkdir(vpath string) error {
	parentLoc, leaf, err := e.resolveParent(vpath)
	if err != nil {
		return err
	}

	parentIn, err := e.acc.Read(parentLoc.Inode)
	if err != nil {
		return err
	}
	if int(parentIn.Size)/vdfs.DirEntrySize >= vdfs.MaxDirEntries {
		return Fatal(fmt.Errorf("%s: %w", vpath, vdfs.ErrDirectoryFull))
	}

	child, err := e.dir.CreateEmpty()
	if err != nil {
		return err
	}
	if err := e.dir.AddEntry(child, child, "."); err != nil {
		return err
	}
	if err := e.dir.AddEntry(child, parentLoc.Inode, ".."); err != nil {
		return err
	}
	return e.dir.AddEntry(parentLoc.Inode, child, leaf)
}

// Cd fully resolves vpath and, on success, commits the result as the
// current directory. On failure the current directory is untouched.
func (e *Engine) Cd(vpath string) error {
	loc, _, err := pathwalk.Resolve(e.dir, e.acc, e.cwd, vpath, pathwalk.Cd)
	if err != nil {
		return err
	}
	e.cwd = loc
	return nil
}

// Ls writes one line per entry of the current directory to w, in the form
// "<inode> <link_count> <size> <file|directory> <name>".
func (e *Engine) Ls(w io.Writer) error {
	entries, err := e.dir.Entries(e.cwd.Inode)
	if err != nil {
		return err
	}

	for _, ent := range entries {
		in, err := e.acc.Read(ent.Inode)
		if err != nil {
			return err
		}
		kind := "file"
		if in.IsDir() {
			kind = "directory"
		}
		if _, err := fmt.Fprintf(w, "%d %d %d %s %s\n", ent.Inode, in.LinkCount, in.Size, kind, ent.NameString()); err != nil {
			return Fatal(err)
		}
	}
	return nil
}

// Pwd writes the current path to w: "/" when at the root, otherwise "/"
// followed by the slash-joined path vector.
func (e *Engine) Pwd(w io.Writer) error {
	p := "/"
	if len(e.cwd.Path) > 0 {
		p = "/" + strings.Join(e.cwd.Path, "/")
	}
	_, err := fmt.Fprintln(w, p)
	if err != nil {
		return Fatal(err)
	}
	return nil
}
