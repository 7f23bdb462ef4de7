// Package pathwalk resolves slash-separated paths against the directory
// tree, without ever touching caller-owned state: every call returns a
// fresh Location rather than writing through side-channel fields (the
// "working directory"/"working path" members the original engine carried).
package pathwalk

import (
	"fmt"
	"strings"

	"github.com/psatala/vdisk/inode"
	"github.com/psatala/vdisk/vdfs"
)

// Mode selects how much of a tokenized path is consumed.
type Mode int

const (
	// Cd consumes every segment; the result names a directory.
	Cd Mode = iota
	// Parent consumes all but the last segment; the caller supplies the
	// last segment (the leaf name) to whatever operation it's performing.
	Parent
)

// Location pairs a resolved directory inode with the path vector that
// reaches it, relative to the filesystem root.
type Location struct {
	Inode uint16
	Path  []string
}

// Lookup is the narrow slice of *inode.Directory that Resolve needs.
type Lookup interface {
	Lookup(dirInode uint16, name string) (uint16, bool, error)
}

// IsDirChecker is the narrow slice of *inode.Accessor that Resolve needs.
type IsDirChecker interface {
	Read(i uint16) (inode.Inode, error)
}

func splitPath(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// Resolve walks path starting from start, using dir for entry lookups and
// acc to confirm intermediate entries are directories. In Cd mode the
// returned Location names the fully-resolved directory and leaf is empty.
// In Parent mode the returned Location names the directory that would
// contain the final path segment, and leaf is that segment (empty if path
// had no segments at all).
//
// On failure, start is returned unchanged alongside the error: callers
// must not commit any state until Resolve succeeds.
func Resolve(dir Lookup, acc IsDirChecker, start Location, path string, mode Mode) (Location, string, error) {
	segments := splitPath(path)

	consume := len(segments)
	leaf := ""
	if mode == Parent {
		if consume > 0 {
			consume--
			leaf = segments[len(segments)-1]
		}
	}

	cur := Location{Inode: start.Inode, Path: append([]string(nil), start.Path...)}

	for i := 0; i < consume; i++ {
		seg := segments[i]
		switch seg {
		case ".":
			continue
		case "..":
			parent, ok, err := dir.Lookup(cur.Inode, "..")
			if err != nil {
				return start, "", err
			}
			if !ok {
				return start, "", Fatal(fmt.Errorf("%s: %w", path, vdfs.ErrNotDirectory))
			}
			cur.Inode = parent
			if len(cur.Path) > 0 {
				cur.Path = cur.Path[:len(cur.Path)-1]
			}
		default:
			next, ok, err := dir.Lookup(cur.Inode, seg)
			if err != nil {
				return start, "", err
			}
			if !ok {
				return start, "", Fatal(fmt.Errorf("%s: %w", path, vdfs.ErrNotDirectory))
			}
			in, err := acc.Read(next)
			if err != nil {
				return start, "", err
			}
			if !in.IsDir() {
				return start, "", Fatal(fmt.Errorf("%s: %w", path, vdfs.ErrNotDirectory))
			}
			cur.Inode = next
			cur.Path = append(cur.Path, seg)
		}
	}

	return cur, leaf, nil
}
