package inode

import (
	"encoding/binary"
	"fmt"

	"github.com/psatala/vdisk/bitmap"
	"github.com/psatala/vdisk/vdfs"
)

// DirEntry is the decoded form of one 16-byte directory entry.
type DirEntry struct {
	Inode uint16
	Name  [vdfs.DirNameSize]byte
}

// NameString trims the NUL padding and returns the entry's name as text.
func (e DirEntry) NameString() string {
	n := 0
	for n < len(e.Name) && e.Name[n] != 0 {
		n++
	}
	return string(e.Name[:n])
}

// encodeName truncates name to DirNameSize bytes and NUL-pads the rest, per
// spec.md §9's "store names as byte sequences, truncate on input" rule.
func encodeName(name string) [vdfs.DirNameSize]byte {
	var out [vdfs.DirNameSize]byte
	raw := []byte(name)
	if len(raw) > vdfs.DirNameSize {
		raw = raw[:vdfs.DirNameSize]
	}
	copy(out[:], raw)
	return out
}

func decodeDirEntry(buf []byte) DirEntry {
	var e DirEntry
	e.Inode = binary.LittleEndian.Uint16(buf[0:2])
	copy(e.Name[:], buf[2:2+vdfs.DirNameSize])
	return e
}

func encodeDirEntry(e DirEntry) [vdfs.DirEntrySize]byte {
	var buf [vdfs.DirEntrySize]byte
	binary.LittleEndian.PutUint16(buf[0:2], e.Inode)
	copy(buf[2:2+vdfs.DirNameSize], e.Name[:])
	return buf
}

// Directory implements the directory-encoding operations of spec.md §4.4:
// creating an empty directory, adding/deleting entries, and name lookup.
// It composes an Accessor for inode fields with the two bitmap allocators,
// since spec.md ties inode+block allocation directly to directory creation.
type Directory struct {
	dev         blockReadWriter
	geo         offsetter
	acc         *Accessor
	inodeBitmap *bitmap.Bitmap
	blockBitmap *bitmap.Bitmap
}

// blockReadWriter and offsetter are the narrow slices of store.Device and
// geometry.Geometry that Directory actually needs, kept local to document
// exactly what this type touches.
type blockReadWriter interface {
	ReadAt(offset int64, length int) ([]byte, error)
	WriteAt(offset int64, data []byte) error
}

type offsetter interface {
	DataBlockOffset(d uint16) int64
}

// NewDirectory returns a Directory backed by acc for inode fields and the
// given bitmaps for inode/block allocation.
func NewDirectory(dev blockReadWriter, geo offsetter, acc *Accessor, inodeBitmap, blockBitmap *bitmap.Bitmap) *Directory {
	return &Directory{dev: dev, geo: geo, acc: acc, inodeBitmap: inodeBitmap, blockBitmap: blockBitmap}
}

// CreateEmpty allocates a fresh inode and a fresh data block, wires the
// block into the inode's direct-entry 0, marks it a directory, and leaves
// it with size 0 and link count 0. The caller is responsible for adding
// the "." and ".." entries and the entry in the parent directory.
func (d *Directory) CreateEmpty() (uint16, error) {
	inum, ok, err := d.inodeBitmap.Alloc()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, Fatal(vdfs.ErrNoFreeInode)
	}

	blk, ok, err := d.blockBitmap.Alloc()
	if err != nil {
		return 0, err
	}
	if !ok {
		_ = d.inodeBitmap.Free(inum)
		return 0, Fatal(vdfs.ErrNoFreeBlock)
	}

	var in Inode
	in.Blocks[0] = uint16(blk)
	in.Flags = vdfs.FlagDirectory
	if err := d.acc.Write(uint16(inum), in); err != nil {
		return 0, err
	}
	return uint16(inum), nil
}

// Entries decodes every entry currently stored in dirInode's data block.
func (d *Directory) Entries(dirInode uint16) ([]DirEntry, error) {
	in, err := d.acc.Read(dirInode)
	if err != nil {
		return nil, err
	}

	n := int(in.Size) / vdfs.DirEntrySize
	entries := make([]DirEntry, 0, n)
	blockOffset := d.geo.DataBlockOffset(in.Blocks[0])
	for i := 0; i < n; i++ {
		buf, err := d.dev.ReadAt(blockOffset+int64(i*vdfs.DirEntrySize), vdfs.DirEntrySize)
		if err != nil {
			return nil, Fatal(err)
		}
		entries = append(entries, decodeDirEntry(buf))
	}
	return entries, nil
}

// Lookup scans dirInode's entries for name, truncated and NUL-padded the
// same way a stored entry's name field is, and returns the first match.
func (d *Directory) Lookup(dirInode uint16, name string) (uint16, bool, error) {
	entries, err := d.Entries(dirInode)
	if err != nil {
		return 0, false, err
	}
	target := encodeName(name)
	for _, e := range entries {
		if e.Name == target {
			return e.Inode, true, nil
		}
	}
	return 0, false, nil
}

// AddEntry appends a 16-byte entry to dirInode's block and increments the
// referenced inode's link count. Fails with ErrDirectoryFull once the
// directory already holds 256 entries.
func (d *Directory) AddEntry(dirInode, childInode uint16, name string) error {
	in, err := d.acc.Read(dirInode)
	if err != nil {
		return err
	}
	if int(in.Size)/vdfs.DirEntrySize >= vdfs.MaxDirEntries {
		return Fatal(vdfs.ErrDirectoryFull)
	}

	entry := DirEntry{Inode: childInode, Name: encodeName(name)}
	buf := encodeDirEntry(entry)
	offset := d.geo.DataBlockOffset(in.Blocks[0]) + int64(in.Size)
	if err := d.dev.WriteAt(offset, buf[:]); err != nil {
		return Fatal(err)
	}

	in.Size += vdfs.DirEntrySize
	if err := d.acc.Write(dirInode, in); err != nil {
		return err
	}

	child, err := d.acc.Read(childInode)
	if err != nil {
		return err
	}
	child.LinkCount++
	return d.acc.Write(childInode, child)
}

// DeleteEntry removes the entry named name from dirInode's block, shifting
// every later entry left by one slot. It does not touch link counts or
// free any block; callers sequence those separately.
func (d *Directory) DeleteEntry(dirInode uint16, name string) error {
	in, err := d.acc.Read(dirInode)
	if err != nil {
		return err
	}

	entries, err := d.Entries(dirInode)
	if err != nil {
		return err
	}

	target := encodeName(name)
	idx := -1
	for i, e := range entries {
		if e.Name == target {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Fatal(fmt.Errorf("%s: %w", name, vdfs.ErrNotFound))
	}

	blockOffset := d.geo.DataBlockOffset(in.Blocks[0])
	for i := idx; i < len(entries)-1; i++ {
		buf := encodeDirEntry(entries[i+1])
		if err := d.dev.WriteAt(blockOffset+int64(i*vdfs.DirEntrySize), buf[:]); err != nil {
			return Fatal(err)
		}
	}

	in.Size -= vdfs.DirEntrySize
	return d.acc.Write(dirInode, in)
}
