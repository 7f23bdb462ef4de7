// Package inode implements the fixed-offset inode record format and the
// directory entry codec that sits inside a directory inode's single data
// block. It performs no allocation itself beyond what Directory.CreateEmpty
// needs to bring a new directory into existence (spec ties allocation to
// that one operation).
package inode

import (
	"encoding/binary"

	"github.com/psatala/vdisk/geometry"
	"github.com/psatala/vdisk/store"
	"github.com/psatala/vdisk/vdfs"
)

// Inode is the in-memory form of one 128-byte on-disk record.
type Inode struct {
	Blocks    [vdfs.MaxDirectEntries]uint16
	Size      uint32
	LinkCount uint16
	Flags     uint16
}

// IsDir reports whether the directory flag bit is set.
func (in Inode) IsDir() bool {
	return in.Flags&vdfs.FlagDirectory != 0
}

// NBlocks returns the number of direct entries in use, derived from Size
// per invariant 3 (ceil(size/BlockSize), 0 when size is 0). For a
// directory this is always 0 or 1, since only entry 0 is ever used.
func (in Inode) NBlocks() int {
	if in.Size == 0 {
		return 0
	}
	n := in.Size / vdfs.BlockSize
	if in.Size%vdfs.BlockSize != 0 {
		n++
	}
	return int(n)
}

// Accessor reads and writes typed inode records at their computed offsets.
type Accessor struct {
	dev store.Device
	geo geometry.Geometry
}

// NewAccessor returns an Accessor over dev, using geo for offset math.
func NewAccessor(dev store.Device, geo geometry.Geometry) *Accessor {
	return &Accessor{dev: dev, geo: geo}
}

// Read decodes the inode record at index i.
func (a *Accessor) Read(i uint16) (Inode, error) {
	buf, err := a.dev.ReadAt(a.geo.InodeOffset(i), vdfs.InodeSize)
	if err != nil {
		return Inode{}, Fatal(err)
	}

	var in Inode
	for slot := 0; slot < vdfs.MaxDirectEntries; slot++ {
		in.Blocks[slot] = binary.LittleEndian.Uint16(buf[slot*2 : slot*2+2])
	}
	in.Size = binary.LittleEndian.Uint32(buf[vdfs.InodeSizeOffset : vdfs.InodeSizeOffset+4])
	in.LinkCount = binary.LittleEndian.Uint16(buf[vdfs.InodeLinkCountOffset : vdfs.InodeLinkCountOffset+2])
	in.Flags = binary.LittleEndian.Uint16(buf[vdfs.InodeFlagsOffset : vdfs.InodeFlagsOffset+2])
	return in, nil
}

// Write encodes and persists the inode record at index i.
func (a *Accessor) Write(i uint16, in Inode) error {
	buf := make([]byte, vdfs.InodeSize)
	for slot := 0; slot < vdfs.MaxDirectEntries; slot++ {
		binary.LittleEndian.PutUint16(buf[slot*2:slot*2+2], in.Blocks[slot])
	}
	binary.LittleEndian.PutUint32(buf[vdfs.InodeSizeOffset:vdfs.InodeSizeOffset+4], in.Size)
	binary.LittleEndian.PutUint16(buf[vdfs.InodeLinkCountOffset:vdfs.InodeLinkCountOffset+2], in.LinkCount)
	binary.LittleEndian.PutUint16(buf[vdfs.InodeFlagsOffset:vdfs.InodeFlagsOffset+2], in.Flags)

	if err := a.dev.WriteAt(a.geo.InodeOffset(i), buf); err != nil {
		return Fatal(err)
	}
	return nil
}
