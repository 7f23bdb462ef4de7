// Package geometry derives the fixed region layout of a backing file
// (inode bitmap, data bitmap, inode table, data region) from its size.
package geometry

import (
	"github.com/psatala/vdisk/vdfs"
)

// amortizationDivisor is 32 inodes per block * 2 (average blocks per file)
// + 1 block of overhead per inode block, as spec'd: one inode block per
// ~65 data blocks.
const amortizationDivisor = vdfs.InodesPerBlock*2 + 1

// Geometry describes the block-index layout of one backing file.
type Geometry struct {
	Size int64 // effective size, bytes

	NBlocks      uint32 // total blocks in the file
	NInodeBlocks uint32 // blocks devoted to the inode table

	InodeBitmapBlock uint32 // always 0
	DataBitmapBlock  uint32 // always 1
	FirstInodeBlock  uint32 // always 2
	FirstDataBlock   uint32 // 2 + NInodeBlocks
}

// New derives a Geometry from the effective size of a backing file. size
// must already be rounded/clamped (store.EffectiveSize, or the actual
// length of a previously-formatted file).
func New(size int64) Geometry {
	nBlocks := uint32(size / vdfs.BlockSize)

	nInodeBlocks := uint32(1)
	if nBlocks > 2 {
		nInodeBlocks = (nBlocks - 2) / amortizationDivisor
	}
	if nInodeBlocks < 1 {
		nInodeBlocks = 1
	}

	return Geometry{
		Size:             size,
		NBlocks:          nBlocks,
		NInodeBlocks:     nInodeBlocks,
		InodeBitmapBlock: 0,
		DataBitmapBlock:  1,
		FirstInodeBlock:  2,
		FirstDataBlock:   2 + nInodeBlocks,
	}
}

// NInodesTotal is the number of inode slots the inode table holds.
func (g Geometry) NInodesTotal() uint32 {
	return g.NInodeBlocks * vdfs.InodesPerBlock
}

// NDataBlocks is the number of blocks in the data region.
func (g Geometry) NDataBlocks() uint32 {
	if g.NBlocks <= g.FirstDataBlock {
		return 0
	}
	return g.NBlocks - g.FirstDataBlock
}

// InodeOffset returns the absolute byte offset of inode i's 128-byte record.
func (g Geometry) InodeOffset(i uint16) int64 {
	block := g.FirstInodeBlock + uint32(i)/vdfs.InodesPerBlock
	withinBlock := (uint32(i) % vdfs.InodesPerBlock) * vdfs.InodeSize
	return int64(block)*vdfs.BlockSize + int64(withinBlock)
}

// DataBlockOffset returns the absolute byte offset of data block d, where d
// is an index into the data region (not an absolute block index).
func (g Geometry) DataBlockOffset(d uint16) int64 {
	return int64(g.FirstDataBlock+uint32(d)) * vdfs.BlockSize
}
