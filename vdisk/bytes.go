package vdisk

import (
	"github.com/psatala/vdisk/vdfs"
)

func ceilDiv(a, b int) int {
	if a == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// AddBytes grows vpath's logical size by n bytes. It first consumes any
// unused space in the existing tail block, then allocates additional
// blocks starting at direct-entry index countBlocks+i with i from 0 — the
// corrected addressing; the original off-by-one skipped slot countBlocks
// itself. If free blocks run out or the 56-block cap is reached, the size
// grows only as far as the blocks actually obtained.
func (e *Engine) AddBytes(vpath string, n uint32) error {
	if n == 0 {
		return nil
	}

	inum, in, _, err := e.lookupFile(vpath)
	if err != nil {
		return err
	}

	countBlocks := in.NBlocks()
	tailUsed := 0
	if countBlocks > 0 {
		tailUsed = int(in.Size) % vdfs.BlockSize
		if tailUsed == 0 {
			tailUsed = vdfs.BlockSize
		}
	}
	spaceInTail := 0
	if countBlocks > 0 {
		spaceInTail = vdfs.BlockSize - tailUsed
	}

	remaining := int(n) - spaceInTail
	additionalNeeded := ceilDiv(remaining, vdfs.BlockSize)
	if countBlocks+additionalNeeded > vdfs.MaxDirectEntries {
		additionalNeeded = vdfs.MaxDirectEntries - countBlocks
	}
	if additionalNeeded < 0 {
		additionalNeeded = 0
	}

	allocated := 0
	for i := 0; i < additionalNeeded; i++ {
		blk, ok, err := e.blockBitmap.Alloc()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		in.Blocks[countBlocks+i] = uint16(blk)
		allocated++
	}

	capacity := spaceInTail + allocated*vdfs.BlockSize
	added := int(n)
	if added > capacity {
		added = capacity
	}

	in.Size += uint32(added)
	return e.acc.Write(inum, in)
}

// DeleteBytes shrinks vpath's logical size by min(n, current size),
// freeing every data block that falls entirely outside the new size.
func (e *Engine) DeleteBytes(vpath string, n uint32) error {
	inum, in, _, err := e.lookupFile(vpath)
	if err != nil {
		return err
	}

	removed := n
	if removed > in.Size {
		removed = in.Size
	}
	newSize := in.Size - removed

	oldBlocks := in.NBlocks()
	newInode := in
	newInode.Size = newSize
	newBlocks := newInode.NBlocks()

	for i := newBlocks; i < oldBlocks; i++ {
		if err := e.blockBitmap.Free(uint32(in.Blocks[i])); err != nil {
			return err
		}
		in.Blocks[i] = 0
	}

	in.Size = newSize
	return e.acc.Write(inum, in)
}
