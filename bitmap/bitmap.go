// Package bitmap implements the two first-fit bit allocators (inode
// bitmap, data bitmap) that sit directly on top of the backing store.
package bitmap

import (
	"math/bits"

	"github.com/psatala/vdisk/store"
	"github.com/psatala/vdisk/vdfs"
)

// Bitmap is a first-fit allocator over the bits of one fixed block.
type Bitmap struct {
	dev        store.Device
	blockIndex uint32
	limit      uint32 // number of valid bits; bits beyond this are never touched
}

// New returns a Bitmap over the block at blockIndex, with limit valid bits.
func New(dev store.Device, blockIndex uint32, limit uint32) *Bitmap {
	return &Bitmap{dev: dev, blockIndex: blockIndex, limit: limit}
}

func (b *Bitmap) byteOffset(byteIndex uint32) int64 {
	return int64(b.blockIndex)*vdfs.BlockSize + int64(byteIndex)
}

func (b *Bitmap) readByte(byteIndex uint32) (byte, error) {
	buf, err := b.dev.ReadAt(b.byteOffset(byteIndex), 1)
	if err != nil {
		return 0, Fatal(err)
	}
	return buf[0], nil
}

func (b *Bitmap) writeByte(byteIndex uint32, value byte) error {
	if err := b.dev.WriteAt(b.byteOffset(byteIndex), []byte{value}); err != nil {
		return Fatal(err)
	}
	return nil
}

// IsSet reports whether bit i is currently set.
func (b *Bitmap) IsSet(i uint32) (bool, error) {
	value, err := b.readByte(i / 8)
	if err != nil {
		return false, err
	}
	return value&(1<<(i%8)) != 0, nil
}

func (b *Bitmap) setBit(i uint32, on bool) error {
	value, err := b.readByte(i / 8)
	if err != nil {
		return err
	}
	if on {
		value |= 1 << (i % 8)
	} else {
		value &^= 1 << (i % 8)
	}
	return b.writeByte(i/8, value)
}

// Alloc returns the smallest clear bit in [0, limit), sets it, and returns
// (index, true, nil). When every bit is set, it returns (0, false, nil).
func (b *Bitmap) Alloc() (uint32, bool, error) {
	nBytes := (b.limit + 7) / 8
	for byteIndex := uint32(0); byteIndex < nBytes; byteIndex++ {
		value, err := b.readByte(byteIndex)
		if err != nil {
			return 0, false, err
		}
		if value == 0xff {
			continue
		}
		bitPos := uint32(bits.TrailingZeros8(^value))
		idx := byteIndex*8 + bitPos
		if idx >= b.limit {
			return 0, false, nil
		}
		if err := b.writeByte(byteIndex, value|(1<<bitPos)); err != nil {
			return 0, false, err
		}
		return idx, true, nil
	}
	return 0, false, nil
}

// Free clears bit i. Clearing an already-clear bit is a no-op.
func (b *Bitmap) Free(i uint32) error {
	return b.setBit(i, false)
}

// ClearAll zeroes every byte backing this bitmap's bits. Used only at
// format time, when the inode bitmap's bit 0 is found clear.
func (b *Bitmap) ClearAll() error {
	zero := make([]byte, vdfs.BlockSize)
	if err := b.dev.WriteAt(int64(b.blockIndex)*vdfs.BlockSize, zero); err != nil {
		return Fatal(err)
	}
	return nil
}

// CountSet returns the number of set bits in [0, limit).
func (b *Bitmap) CountSet() (uint32, error) {
	nBytes := (b.limit + 7) / 8
	var count uint32
	for byteIndex := uint32(0); byteIndex < nBytes; byteIndex++ {
		value, err := b.readByte(byteIndex)
		if err != nil {
			return 0, err
		}
		count += uint32(bits.OnesCount8(value))
	}
	return count, nil
}
