package vdisk

import (
	"fmt"
	"io"

	"github.com/psatala/vdisk/vdfs"
)

// Info writes three utilization lines to w: bytes used vs. available in
// the data region, data blocks in use vs. total, and inodes in use vs.
// total. Bytes-in-use sums the size field of every regular file whose
// inode bitmap bit is set, and blocks-in-use counts only the blocks held by
// those files: directories and their single blocks are left out of both.
func (e *Engine) Info(w io.Writer) error {
	totalInodes := e.geo.NInodesTotal()
	totalBlocks := e.geo.NDataBlocks()

	var bytesUsed uint64
	var dirBlocks uint32
	for i := uint32(0); i < totalInodes; i++ {
		set, err := e.inodeBitmap.IsSet(i)
		if err != nil {
			return err
		}
		if !set {
			continue
		}
		in, err := e.acc.Read(uint16(i))
		if err != nil {
			return err
		}
		if in.IsDir() {
			dirBlocks++
			continue
		}
		bytesUsed += uint64(in.Size)
	}

	blocksUsed, err := e.blockBitmap.CountSet()
	if err != nil {
		return err
	}
	if blocksUsed >= dirBlocks {
		blocksUsed -= dirBlocks
	}
	inodesUsed, err := e.inodeBitmap.CountSet()
	if err != nil {
		return err
	}

	bytesAvailable := uint64(totalBlocks) * uint64(vdfs.BlockSize)

	if _, err := fmt.Fprintf(w, "data bytes used: %d/%d\n", bytesUsed, bytesAvailable); err != nil {
		return Fatal(err)
	}
	if _, err := fmt.Fprintf(w, "data blocks used: %d/%d\n", blocksUsed, totalBlocks); err != nil {
		return Fatal(err)
	}
	if _, err := fmt.Fprintf(w, "inodes used: %d/%d\n", inodesUsed, totalInodes); err != nil {
		return Fatal(err)
	}
	return nil
}
