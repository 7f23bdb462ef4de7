package vdisk

import (
	"fmt"
	"io"
	"os"

	"github.com/psatala/vdisk/inode"
	"github.com/psatala/vdisk/store"
	"github.com/psatala/vdisk/vdfs"
)

// CopyIn streams hostName's contents, block by block, into a freshly
// created regular file at vpath. If free blocks run out or the 56-block
// direct-entry cap is reached, the copy stops and the file keeps whatever
// blocks were already written. An empty host file yields size 0, never
// the underflowed size the original arithmetic would have produced.
//
// The host file's presence is checked before any inode or directory state
// is touched, so a missing host file — the "host file absent on ucp" user
// error — leaves the operation a no-op on disk.
func (e *Engine) CopyIn(hostName, vpath string) error {
	if !store.IsFile(e.hostFS, hostName) {
		return Fatal(fmt.Errorf("%s: %w", hostName, vdfs.ErrNotFound))
	}

	parentLoc, leaf, err := e.resolveParent(vpath)
	if err != nil {
		return err
	}

	child, ok, err := e.inodeBitmap.Alloc()
	if err != nil {
		return err
	}
	if !ok {
		return Fatal(vdfs.ErrNoFreeInode)
	}
	childInode := uint16(child)

	if err := e.acc.Write(childInode, inode.Inode{}); err != nil {
		return err
	}

	if err := e.dir.AddEntry(parentLoc.Inode, childInode, leaf); err != nil {
		_ = e.inodeBitmap.Free(child)
		return err
	}

	host, err := e.hostFS.Open(hostName)
	if err != nil {
		return Fatal(fmt.Errorf("%s: %w", hostName, err))
	}
	defer host.Close()

	// AddEntry already committed LinkCount: 1 to this record; read it back
	// and mutate it in place rather than starting from a zero-valued Inode,
	// which would silently discard that link count.
	in, err := e.acc.Read(childInode)
	if err != nil {
		return err
	}

	blocksWritten := 0
	bytesInLastBlock := 0
	buf := make([]byte, vdfs.BlockSize)

	for blocksWritten < vdfs.MaxDirectEntries {
		n, readErr := io.ReadFull(host, buf)
		if n == 0 {
			break
		}

		blk, ok, allocErr := e.blockBitmap.Alloc()
		if allocErr != nil {
			return allocErr
		}
		if !ok {
			break
		}

		if err := e.dev.WriteAt(e.geo.DataBlockOffset(uint16(blk)), buf[:n]); err != nil {
			return Fatal(err)
		}
		in.Blocks[blocksWritten] = uint16(blk)
		blocksWritten++
		bytesInLastBlock = n

		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return Fatal(readErr)
		}
	}

	if blocksWritten == 0 {
		in.Size = 0
	} else {
		in.Size = uint32((blocksWritten-1)*vdfs.BlockSize + bytesInLastBlock)
	}

	return e.acc.Write(childInode, in)
}

// blockIteration yields the logical byte ranges of a regular file in
// block order, trimming the final block to the file's tail length.
func blockIteration(in inode.Inode) []int {
	n := in.NBlocks()
	lengths := make([]int, n)
	for i := 0; i < n; i++ {
		if i < n-1 {
			lengths[i] = vdfs.BlockSize
		} else {
			tail := int(in.Size) % vdfs.BlockSize
			if tail == 0 {
				tail = vdfs.BlockSize
			}
			lengths[i] = tail
		}
	}
	return lengths
}

// readFile streams a regular file's bytes, in block order, to w.
func (e *Engine) readFile(in inode.Inode, w io.Writer) error {
	for i, length := range blockIteration(in) {
		buf, err := e.dev.ReadAt(e.geo.DataBlockOffset(in.Blocks[i]), length)
		if err != nil {
			return Fatal(err)
		}
		if _, err := w.Write(buf); err != nil {
			return Fatal(err)
		}
	}
	return nil
}

// CopyOut writes vpath's contents to a new (or truncated) host file
// hostName.
func (e *Engine) CopyOut(vpath, hostName string) error {
	_, in, _, err := e.lookupFile(vpath)
	if err != nil {
		return err
	}

	host, err := e.hostFS.OpenFile(hostName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return Fatal(fmt.Errorf("%s: %w", hostName, err))
	}
	defer host.Close()

	return e.readFile(in, host)
}

// Cat writes vpath's contents to w (the shell's standard output).
func (e *Engine) Cat(vpath string, w io.Writer) error {
	_, in, _, err := e.lookupFile(vpath)
	if err != nil {
		return err
	}
	return e.readFile(in, w)
}
