package vdisk

// Unlink removes vpath's directory entry and decrements the target's link
// count. When the count reaches zero, every referenced data block is
// freed and then the inode itself is freed. Refuses if vpath is a
// directory.
func (e *Engine) Unlink(vpath string) error {
	inum, in, _, err := e.lookupFile(vpath)
	if err != nil {
		return err
	}

	parentLoc, leaf, err := e.resolveParent(vpath)
	if err != nil {
		return err
	}

	if err := e.dir.DeleteEntry(parentLoc.Inode, leaf); err != nil {
		return err
	}

	in.LinkCount--
	if in.LinkCount > 0 {
		return e.acc.Write(inum, in)
	}

	for i := 0; i < in.NBlocks(); i++ {
		if err := e.blockBitmap.Free(uint32(in.Blocks[i])); err != nil {
			return err
		}
	}
	if err := e.acc.Write(inum, in); err != nil {
		return err
	}
	return e.inodeBitmap.Free(uint32(inum))
}

// Link resolves targetVpath to a regular file (refusing if it names a
// directory) and adds a directory entry at linkVpath referencing the same
// inode, incrementing its link count.
func (e *Engine) Link(targetVpath, linkVpath string) error {
	targetInum, _, _, err := e.lookupFile(targetVpath)
	if err != nil {
		return err
	}

	parentLoc, leaf, err := e.resolveParent(linkVpath)
	if err != nil {
		return err
	}

	return e.dir.AddEntry(parentLoc.Inode, targetInum, leaf)
}
