package geometry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/psatala/vdisk/vdfs"
)

func TestNewMinimalDisk(t *testing.T) {
	g := New(3 * vdfs.BlockSize)
	require.Equal(t, uint32(3), g.NBlocks)
	require.Equal(t, uint32(1), g.NInodeBlocks, "at least one inode block must be present")
	require.Equal(t, uint32(0), g.InodeBitmapBlock)
	require.Equal(t, uint32(1), g.DataBitmapBlock)
	require.Equal(t, uint32(2), g.FirstInodeBlock)
	require.Equal(t, uint32(3), g.FirstDataBlock)
	require.Equal(t, uint32(0), g.NDataBlocks())
}

func TestNewAmortizesOneInodeBlockPer65DataBlocks(t *testing.T) {
	g := New(68 * vdfs.BlockSize)
	require.Equal(t, uint32(68), g.NBlocks)
	require.Equal(t, uint32(1), g.NInodeBlocks)
	require.Equal(t, uint32(3), g.FirstDataBlock)
	require.Equal(t, uint32(65), g.NDataBlocks())
}

func TestInodeOffsetPacksThirtyTwoPerBlock(t *testing.T) {
	g := New(65536)
	require.Equal(t, int64(g.FirstInodeBlock)*vdfs.BlockSize, g.InodeOffset(0))
	require.Equal(t, int64(g.FirstInodeBlock)*vdfs.BlockSize+vdfs.InodeSize, g.InodeOffset(1))
	require.Equal(t, int64(g.FirstInodeBlock+1)*vdfs.BlockSize, g.InodeOffset(vdfs.InodesPerBlock))
}

func TestDataBlockOffset(t *testing.T) {
	g := New(65536)
	require.Equal(t, int64(g.FirstDataBlock)*vdfs.BlockSize, g.DataBlockOffset(0))
	require.Equal(t, int64(g.FirstDataBlock+5)*vdfs.BlockSize, g.DataBlockOffset(5))
}

func TestNInodesTotal(t *testing.T) {
	g := New(65536)
	require.Equal(t, g.NInodeBlocks*vdfs.InodesPerBlock, g.NInodesTotal())
}
