package vdisk

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/psatala/vdisk/store"
	"github.com/psatala/vdisk/vdfs"
	"github.com/psatala/vdisk/vlog"
)

func newEngine(t *testing.T, size int64) (*Engine, afero.Fs) {
	t.Helper()
	backingFS := afero.NewMemMapFs()
	dev, err := store.Open(backingFS, "vDisk.vdf", size)
	require.NoError(t, err)
	t.Cleanup(func() { dev.Close() })

	hostFS := afero.NewMemMapFs()
	log := vlog.New(false, nil)

	e, err := Open(dev, hostFS, log)
	require.NoError(t, err)
	return e, hostFS
}

func writeHostFile(t *testing.T, fs afero.Fs, name string, content []byte) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, name, content, 0644))
}

func TestOpenFormatsOnFirstUse(t *testing.T) {
	e, _ := newEngine(t, 65536)

	var buf bytes.Buffer
	require.NoError(t, e.Ls(&buf))
	require.Contains(t, buf.String(), " .\n")
	require.Contains(t, buf.String(), " ..\n")
}

func TestScenarioMkdirAndChdir(t *testing.T) {
	e, _ := newEngine(t, 65536)

	require.NoError(t, e.Mkdir("d"))
	require.NoError(t, e.Cd("d"))

	var buf bytes.Buffer
	require.NoError(t, e.Pwd(&buf))
	require.Equal(t, "/d\n", buf.String())

	require.NoError(t, e.Cd(".."))
	buf.Reset()
	require.NoError(t, e.Pwd(&buf))
	require.Equal(t, "/\n", buf.String())
}

func TestScenarioCopyInAndCat(t *testing.T) {
	e, hostFS := newEngine(t, 65536)
	writeHostFile(t, hostFS, "hello.txt", []byte("hello, world\n"))

	require.NoError(t, e.CopyIn("hello.txt", "/h"))

	var buf bytes.Buffer
	require.NoError(t, e.Cat("/h", &buf))
	require.Equal(t, "hello, world\n", buf.String())

	var info bytes.Buffer
	require.NoError(t, e.Info(&info))
	require.Contains(t, info.String(), "data bytes used: 13/")
	require.Contains(t, info.String(), "data blocks used: 1/")
}

func TestScenarioExtendThenTruncate(t *testing.T) {
	e, hostFS := newEngine(t, 65536)
	writeHostFile(t, hostFS, "empty.txt", []byte{})
	require.NoError(t, e.CopyIn("empty.txt", "/z"))

	require.NoError(t, e.AddBytes("/z", 8192))
	var info bytes.Buffer
	require.NoError(t, e.Info(&info))
	require.Contains(t, info.String(), "data bytes used: 8192/")
	require.Contains(t, info.String(), "data blocks used: 2/")

	require.NoError(t, e.DeleteBytes("/z", 4100))
	info.Reset()
	require.NoError(t, e.Info(&info))
	require.Contains(t, info.String(), "data bytes used: 4092/")
	require.Contains(t, info.String(), "data blocks used: 1/")
}

func TestScenarioHardLinkThenUnlink(t *testing.T) {
	e, hostFS := newEngine(t, 65536)
	writeHostFile(t, hostFS, "hello.txt", []byte("hello, world\n"))
	require.NoError(t, e.CopyIn("hello.txt", "/h"))

	childInode, in, _, err := e.lookupFile("/h")
	require.NoError(t, err)
	require.Equal(t, uint16(1), in.LinkCount)

	require.NoError(t, e.Link("/h", "/h2"))
	in, err = e.acc.Read(childInode)
	require.NoError(t, err)
	require.Equal(t, uint16(2), in.LinkCount)

	require.NoError(t, e.Unlink("/h"))
	in, err = e.acc.Read(childInode)
	require.NoError(t, err)
	require.Equal(t, uint16(1), in.LinkCount)

	var buf bytes.Buffer
	require.NoError(t, e.Cat("/h2", &buf))
	require.Equal(t, "hello, world\n", buf.String())

	require.NoError(t, e.Unlink("/h2"))
	_, _, _, err = e.lookupFile("/h2")
	require.ErrorIs(t, err, vdfs.ErrNotFound)
}

func TestCopyInMissingHostFileIsNoOp(t *testing.T) {
	e, _ := newEngine(t, 65536)

	var before bytes.Buffer
	require.NoError(t, e.Ls(&before))

	err := e.CopyIn("missing.txt", "/h")
	require.Error(t, err)
	require.True(t, errors.Is(err, vdfs.ErrNotFound))

	_, _, _, err = e.lookupFile("/h")
	require.ErrorIs(t, err, vdfs.ErrNotFound)

	var after bytes.Buffer
	require.NoError(t, e.Ls(&after))
	require.Equal(t, before.String(), after.String())
}

func TestScenarioDirectoryFullRejection(t *testing.T) {
	// 4 MiB gives 15 inode blocks (480 inodes), enough for 254 files; a
	// 65536-byte volume has only 32 inodes.
	e, hostFS := newEngine(t, 4*1024*1024)
	writeHostFile(t, hostFS, "empty.txt", []byte{})

	// root already holds "." and ".."; 254 more entries fill it to 256.
	for i := 0; i < 254; i++ {
		require.NoError(t, e.CopyIn("empty.txt", "/f"+itoa(i)))
	}

	err := e.CopyIn("empty.txt", "/overflow")
	require.Error(t, err)
	require.True(t, errors.Is(err, vdfs.ErrDirectoryFull))
}

func TestAddBytesZeroIsNoOp(t *testing.T) {
	e, hostFS := newEngine(t, 65536)
	writeHostFile(t, hostFS, "empty.txt", []byte{})
	require.NoError(t, e.CopyIn("empty.txt", "/z"))

	require.NoError(t, e.AddBytes("/z", 0))

	_, in, _, err := e.lookupFile("/z")
	require.NoError(t, err)
	require.Equal(t, uint32(0), in.Size)
}

func TestDeleteBytesBeyondSizeZeroesFile(t *testing.T) {
	e, hostFS := newEngine(t, 65536)
	writeHostFile(t, hostFS, "hello.txt", []byte("hello, world\n"))
	require.NoError(t, e.CopyIn("hello.txt", "/h"))

	require.NoError(t, e.DeleteBytes("/h", 9999))

	_, in, _, err := e.lookupFile("/h")
	require.NoError(t, err)
	require.Equal(t, uint32(0), in.Size)
	require.Equal(t, 0, in.NBlocks())
}

func itoa(i int) string {
	digits := "0123456789"
	if i == 0 {
		return "0"
	}
	var out []byte
	for i > 0 {
		out = append([]byte{digits[i%10]}, out...)
		i /= 10
	}
	return string(out)
}
