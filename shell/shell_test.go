package shell

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/psatala/vdisk/store"
	"github.com/psatala/vdisk/vdfs"
	"github.com/psatala/vdisk/vdisk"
	"github.com/psatala/vdisk/vlog"
)

func newTestShell(t *testing.T, script string) (*Shell, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	backingFS := afero.NewMemMapFs()
	dev, err := store.Open(backingFS, "vDisk.vdf", 65536)
	require.NoError(t, err)

	hostFS := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(hostFS, "hello.txt", []byte("hello, world\n"), 0644))

	log := vlog.New(false, nil)
	engine, err := vdisk.Open(dev, hostFS, log)
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	s := New(engine, strings.NewReader(script), &out, &errOut, vdfs.DefaultPrompt, log)
	return s, &out, &errOut
}

func TestUnknownCommandReportsNotFound(t *testing.T) {
	s, _, errOut := newTestShell(t, "frobnicate\nexit\n")
	require.NoError(t, s.Run())
	require.Contains(t, errOut.String(), "frobnicate: command not found!")
}

func TestArityTooFewAndTooMany(t *testing.T) {
	s, _, errOut := newTestShell(t, "cd\ncd a b\nexit\n")
	require.NoError(t, s.Run())
	require.Contains(t, errOut.String(), "Too few arguments for this command!")
	require.Contains(t, errOut.String(), "Too many arguments for this command!")
}

func TestScenarioMkdirCdPwd(t *testing.T) {
	s, out, errOut := newTestShell(t, "mkdir d\ncd d\npwd\ncd ..\npwd\nexit\n")
	require.NoError(t, s.Run())
	require.Empty(t, errOut.String())
	require.Contains(t, out.String(), "/d\n")
	require.Contains(t, out.String(), "/\n")
}

func TestScenarioUcpAndCat(t *testing.T) {
	s, out, errOut := newTestShell(t, "ucp hello.txt /h\ncat /h\nexit\n")
	require.NoError(t, s.Run())
	require.Empty(t, errOut.String())
	require.Contains(t, out.String(), "hello, world\n")
}

func TestRmMissingFileReportsNoSuchFile(t *testing.T) {
	s, _, errOut := newTestShell(t, "rm /nope\nexit\n")
	require.NoError(t, s.Run())
	require.Contains(t, errOut.String(), "No such file exists!")
}

func TestExitStopsTheLoopWithoutProcessingFurtherInput(t *testing.T) {
	s, _, errOut := newTestShell(t, "exit\nls\n")
	require.NoError(t, s.Run())
	require.Empty(t, errOut.String())
}
