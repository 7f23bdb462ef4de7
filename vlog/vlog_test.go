package vlog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerbosefWritesWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	l := New(true, &buf)

	l.Verbosef("opened %s", "vDisk.vdf")

	require.Contains(t, buf.String(), "opened vDisk.vdf")
	require.Contains(t, buf.String(), l.ID().String())
}

func TestVerbosefIsSilentWhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	l := New(false, &buf)

	l.Verbosef("opened %s", "vDisk.vdf")

	require.Empty(t, buf.String())
}

func TestVerbosefOnNilLoggerIsNoOp(t *testing.T) {
	var l *Logger
	require.NotPanics(t, func() { l.Verbosef("no-op") })
}
