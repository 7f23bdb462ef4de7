// Package shell implements the read-eval-print loop that tokenizes a
// command line by single spaces, validates argument arity, and dispatches
// to one vdisk.Engine operation per command — the thin driver described
// as out of scope for the engine itself.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/psatala/vdisk/vdisk"
	"github.com/psatala/vdisk/vlog"
)

// Shell drives one interactive session against an *vdisk.Engine.
type Shell struct {
	engine *vdisk.Engine
	in     *bufio.Scanner
	out    io.Writer
	errOut io.Writer
	prompt string
	log    *vlog.Logger
}

// New returns a Shell reading commands from in and writing output/errors
// to out/errOut, printing prompt before each command.
func New(engine *vdisk.Engine, in io.Reader, out, errOut io.Writer, prompt string, log *vlog.Logger) *Shell {
	return &Shell{
		engine: engine,
		in:     bufio.NewScanner(in),
		out:    out,
		errOut: errOut,
		prompt: prompt,
		log:    log,
	}
}

// Run reads and dispatches commands until "exit" or end of input, then
// closes the engine's backing file.
func (s *Shell) Run() error {
	for {
		fmt.Fprint(s.out, s.prompt)
		if !s.in.Scan() {
			break
		}
		if !s.dispatch(strings.Split(s.in.Text(), " ")) {
			break
		}
	}
	return s.engine.Close()
}

type command struct {
	min, max int
	run      func(s *Shell, args []string)
}

var commands = map[string]command{
	"ls":    {1, 1, func(s *Shell, _ []string) { s.report(s.engine.Ls(s.out)) }},
	"pwd":   {1, 1, func(s *Shell, _ []string) { s.report(s.engine.Pwd(s.out)) }},
	"info":  {1, 1, func(s *Shell, _ []string) { s.report(s.engine.Info(s.out)) }},
	"cd":    {2, 2, func(s *Shell, a []string) { s.report(s.engine.Cd(a[0])) }},
	"mkdir": {2, 2, func(s *Shell, a []string) { s.report(s.engine.Mkdir(a[0])) }},
	"ucp":   {3, 3, func(s *Shell, a []string) { s.report(s.engine.CopyIn(a[0], a[1])) }},
	"dcp":   {3, 3, func(s *Shell, a []string) { s.report(s.engine.CopyOut(a[0], a[1])) }},
	"ab":    {3, 3, func(s *Shell, a []string) { s.runAddBytes(a[0], a[1]) }},
	"db":    {3, 3, func(s *Shell, a []string) { s.runDeleteBytes(a[0], a[1]) }},
	"ln":    {3, 3, func(s *Shell, a []string) { s.report(s.engine.Link(a[0], a[1])) }},
	"rm":    {2, 2, func(s *Shell, a []string) { s.report(s.engine.Unlink(a[0])) }},
	"cat":   {2, 2, func(s *Shell, a []string) { s.report(s.engine.Cat(a[0], s.out)) }},
	"exit":  {1, 1, nil},
}

// dispatch interprets one already-tokenized command line. It returns
// false when the session should end.
func (s *Shell) dispatch(tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	name := tokens[0]
	args := tokens[1:]

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(s.errOut, "%s: command not found!\n", name)
		return true
	}
	if !s.checkArgCount(len(tokens), cmd.min, cmd.max) {
		return true
	}

	s.log.Verbosef("command %q args %v", name, args)

	if name == "exit" {
		return false
	}
	cmd.run(s, args)
	return true
}

func (s *Shell) checkArgCount(argc, min, max int) bool {
	if argc < min {
		fmt.Fprintln(s.errOut, "Too few arguments for this command!")
		return false
	}
	if argc > max {
		fmt.Fprintln(s.errOut, "Too many arguments for this command!")
		return false
	}
	return true
}

func (s *Shell) runAddBytes(vpath, nStr string) {
	n, err := strconv.ParseUint(nStr, 10, 32)
	if err != nil {
		fmt.Fprintln(s.errOut, "Invalid byte count!")
		return
	}
	s.report(s.engine.AddBytes(vpath, uint32(n)))
}

func (s *Shell) runDeleteBytes(vpath, nStr string) {
	n, err := strconv.ParseUint(nStr, 10, 32)
	if err != nil {
		fmt.Fprintln(s.errOut, "Invalid byte count!")
		return
	}
	s.report(s.engine.DeleteBytes(vpath, uint32(n)))
}

func (s *Shell) report(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(s.errOut, messageFor(err))
}
