package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"ifjc/internal/compiler"
	"ifjc/internal/diag"
	"ifjc/internal/ifjcode"
)

const (
	historyFile = ".ifjc_history"
	promptMain  = "ifjc> "
	promptCont  = "...   "
)

var banner = fmt.Sprintf("ifjc %s REPL\nEach statement prints the code it adds. Ctrl+C cancels input, Ctrl+D exits.\nCommands: :program, :reset, :quit", version)

// session is the program typed so far. Every chunk is compiled together with
// everything before it; instruction counts from the previous successful
// compilation tell which instructions are new.
type session struct {
	opts    compiler.Options
	src     string
	globals int
	main    int
	funcs   int
	last    *compiler.Output
}

func newSession(opts compiler.Options) *session {
	return &session{opts: opts}
}

// feed compiles the session extended by chunk. On success the chunk becomes
// part of the session and the instructions it added are returned. On error
// the session is left unchanged.
func (s *session) feed(chunk string) ([]ifjcode.Instruction, error) {
	src := s.src + chunk
	out, err := compiler.Compile(src, s.opts)
	if err != nil {
		return nil, err
	}
	globals, main, funcs := out.Globals(), out.Main(), out.Funcs()
	if len(globals) < s.globals || len(main) < s.main || len(funcs) < s.funcs {
		return nil, diag.Internalf("recompilation lost instructions")
	}
	var added []ifjcode.Instruction
	added = append(added, globals[s.globals:]...)
	added = append(added, main[s.main:]...)
	added = append(added, funcs[s.funcs:]...)

	s.src, s.last = src, out
	s.globals, s.main, s.funcs = len(globals), len(main), len(funcs)
	return added, nil
}

func (s *session) reset() {
	*s = session{opts: s.opts}
}

// program renders the complete program of the session.
func (s *session) program() string {
	if s.last == nil {
		out, err := compiler.Compile("", s.opts)
		if err != nil {
			return ""
		}
		return out.String()
	}
	return s.last.String()
}

// command runs a :command and reports whether the REPL should exit.
func (s *session) command(w io.Writer, cmd string) bool {
	switch strings.ToLower(cmd) {
	case ":quit", ":q":
		return true
	case ":program":
		fmt.Fprint(w, s.program())
	case ":reset":
		s.reset()
		fmt.Fprintln(w, "session cleared")
	default:
		fmt.Fprintln(w, "unknown command. Commands: :program, :reset, :quit")
	}
	return false
}

// -------------- REPL --------------

func cmdRepl(_ []string) int {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	s := newSession(compiler.DefaultOptions())
	var buf strings.Builder
	for {
		prompt := promptMain
		if buf.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			buf.Reset()
			continue
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return exitUsage
		}

		if buf.Len() == 0 {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, ":") {
				if s.command(os.Stdout, trimmed) {
					return 0
				}
				continue
			}
		}

		buf.WriteString(line)
		buf.WriteByte('\n')
		added, err := s.feed(buf.String())
		if diag.IsIncomplete(err) {
			continue
		}
		ln.AppendHistory(strings.Join(strings.Fields(buf.String()), " "))
		buf.Reset()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		for _, in := range added {
			fmt.Println(in)
		}
	}
}
