package main

import (
	"strings"
	"testing"

	"github.com/go-test/deep"

	"ifjc/internal/compiler"
	"ifjc/internal/diag"
	"ifjc/internal/ifjcode"
)

func strs(ins []ifjcode.Instruction) []string {
	out := make([]string, len(ins))
	for i, in := range ins {
		out[i] = in.String()
	}
	return out
}

func TestSessionFeed(t *testing.T) {
	s := newSession(compiler.DefaultOptions())

	added, err := s.feed("let a = 1\n")
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if diff := deep.Equal(strs(added), []string{"DEFVAR GF@a$1", "PUSHS int@1", "POPS GF@a$1"}); diff != nil {
		t.Fatalf("first chunk: %v", diff)
	}

	added, err = s.feed("func twice(_ x: Int) -> Int {\n    return x * 2\n}\n")
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(added) == 0 || added[0].String() != "LABEL twice" {
		t.Fatalf("expected the function body, got %v", strs(added))
	}

	added, err = s.feed("let b = twice(a)\n")
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	want := []string{"DEFVAR GF@b$3", "PUSHS GF@a$1", "CALL twice", "POPS GF@b$3"}
	if diff := deep.Equal(strs(added), want); diff != nil {
		t.Fatalf("third chunk: %v", diff)
	}
}

func TestSessionIncompleteInput(t *testing.T) {
	s := newSession(compiler.DefaultOptions())
	for _, chunk := range []string{"let a = 1 +\n", "if true {\n", "func f() {\n"} {
		_, err := s.feed(chunk)
		if !diag.IsIncomplete(err) {
			t.Fatalf("%q: expected incomplete input, got %v", chunk, err)
		}
	}
	if _, err := s.feed("if true {\n}\n"); err != nil {
		t.Fatalf("feed: %v", err)
	}
}

func TestSessionForwardCall(t *testing.T) {
	s := newSession(compiler.DefaultOptions())
	_, err := s.feed("greet()\n")
	if !diag.IsIncomplete(err) {
		t.Fatalf("call to a not yet defined function must ask for more input, got %v", err)
	}
	added, err := s.feed("greet()\nfunc greet() {\n    write(\"hi\")\n}\n")
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(added) < 2 || added[0].String() != "CALL greet" {
		t.Fatalf("expected the call followed by the body, got %v", strs(added))
	}
}

func TestSessionErrorKeepsState(t *testing.T) {
	s := newSession(compiler.DefaultOptions())
	if _, err := s.feed("let a = 1\n"); err != nil {
		t.Fatalf("feed: %v", err)
	}
	_, err := s.feed("let a = 2\n")
	if diag.KindOf(err) != diag.Redef {
		t.Fatalf("expected redefinition, got %v", err)
	}
	if diag.IsIncomplete(err) {
		t.Fatalf("redefinition must not ask for more input")
	}
	added, err := s.feed("write(a)\n")
	if err != nil {
		t.Fatalf("feed after error: %v", err)
	}
	if diff := deep.Equal(strs(added), []string{"PUSHS GF@a$1", "PUSHS int@1", "CALL $write"}); diff != nil {
		t.Fatalf("chunk after error: %v", diff)
	}
	if !strings.Contains(s.program(), "LABEL $write") {
		t.Fatalf("program must link $write")
	}
}

func TestSessionCommands(t *testing.T) {
	s := newSession(compiler.DefaultOptions())
	if _, err := s.feed("let a = 1\n"); err != nil {
		t.Fatalf("feed: %v", err)
	}

	var sb strings.Builder
	if s.command(&sb, ":program") {
		t.Fatalf(":program must not exit")
	}
	if !strings.HasPrefix(sb.String(), ifjcode.Header) || !strings.Contains(sb.String(), "POPS GF@a$1") {
		t.Fatalf("unexpected program:\n%s", sb.String())
	}

	sb.Reset()
	s.command(&sb, ":reset")
	if _, err := s.feed("let a = 2\n"); err != nil {
		t.Fatalf("a must be free after :reset: %v", err)
	}

	if !s.command(&sb, ":quit") {
		t.Fatalf(":quit must exit")
	}
}

func TestRunVersionAndHelp(t *testing.T) {
	for _, args := range [][]string{{"version"}, {"help"}} {
		if code := run(args); code != 0 {
			t.Fatalf("%v: exit code %d", args, code)
		}
	}
}

func TestRunCompileMissingFile(t *testing.T) {
	if code := run([]string{"compile", "/nonexistent/prog.swift"}); code != exitUsage {
		t.Fatalf("exit code %d, want %d", code, exitUsage)
	}
}
