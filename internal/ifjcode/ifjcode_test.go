package ifjcode_test

import (
	"strings"
	"testing"

	"github.com/go-test/deep"

	"ifjc/internal/ifjcode"
	"ifjc/internal/token"
)

func lines(ins []ifjcode.Instruction) []string {
	out := make([]string, len(ins))
	for i, in := range ins {
		out[i] = in.String()
	}
	return out
}

func TestEscape(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"abc", "abc"},
		{"a b", `a\032b`},
		{`a\b`, `a\092b`},
		{"#", `\035`},
		{"x\ny", `x\010y`},
		{"\r", `\013`},
		{"\t", `\009`},
		{"\x00\x07", `\000\007`},
		{`"q"`, `\034q\034`},
		{"žluťoučký", "žluťoučký"},
	}
	for _, tt := range tests {
		if got := ifjcode.Escape(tt.in); got != tt.want {
			t.Errorf("Escape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEncodeConstant(t *testing.T) {
	tests := []struct {
		kind token.Kind
		lit  string
		want string
	}{
		{token.Int, "42", "int@42"},
		{token.Int, "007", "int@7"},
		{token.Double, "3.14", "float@0x1.91eb851eb851fp+1"},
		{token.Double, "1.0", "float@0x1p+0"},
		{token.Double, "0.0", "float@0x0p+0"},
		{token.Double, "1e10", "float@0x1.2a05f2p+33"},
		{token.Double, "0.5", "float@0x1p-1"},
		{token.String, "hello world", `string@hello\032world`},
		{token.String, "", "string@"},
		{token.True, "true", "bool@true"},
		{token.False, "false", "bool@false"},
		{token.Nil, "nil", "nil@nil"},
	}
	for _, tt := range tests {
		got, err := ifjcode.EncodeConstant(tt.kind, tt.lit)
		if err != nil {
			t.Fatalf("EncodeConstant(%s, %q): %v", tt.kind, tt.lit, err)
		}
		if got != tt.want {
			t.Errorf("EncodeConstant(%s, %q) = %q, want %q", tt.kind, tt.lit, got, tt.want)
		}
	}

	if _, err := ifjcode.EncodeConstant(token.Int, "99999999999999999999"); err == nil {
		t.Fatalf("expected out of range integer to fail")
	}
	if _, err := ifjcode.EncodeConstant(token.Ident, "x"); err == nil {
		t.Fatalf("expected identifier to be rejected")
	}
}

func TestUniqueNamesAndLabels(t *testing.T) {
	e := ifjcode.NewEmitter()
	got := []string{
		e.UniqueName(ifjcode.GF, "x"),
		e.UniqueName(ifjcode.LF, "y"),
		e.UniqueLabel("", "if"),
		e.UniqueLabel("fn", "while"),
		e.UniqueName(ifjcode.GF, "x"),
	}
	want := []string{"GF@x$1", "LF@y$2", "&if1", "fn&while2", "GF@x$3"}
	if diff := deep.Equal(got, want); diff != nil {
		t.Fatalf("names mismatch: %v", diff)
	}

	other := ifjcode.NewEmitter()
	if n := other.UniqueName(ifjcode.GF, "x"); n != "GF@x$1" {
		t.Fatalf("counters must be per emitter, got %s", n)
	}
}

func TestEmitArityValidation(t *testing.T) {
	e := ifjcode.NewEmitter()
	e.Emit(ifjcode.OpPushS, "int@1")
	if e.Err() != nil {
		t.Fatalf("unexpected error: %v", e.Err())
	}
	if idx := e.Emit(ifjcode.OpAdd, "GF@a"); idx != -1 {
		t.Fatalf("expected invalid instruction to be dropped")
	}
	if e.Err() == nil {
		t.Fatalf("expected arity error")
	}
	if _, err := e.WriteTo(&strings.Builder{}); err == nil {
		t.Fatalf("expected WriteTo to report the emission error")
	}
}

func TestSequencesAndPrologue(t *testing.T) {
	e := ifjcode.NewEmitter()
	e.Emit(ifjcode.OpDefVar, "GF@a$1")

	e.InFunc = true
	e.EmitFunctionPrologue("f", []string{"LF@x$2", "LF@y$3"})
	e.Emit(ifjcode.OpPushS, "LF@x$2")
	e.EmitFunctionEpilogue()
	e.InFunc = false

	err := e.EmitCall("f", 2, func(i int) error {
		e.Emit(ifjcode.OpPushS, ifjcode.Int(int64(i)))
		return nil
	})
	if err != nil {
		t.Fatalf("EmitCall: %v", err)
	}

	wantMain := []string{
		"DEFVAR GF@a$1",
		"PUSHS int@1",
		"PUSHS int@0",
		"CALL f",
	}
	if diff := deep.Equal(lines(e.Main()), wantMain); diff != nil {
		t.Fatalf("main mismatch: %v", diff)
	}

	wantFuncs := []string{
		"LABEL f",
		"CREATEFRAME",
		"PUSHFRAME",
		"DEFVAR LF@x$2",
		"POPS LF@x$2",
		"DEFVAR LF@y$3",
		"POPS LF@y$3",
		"PUSHS LF@x$2",
		"POPFRAME",
		"RETURN",
	}
	if diff := deep.Equal(lines(e.Funcs()), wantFuncs); diff != nil {
		t.Fatalf("funcs mismatch: %v", diff)
	}
}

func TestLoopHoistedDecls(t *testing.T) {
	e := ifjcode.NewEmitter()
	e.Emit(ifjcode.OpPushS, "int@0")
	e.Emit(ifjcode.OpLabel, "&while1")
	e.Emit(ifjcode.OpMove, "GF@i$1", "int@1")
	e.Emit(ifjcode.OpJump, "&while1")

	if err := e.EmitLoopHoistedDecls("&while1", []string{"GF@i$1", "GF@j$2"}); err != nil {
		t.Fatalf("EmitLoopHoistedDecls: %v", err)
	}
	want := []string{
		"PUSHS int@0",
		"DEFVAR GF@i$1",
		"DEFVAR GF@j$2",
		"LABEL &while1",
		"MOVE GF@i$1 int@1",
		"JUMP &while1",
	}
	if diff := deep.Equal(lines(e.Main()), want); diff != nil {
		t.Fatalf("hoisting mismatch: %v", diff)
	}

	if err := e.EmitLoopHoistedDecls("&missing", []string{"GF@k$3"}); err == nil {
		t.Fatalf("expected error for unknown label")
	}
}

func TestProgramLayout(t *testing.T) {
	e := ifjcode.NewEmitter()
	e.Emit(ifjcode.OpPushS, "int@1")
	e.DeclareGlobal("GF@a$1")
	e.InFunc = true
	e.EmitFunctionPrologue("g", nil)
	e.EmitFunctionEpilogue()
	e.InFunc = false
	e.Use(ifjcode.Substring)
	e.Use(ifjcode.Write)
	e.Use(ifjcode.Write)

	text := e.String()
	if !strings.HasPrefix(text, ".IFJcode23\nDEFVAR GF@%r0\nDEFVAR GF@%r1\nDEFVAR GF@a$1\nPUSHS int@1\nEXIT int@0\nLABEL $write\n") {
		t.Fatalf("unexpected program start:\n%s", text)
	}
	if strings.Count(text, "LABEL $write\n") != 1 || strings.Count(text, "LABEL $substring\n") != 1 {
		t.Fatalf("library routines must appear exactly once:\n%s", text)
	}
	if !strings.HasSuffix(text, "LABEL g\nCREATEFRAME\nPUSHFRAME\nPOPFRAME\nRETURN\n") {
		t.Fatalf("function bodies must come last:\n%s", text)
	}

	parsed, err := ifjcode.Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := deep.Equal(parsed, e.Program()); diff != nil {
		t.Fatalf("parsed program differs: %v", diff)
	}
}

func TestGlobalsPrecedeMain(t *testing.T) {
	e := ifjcode.NewEmitter()
	e.Emit(ifjcode.OpCall, "f")
	e.DeclareGlobal("GF@g$1")
	e.Emit(ifjcode.OpPushS, "int@1")

	if diff := deep.Equal(lines(e.Globals()), []string{"DEFVAR GF@g$1"}); diff != nil {
		t.Fatalf("globals mismatch: %v", diff)
	}
	if diff := deep.Equal(lines(e.Main()), []string{"CALL f", "PUSHS int@1"}); diff != nil {
		t.Fatalf("main mismatch: %v", diff)
	}
	got := lines(e.Program())
	want := []string{"DEFVAR GF@%r0", "DEFVAR GF@%r1", "DEFVAR GF@g$1", "CALL f", "PUSHS int@1", "EXIT int@0"}
	if diff := deep.Equal(got, want); diff != nil {
		t.Fatalf("program mismatch: %v", diff)
	}
}

func TestUnusedRoutinesOmitted(t *testing.T) {
	e := ifjcode.NewEmitter()
	text := e.String()
	if strings.Contains(text, "$write") || strings.Contains(text, "$substring") {
		t.Fatalf("unused routines must not be emitted:\n%s", text)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []string{
		"PUSHS int@1\n",
		".IFJcode23\nFOO a\n",
		".IFJcode23\nMOVE GF@a\n",
	}
	for _, src := range tests {
		if _, err := ifjcode.Parse(strings.NewReader(src)); err == nil {
			t.Errorf("expected Parse(%q) to fail", src)
		}
	}
}

func TestOpCodeLookup(t *testing.T) {
	op, ok := ifjcode.LookupOpCode("jumpifeqs")
	if !ok || op != ifjcode.OpJumpIfEqS || op.Arity() != 1 {
		t.Fatalf("unexpected lookup result %s %v", op, ok)
	}
	if _, ok := ifjcode.LookupOpCode("INVALID"); ok {
		t.Fatalf("INVALID must not resolve")
	}
}
