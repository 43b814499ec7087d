package compiler_test

import (
	"strings"
	"testing"

	"github.com/go-test/deep"

	"ifjc/internal/compiler"
	"ifjc/internal/diag"
	"ifjc/internal/ifjcode"
)

const sample = `// factorial, iterative and recursive
func decrement(of n: Int, by m: Int) -> Int {
    let res = n - m
    return res
}

func factorial(_ n: Int) -> Int {
    var result: Int?
    if n < 2 {
        result = 1
    } else {
        let dec = decrement(of: n, by: 1)
        let tmp = factorial(dec)
        result = n * tmp
    }
    return result!
}

write("Enter a number: ")
let a: Int? = readInt()
if let a {
    if a < 0 {
        write("negative\n")
    } else {
        var i = a
        var acc = 1
        while i > 0 {
            let step = i
            acc = acc * step
            i = i - 1
        }
        let rec = factorial(a)
        write("iterative: ", acc, "\n", "recursive: ", rec, "\n")
        let s = substring(of: "factorial", startingAt: 0, endingBefore: 4) ?? ""
        let t = substring(of: s, startingAt: 1, endingBefore: 2)
        write(s, t ?? "", "\n")
    }
} else {
    write("not a number\n")
}
`

func mustCompile(t *testing.T, src string) *compiler.Output {
	t.Helper()
	out, err := compiler.Compile(src, compiler.DefaultOptions())
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	return out
}

func TestCompileSample(t *testing.T) {
	out := mustCompile(t, sample)
	text := out.String()
	if !strings.HasPrefix(text, ifjcode.Header+"\n") {
		t.Fatalf("missing header:\n%s", text)
	}
	if !strings.Contains(text, "\nEXIT int@0\n") {
		t.Fatalf("missing EXIT")
	}
	for _, want := range []string{"LABEL decrement", "LABEL factorial", "CALL factorial", "CALL $substring"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output", want)
		}
	}
}

func TestDeterministic(t *testing.T) {
	a := mustCompile(t, sample).String()
	b := mustCompile(t, sample).String()
	if a != b {
		t.Fatalf("two compilations of the same source differ")
	}
}

func TestOutputParsesBack(t *testing.T) {
	out := mustCompile(t, sample)
	got, err := ifjcode.Parse(strings.NewReader(out.String()))
	if err != nil {
		t.Fatalf("emitted program does not parse: %v", err)
	}
	if diff := deep.Equal(got, out.Instructions()); diff != nil {
		t.Fatalf("round trip mismatch: %v", diff)
	}
	for _, in := range got {
		if err := in.Validate(); err != nil {
			t.Fatalf("invalid instruction %q: %v", in, err)
		}
	}
}

func TestProgramLayout(t *testing.T) {
	out := mustCompile(t, sample)
	ins := out.Instructions()

	var ops []string
	for _, in := range ins[:2] {
		ops = append(ops, in.String())
	}
	if diff := deep.Equal(ops, []string{"DEFVAR GF@%r0", "DEFVAR GF@%r1"}); diff != nil {
		t.Fatalf("scratch registers: %v", diff)
	}

	index := func(s string) int {
		for i, in := range ins {
			if in.String() == s {
				return i
			}
		}
		return -1
	}
	exit := index("EXIT int@0")
	write := index("LABEL $write")
	substr := index("LABEL $substring")
	fn := index("LABEL decrement")
	if exit < 0 || write < 0 || substr < 0 || fn < 0 {
		t.Fatalf("missing sections: exit=%d write=%d substring=%d decrement=%d", exit, write, substr, fn)
	}
	if !(exit < write && write < substr && substr < fn) {
		t.Fatalf("wrong section order: exit=%d write=%d substring=%d decrement=%d", exit, write, substr, fn)
	}
	if exit != 2+len(out.Globals())+len(out.Main()) {
		t.Fatalf("EXIT at %d, want right after the main sequence", exit)
	}
	if len(ins)-fn != len(out.Funcs()) {
		t.Fatalf("function bodies must close the program")
	}
}

func TestLibraryRoutinesEmittedOnce(t *testing.T) {
	out := mustCompile(t, sample)
	text := out.String()
	for _, label := range []string{"LABEL $write\n", "LABEL $substring\n"} {
		if n := strings.Count(text, label); n != 1 {
			t.Fatalf("%q appears %d times", strings.TrimSpace(label), n)
		}
	}
}

func TestUnusedRoutinesOmitted(t *testing.T) {
	out := mustCompile(t, "let a = 1\n")
	text := out.String()
	if strings.Contains(text, "$write") || strings.Contains(text, "$substring") {
		t.Fatalf("unused routines emitted:\n%s", text)
	}
	want := ifjcode.Header + "\nDEFVAR GF@%r0\nDEFVAR GF@%r1\n" +
		"DEFVAR GF@a$1\nPUSHS int@1\nPOPS GF@a$1\nEXIT int@0\n"
	if text != want {
		t.Fatalf("unexpected program:\n%s", text)
	}
}

func TestGlobalDefinedBeforeEarlyCall(t *testing.T) {
	out := mustCompile(t, "f()\nvar g = 1\nfunc f() {\n    write(g)\n}\n")
	def, call := -1, -1
	for i, in := range out.Instructions() {
		switch in.String() {
		case "DEFVAR GF@g$1":
			def = i
		case "CALL f":
			call = i
		}
	}
	if def < 0 || call < 0 || def > call {
		t.Fatalf("DEFVAR at %d must precede CALL at %d:\n%s", def, call, out)
	}
}

func TestEmptyProgram(t *testing.T) {
	out := mustCompile(t, "")
	if len(out.Main()) != 0 || len(out.Funcs()) != 0 {
		t.Fatalf("empty input produced code")
	}
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  int
	}{
		{"ok", "write(1)\n", 0},
		{"lexical", "let a = 1 @ 2\n", 1},
		{"syntax", "let = 1\n", 2},
		{"redefinition", "var a = 1\nvar a = 2\n", 3},
		{"never defined", "foo()\n", 3},
		{"signature", "func f(a x: Int) {\n}\nf(b: 1)\n", 4},
		{"undefined", "write(x)\n", 5},
		{"return", "func f() {\n return 1\n}\n", 6},
		{"type", "let a = 1 + \"b\"\n", 7},
		{"unknown type", "var a = nil\n", 8},
		{"other", "let a = 1\na = 2\n", 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := compiler.Compile(tt.input, compiler.DefaultOptions())
			if got := diag.ExitCode(err); got != tt.code {
				t.Fatalf("exit code = %d, want %d (%v)", got, tt.code, err)
			}
			if err != nil && out != nil {
				t.Fatalf("partial output returned on error")
			}
		})
	}
}

func TestDiagnosticFormat(t *testing.T) {
	_, err := compiler.Compile("let a = 1\nlet a = 2\n", compiler.DefaultOptions())
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := `SEM_ERR_REDEF - ln 2, col 5: redefinition of "a"`; err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}

func TestScopingLeavesOuterUntouched(t *testing.T) {
	mustCompile(t, `var x: Int?
{
    let x = "inner"
    write(x)
}
let y: Int = x ?? 0
`)
	_, err := compiler.Compile(`var x: Int
{
    let x = 1
}
let y = x
`, compiler.DefaultOptions())
	if diag.KindOf(err) != diag.Undef {
		t.Fatalf("inner initialization leaked to outer x: %v", err)
	}
}

func TestVerboseTrace(t *testing.T) {
	var sb strings.Builder
	opts := compiler.DefaultOptions()
	opts.Verbose = true
	opts.Trace = &sb
	if _, err := compiler.Compile(sample, opts); err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	trace := sb.String()
	for _, want := range []string{"[ifjc] compiling", "[ifjc] linking $write", "[parser] function factorial"} {
		if !strings.Contains(trace, want) {
			t.Fatalf("trace is missing %q:\n%s", want, trace)
		}
	}

	sb.Reset()
	opts.Verbose = false
	if _, err := compiler.Compile(sample, opts); err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if sb.Len() != 0 {
		t.Fatalf("trace written without Verbose: %q", sb.String())
	}
}

func TestCompileReader(t *testing.T) {
	out, err := compiler.CompileReader(strings.NewReader("write(\"hi\")\n"), compiler.DefaultOptions())
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if diff := deep.Equal(out.String(), mustCompile(t, "write(\"hi\")\n").String()); diff != nil {
		t.Fatalf("reader and string compilation differ: %v", diff)
	}
}
