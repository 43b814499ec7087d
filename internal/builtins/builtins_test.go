package builtins_test

import (
	"testing"

	"github.com/go-test/deep"

	"ifjc/internal/builtins"
	"ifjc/internal/ifjcode"
	"ifjc/internal/types"
)

func TestAllBuiltinsRegistered(t *testing.T) {
	var names []string
	for _, m := range builtins.All() {
		names = append(names, m.Name)
	}
	want := []string{
		"readString", "readInt", "readDouble", "write", "Int2Double",
		"Double2Int", "length", "substring", "ord", "chr",
	}
	if diff := deep.Equal(names, want); diff != nil {
		t.Fatalf("builtin set mismatch: %v", diff)
	}
}

func TestSignatures(t *testing.T) {
	sub := builtins.LookupByName("substring")
	if sub == nil {
		t.Fatalf("substring not registered")
	}
	want := builtins.Meta{
		ID:   builtins.Substring,
		Name: "substring",
		Params: []builtins.Param{
			{Label: "of", Type: types.String},
			{Label: "startingAt", Type: types.Int},
			{Label: "endingBefore", Type: types.Int},
		},
		Result: types.StringNil,
	}
	if diff := deep.Equal(sub.Meta, want); diff != nil {
		t.Fatalf("substring signature mismatch: %v", diff)
	}

	if w := builtins.LookupByID(builtins.Write); w == nil || !w.Meta.Variadic || w.Meta.Result != types.Void {
		t.Fatalf("write must be a variadic Void builtin")
	}
	if builtins.LookupByName("print") != nil {
		t.Fatalf("print is not a builtin")
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	builtins.Register(builtins.Builtin{
		Meta: builtins.Meta{ID: builtins.Chr, Name: "chr2", Result: types.String},
		Gen:  func(*ifjcode.Emitter, string, int) {},
	})
}

func TestGenerators(t *testing.T) {
	tests := []struct {
		name string
		argc int
		want []string
	}{
		{"readInt", 0, []string{"READ GF@%r0 int", "PUSHS GF@%r0"}},
		{"readDouble", 0, []string{"READ GF@%r0 float", "PUSHS GF@%r0"}},
		{"Int2Double", 1, []string{"INT2FLOATS"}},
		{"length", 1, []string{"POPS GF@%r0", "STRLEN GF@%r0 GF@%r0", "PUSHS GF@%r0"}},
		{"write", 3, []string{"PUSHS int@3", "CALL $write"}},
		{"substring", 3, []string{"CALL $substring"}},
		{"ord", 1, []string{
			"POPS GF@%r0",
			"STRLEN GF@%r1 GF@%r0",
			"JUMPIFEQ &ord1 GF@%r1 int@0",
			"STRI2INT GF@%r1 GF@%r0 int@0",
			"LABEL &ord1",
			"PUSHS GF@%r1",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ifjcode.NewEmitter()
			b := builtins.LookupByName(tt.name)
			b.Gen(e, "", tt.argc)
			var got []string
			for _, in := range e.Main() {
				got = append(got, in.String())
			}
			if diff := deep.Equal(got, tt.want); diff != nil {
				t.Fatalf("code mismatch: %v", diff)
			}
			if e.Err() != nil {
				t.Fatalf("emission error: %v", e.Err())
			}
		})
	}

	e := ifjcode.NewEmitter()
	builtins.LookupByName("write").Gen(e, "", 1)
	if !e.Uses(ifjcode.Write) {
		t.Fatalf("write must reference the library routine")
	}
}
