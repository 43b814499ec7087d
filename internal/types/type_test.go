package types_test

import (
	"testing"

	"ifjc/internal/token"
	"ifjc/internal/types"
)

func TestAssignable(t *testing.T) {
	tests := []struct {
		dst, src types.Type
		want     bool
	}{
		{types.Int, types.Int, true},
		{types.IntNil, types.Int, true},
		{types.IntNil, types.Nil, true},
		{types.Int, types.Nil, false},
		{types.Int, types.IntNil, false},
		{types.Double, types.Int, false},
		{types.String, types.Int, false},
		{types.BoolNil, types.Bool, true},
		{types.Unknown, types.String, true},
		{types.Double, types.Unknown, true},
		{types.StringNil, types.IntNil, false},
	}
	for _, tt := range tests {
		if got := types.Assignable(tt.dst, tt.src); got != tt.want {
			t.Errorf("Assignable(%s, %s) = %v, want %v", tt.dst, tt.src, got, tt.want)
		}
	}
}

func TestPromotes(t *testing.T) {
	if !types.Promotes(types.Double, types.Int, true) {
		t.Fatalf("expected Int constant to promote into Double")
	}
	if !types.Promotes(types.DoubleNil, types.Int, true) {
		t.Fatalf("expected Int constant to promote into Double?")
	}
	if types.Promotes(types.Double, types.Int, false) {
		t.Fatalf("expected Int variable not to promote")
	}
}

func TestBaseOptional(t *testing.T) {
	for _, b := range []types.Type{types.Int, types.Double, types.String, types.Bool} {
		opt := types.Optional(b)
		if !types.IsNilable(opt) {
			t.Fatalf("%s: expected nilable, got %s", b, opt)
		}
		if types.Base(opt) != b {
			t.Fatalf("%s: Base(Optional) = %s", b, types.Base(opt))
		}
		if types.IsNilable(b) {
			t.Fatalf("%s should not be nilable", b)
		}
	}
	if types.IntNil.String() != "Int?" {
		t.Fatalf("unexpected name %q", types.IntNil.String())
	}
}

func TestFromToken(t *testing.T) {
	tests := map[token.Kind]types.Type{
		token.IntType:       types.Int,
		token.DoubleNilType: types.DoubleNil,
		token.StringType:    types.String,
		token.BoolNilType:   types.BoolNil,
	}
	for k, want := range tests {
		got, ok := types.FromToken(k)
		if !ok || got != want {
			t.Errorf("FromToken(%s) = %s, %v; want %s", k, got, ok, want)
		}
	}
	if _, ok := types.FromToken(token.Ident); ok {
		t.Fatalf("identifier is not a type")
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		a, b types.Type
		want types.Type
		ok   bool
	}{
		{types.Int, types.Int, types.Int, true},
		{types.Int, types.Nil, types.IntNil, true},
		{types.Nil, types.StringNil, types.StringNil, true},
		{types.DoubleNil, types.Double, types.DoubleNil, true},
		{types.Unknown, types.Bool, types.Bool, true},
		{types.Int, types.Double, types.Unknown, false},
		{types.Nil, types.Void, types.Unknown, false},
	}
	for _, tt := range tests {
		got, ok := types.Join(tt.a, tt.b)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Join(%s, %s) = %s, %v; want %s, %v", tt.a, tt.b, got, ok, tt.want, tt.ok)
		}
	}
}
