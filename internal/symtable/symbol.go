package symtable

import (
	"fmt"

	"ifjc/internal/token"
	"ifjc/internal/types"
)

type SymbolKind int

const (
	SymVar SymbolKind = iota
	SymFunc
)

// FuncState tells whether a function signature comes from its definition or
// was inferred from a call that preceded the definition.
type FuncState int

const (
	Pending FuncState = iota
	Defined
)

type Symbol struct {
	Name string
	Kind SymbolKind

	// Type is the variable's type or the function's return type.
	Type types.Type

	// Code is the target name: a frame-qualified variable or a function label.
	Code string

	// variables
	Let  bool
	Init bool
	// Origin is set when Type is Unknown because the initializer was the
	// result of a function not defined yet.
	Origin *Deferred

	// functions
	Params    []Param
	Variadic  bool
	Builtin   bool
	State     FuncState
	FirstCall token.Position

	waiting []*constraint
}

// Param is one function parameter. Label is the name callers write before
// the argument ("_" when the argument is unlabeled); ID is the name bound
// inside the body.
type Param struct {
	Label string
	ID    string
	Type  types.Type
}

// Arg describes one argument at a call site.
type Arg struct {
	Label    string
	Type     types.Type
	IntConst bool
}

// Deferred is the type of a value computed by a function that is not defined
// yet: its result, or the non-nilable form of it when Unwrap is set.
type Deferred struct {
	Fn     *Symbol
	Unwrap bool
}

// Resolve returns the type once Fn is defined and Unknown before.
func (d *Deferred) Resolve() types.Type {
	if d == nil || d.Fn.State != Defined {
		return types.Unknown
	}
	if d.Unwrap {
		return types.Base(d.Fn.Type)
	}
	return d.Fn.Type
}

// ValueType is the variable's type, looked through Origin once it resolves.
func (s *Symbol) ValueType() types.Type {
	if s.Type == types.Unknown && s.Origin != nil {
		return s.Origin.Resolve()
	}
	return s.Type
}

// constraint is a check of a use of pending function results. It runs once
// every function in deps is defined.
type constraint struct {
	deps  []*Symbol
	check func() error
}

func (c *constraint) ready() bool {
	for _, d := range c.deps {
		if d.State != Defined {
			return false
		}
	}
	return true
}

// Postpone runs check once every function in fns is defined: right away when
// none of them is pending, otherwise from the Define call that settles the
// last one. That Define call returns the check's error.
func Postpone(fns []*Symbol, check func() error) error {
	c := &constraint{check: check}
	seen := make(map[*Symbol]bool)
	for _, fn := range fns {
		if fn == nil || seen[fn] || fn.State != Pending {
			continue
		}
		seen[fn] = true
		c.deps = append(c.deps, fn)
	}
	if len(c.deps) == 0 {
		return check()
	}
	for _, fn := range c.deps {
		fn.waiting = append(fn.waiting, c)
	}
	return nil
}

func NewVar(name string, typ types.Type, let, init bool, code string) *Symbol {
	return &Symbol{Name: name, Kind: SymVar, Type: typ, Let: let, Init: init, Code: code}
}

// NewPendingFunc records a function first seen at a call site. The call's
// arguments become the tentative signature.
func NewPendingFunc(name, code string, pos token.Position, args []Arg) *Symbol {
	params := make([]Param, len(args))
	for i, a := range args {
		params[i] = Param{Label: a.Label, Type: a.Type}
	}
	return &Symbol{
		Name:      name,
		Kind:      SymFunc,
		Type:      types.Unknown,
		Code:      code,
		Params:    params,
		State:     Pending,
		FirstCall: pos,
	}
}

func NewFunc(name, code string, params []Param, result types.Type) *Symbol {
	return &Symbol{
		Name:   name,
		Kind:   SymFunc,
		Type:   result,
		Code:   code,
		Params: params,
		State:  Defined,
	}
}

// UnifyCall checks a call against the function's signature. For a defined
// function it reports which arguments are integer constants that must be
// converted to Double. For a pending one the recorded parameter types are
// widened to cover this call as well.
func (s *Symbol) UnifyCall(args []Arg) ([]bool, error) {
	if s.Kind != SymFunc {
		return nil, fmt.Errorf("%q is not a function", s.Name)
	}
	promote := make([]bool, len(args))
	if s.Variadic {
		return promote, nil
	}
	if len(args) != len(s.Params) {
		return nil, fmt.Errorf("function %q expects %d argument(s), got %d", s.Name, len(s.Params), len(args))
	}
	for i, a := range args {
		p := s.Params[i]
		if a.Label != p.Label {
			return nil, fmt.Errorf("argument %d of %q: expected label %q, got %q", i+1, s.Name, p.Label, a.Label)
		}
	}

	if s.State == Pending {
		joined := make([]types.Type, len(args))
		for i, a := range args {
			t, ok := types.Join(s.Params[i].Type, a.Type)
			if !ok {
				return nil, fmt.Errorf("argument %d of %q: %s conflicts with %s from an earlier call",
					i+1, s.Name, a.Type, s.Params[i].Type)
			}
			joined[i] = t
		}
		for i, t := range joined {
			s.Params[i].Type = t
		}
		return promote, nil
	}

	for i, a := range args {
		p := s.Params[i]
		switch {
		case types.Promotes(p.Type, a.Type, a.IntConst):
			promote[i] = true
		case !types.Assignable(p.Type, a.Type) || a.Type == types.Void:
			return nil, fmt.Errorf("argument %d of %q: cannot pass %s as %s", i+1, s.Name, a.Type, p.Type)
		}
	}
	return promote, nil
}

// Define turns the symbol into a defined function. A pending signature must
// agree with the definition: same arity and labels, and every type recorded
// from a call must be assignable to the declared parameter type. Checks
// postponed on the result type run last.
func (s *Symbol) Define(params []Param, result types.Type) error {
	if s.Kind != SymFunc || s.State == Defined {
		return fmt.Errorf("redefinition of %q", s.Name)
	}
	if len(params) != len(s.Params) {
		return fmt.Errorf("function %q is defined with %d parameter(s) but was called with %d",
			s.Name, len(params), len(s.Params))
	}
	for i, p := range params {
		called := s.Params[i]
		if p.Label != called.Label {
			return fmt.Errorf("parameter %d of %q: defined with label %q but was called with %q",
				i+1, s.Name, p.Label, called.Label)
		}
		if !types.Assignable(p.Type, called.Type) {
			return fmt.Errorf("parameter %d of %q: declared %s but was called with %s",
				i+1, s.Name, p.Type, called.Type)
		}
	}
	s.Params = params
	s.Type = result
	s.State = Defined

	waiting := s.waiting
	s.waiting = nil
	for _, c := range waiting {
		if !c.ready() {
			continue
		}
		if err := c.check(); err != nil {
			return err
		}
	}
	return nil
}
