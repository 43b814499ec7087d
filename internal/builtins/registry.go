// Package builtins is the registry of the functions every program can call
// without defining them. Each builtin registers its signature and an inline
// code generator from an init function.
package builtins

import (
	"fmt"
	"sort"
	"sync"

	"ifjc/internal/ifjcode"
	"ifjc/internal/types"
)

// ID is a builtin function identifier.
type ID int

const (
	ReadString ID = iota
	ReadInt
	ReadDouble
	Write
	Int2Double
	Double2Int
	Length
	Substring
	Ord
	Chr
)

// Param is a builtin parameter: the label callers must use ("_" for none) and
// its type.
type Param struct {
	Label string
	Type  types.Type
}

type Meta struct {
	ID       ID
	Name     string
	Params   []Param
	Result   types.Type
	Variadic bool // any number of arguments of any value type
}

// Gen emits the body of a call. When it runs the arguments are already on
// the data stack with the first one on top; a non-Void builtin must leave its
// result there. ctx is the label context of the caller.
type Gen func(e *ifjcode.Emitter, ctx string, argc int)

type Builtin struct {
	Meta Meta
	Gen  Gen
}

type registry struct {
	mu     sync.RWMutex
	byID   map[ID]*Builtin
	byName map[string]*Builtin
}

var globalRegistry = &registry{
	byID:   make(map[ID]*Builtin),
	byName: make(map[string]*Builtin),
}

// Register adds a builtin. It panics on a duplicate ID or name.
func Register(b Builtin) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if b.Gen == nil {
		panic(fmt.Sprintf("builtin %s (ID %d) has no code generator", b.Meta.Name, b.Meta.ID))
	}
	if b.Meta.Variadic && len(b.Meta.Params) != 0 {
		panic(fmt.Sprintf("variadic builtin %s must not declare parameters", b.Meta.Name))
	}
	if _, exists := globalRegistry.byID[b.Meta.ID]; exists {
		panic(fmt.Sprintf("builtin ID %d (%s) is already registered", b.Meta.ID, b.Meta.Name))
	}
	if _, exists := globalRegistry.byName[b.Meta.Name]; exists {
		panic(fmt.Sprintf("builtin name %q is already registered", b.Meta.Name))
	}
	globalRegistry.byID[b.Meta.ID] = &b
	globalRegistry.byName[b.Meta.Name] = &b
}

func LookupByID(id ID) *Builtin {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return globalRegistry.byID[id]
}

// LookupByName returns nil if name is not a builtin.
func LookupByName(name string) *Builtin {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return globalRegistry.byName[name]
}

// All returns the metadata of every builtin ordered by ID.
func All() []Meta {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	result := make([]Meta, 0, len(globalRegistry.byID))
	for _, b := range globalRegistry.byID {
		result = append(result, b.Meta)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}
