// Package symtable implements the block-scoped symbol table. Each block is an
// open-addressed table of prime capacity searched with double hashing.
package symtable

import (
	"errors"
	"fmt"
)

// DefaultCapacity is the slot count of every block. It must be prime.
const DefaultCapacity = 1021

var (
	ErrTableFull = errors.New("symbol table block is full")
	ErrRedefined = errors.New("symbol already defined in this block")
)

type block struct {
	slots   []*Symbol
	count   int
	parent  *block
	returns bool
}

type Table struct {
	capacity int
	global   *block
	current  *block
	depth    int
}

func New() *Table {
	t, _ := NewWithCapacity(DefaultCapacity)
	return t
}

func NewWithCapacity(capacity int) (*Table, error) {
	if capacity < 3 || !isPrime(capacity) {
		return nil, fmt.Errorf("symbol table capacity %d is not a prime >= 3", capacity)
	}
	t := &Table{capacity: capacity}
	t.global = t.newBlock(nil)
	t.current = t.global
	return t, nil
}

func (t *Table) newBlock(parent *block) *block {
	return &block{slots: make([]*Symbol, t.capacity), parent: parent}
}

func (t *Table) PushBlock() {
	t.current = t.newBlock(t.current)
	t.depth++
}

// PopBlock drops the innermost block with every symbol in it and reports
// whether that block was return-guaranteed. The global block is never popped.
func (t *Table) PopBlock() bool {
	if t.current == t.global {
		return false
	}
	returns := t.current.returns
	t.current = t.current.parent
	t.depth--
	return returns
}

// Depth is 0 at global scope.
func (t *Table) Depth() int {
	return t.depth
}

func (t *Table) SetReturns(v bool) {
	t.current.returns = v
}

// Lookup searches from the innermost block outward.
func (t *Table) Lookup(name string) *Symbol {
	for b := t.current; b != nil; b = b.parent {
		if sym := b.find(name); sym != nil {
			return sym
		}
	}
	return nil
}

func (t *Table) LookupLocal(name string) *Symbol {
	return t.current.find(name)
}

func (t *Table) LookupGlobal(name string) *Symbol {
	return t.global.find(name)
}

func (t *Table) InsertLocal(sym *Symbol) error {
	return t.current.insert(sym)
}

func (t *Table) InsertGlobal(sym *Symbol) error {
	return t.global.insert(sym)
}

func (b *block) find(name string) *Symbol {
	m := uint32(len(b.slots))
	idx, step := slotSequence(name, m)
	for i := uint32(0); i < m; i++ {
		sym := b.slots[idx]
		if sym == nil {
			return nil
		}
		if sym.Name == name {
			return sym
		}
		idx = (idx + step) % m
	}
	return nil
}

func (b *block) insert(sym *Symbol) error {
	m := uint32(len(b.slots))
	// one slot always stays empty so lookups terminate
	if b.count >= int(m)-1 {
		return fmt.Errorf("%w: cannot insert %q", ErrTableFull, sym.Name)
	}
	idx, step := slotSequence(sym.Name, m)
	for i := uint32(0); i < m; i++ {
		cur := b.slots[idx]
		if cur == nil {
			b.slots[idx] = sym
			b.count++
			return nil
		}
		if cur.Name == sym.Name {
			return fmt.Errorf("%w: %q", ErrRedefined, sym.Name)
		}
		idx = (idx + step) % m
	}
	return fmt.Errorf("%w: cannot insert %q", ErrTableFull, sym.Name)
}

// slotSequence returns the first slot and the step of the slot sequence for name.
// With m prime every step in [1, m-1] visits all slots.
func slotSequence(name string, m uint32) (uint32, uint32) {
	return hash1(name) % m, hash2(name)%(m-1) + 1
}

// hash1 is djb2.
func hash1(s string) uint32 {
	h := uint32(5381)
	for i := 0; i < len(s); i++ {
		h = h*33 + uint32(s[i])
	}
	return h
}

// hash2 is the xor variant of djb2.
func hash2(s string) uint32 {
	h := uint32(5381)
	for i := 0; i < len(s); i++ {
		h = h*33 ^ uint32(s[i])
	}
	return h
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	for d := 2; d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}
	return true
}
