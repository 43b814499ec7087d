package symtable

import "testing"

func TestHashes(t *testing.T) {
	if got := hash1(""); got != 5381 {
		t.Fatalf("hash1 of empty string = %d", got)
	}
	// 5381*33 + 'a'
	if got := hash1("a"); got != 177670 {
		t.Fatalf("hash1(a) = %d", got)
	}
	// 5381*33 ^ 'a'
	if got := hash2("a"); got != 177604 {
		t.Fatalf("hash2(a) = %d", got)
	}
}

func TestSlotSequenceCoversAllSlots(t *testing.T) {
	const m = 11
	for _, name := range []string{"x", "counter", "readInt", "_tmp"} {
		idx, step := slotSequence(name, m)
		if step == 0 || step >= m {
			t.Fatalf("%s: step %d out of range", name, step)
		}
		seen := map[uint32]bool{}
		for i := 0; i < m; i++ {
			seen[idx] = true
			idx = (idx + step) % m
		}
		if len(seen) != m {
			t.Fatalf("%s: sequence visited %d of %d slots", name, len(seen), m)
		}
	}
}
