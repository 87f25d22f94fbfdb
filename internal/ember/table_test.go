package ember

import "testing"

func TestTableSetGetDelete(t *testing.T) {
	tbl := newTable()
	key := Number(1)
	tbl.Set(key, Number(42))
	if got := tbl.Get(key); !got.Equal(Number(42)) {
		t.Fatalf("Get after Set = %v, want 42", got)
	}
	if tbl.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tbl.Len())
	}

	// assigning Nil deletes the key (spec.md §4.6).
	tbl.Set(key, Nil)
	if got := tbl.Get(key); !got.IsNil() {
		t.Fatalf("Get after delete-via-nil = %v, want Nil", got)
	}
	if tbl.Len() != 0 {
		t.Fatalf("Len() after delete = %d, want 0", tbl.Len())
	}
}

func TestTableTombstoneKeepsProbeChainIntact(t *testing.T) {
	tbl := newTable()
	// Force a handful of entries into the same small table so at least
	// one collides and probes past a tombstone.
	keys := make([]Value, 0, 8)
	for i := 0; i < 8; i++ {
		k := Number(float64(i))
		keys = append(keys, k)
		tbl.Set(k, Number(float64(i*10)))
	}
	// Delete a couple of entries, leaving tombstones behind.
	tbl.Delete(keys[2])
	tbl.Delete(keys[5])
	// Every surviving key must still be reachable.
	for i, k := range keys {
		if i == 2 || i == 5 {
			continue
		}
		want := Number(float64(i * 10))
		if got := tbl.Get(k); !got.Equal(want) {
			t.Fatalf("Get(%v) = %v, want %v after tombstones left behind", k, got, want)
		}
	}
}

func TestTableGrowthPreservesEntries(t *testing.T) {
	tbl := newTable()
	const n = 200
	for i := 0; i < n; i++ {
		tbl.Set(Number(float64(i)), Number(float64(i*i)))
	}
	if tbl.Len() != n {
		t.Fatalf("Len() = %d, want %d", tbl.Len(), n)
	}
	for i := 0; i < n; i++ {
		want := Number(float64(i * i))
		if got := tbl.Get(Number(float64(i))); !got.Equal(want) {
			t.Fatalf("Get(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestTableNeverStoresNilOrUndefinedAsLiveKey(t *testing.T) {
	tbl := newTable()
	// Setting with a Nil value is a delete, not an insertion, even for a
	// key never seen before (invariant 7 of spec.md §4.6).
	tbl.Set(Number(1), Nil)
	if tbl.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 after Set(_, Nil) on an absent key", tbl.Len())
	}
}

func TestFindStringMatchesInternedContent(t *testing.T) {
	vm := New(DefaultOptions())
	s := vm.Intern("needle")
	hash := hashString("needle")
	if got := vm.Strings.FindString("needle", hash); got != s {
		t.Fatalf("FindString did not return the interned string")
	}
	if got := vm.Strings.FindString("absent", hashString("absent")); got != nil {
		t.Fatalf("FindString found a string that was never interned")
	}
}
