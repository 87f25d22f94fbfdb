package ember

// fallbackTableMaxLoad is newTable()'s default, used verbatim only by
// callers that construct a Table directly rather than through
// Heap.allocTable (unit tests with no VM to read Options.TableMaxLoad
// from). Every Table the VM itself allocates gets its load factor
// overwritten by allocTable from the owning VM's Options.TableMaxLoad
// instead.
const fallbackTableMaxLoad = 0.75

// tableEntry is one slot in a Table's open-addressed backing array. A
// present entry with Key.IsUndefined() is a tombstone left by a delete.
type tableEntry struct {
	Key   Value
	Value Value
}

// Table is an open-addressed hash map from Value to Value (spec.md
// §4.6). It never stores Nil or Undefined as a live key (invariant 7);
// assigning Nil as a value deletes the key.
type Table struct {
	Header
	entries []tableEntry
	count   int // live entries + tombstones
	live    int // live entries only
	maxLoad float64
}

func newTable() *Table {
	return &Table{Header: Header{Kind: ObjKindTable}, maxLoad: fallbackTableMaxLoad}
}

func (t *Table) Size() int { return 32 + len(t.entries)*48 }

func (t *Table) Trace(mark func(Value)) {
	for _, e := range t.entries {
		if e.Key.IsUndefined() {
			continue
		}
		mark(e.Key)
		mark(e.Value)
	}
}

func (t *Table) String() string { return "<table>" }

// Len reports the number of live key/value pairs.
func (t *Table) Len() int { return t.live }

// hashValue hashes a Value for table placement: Number uses a bit-mix of
// its bit pattern, Bool uses two fixed constants, Object uses the
// object's own stored hash (Strings precompute theirs).
func hashValue(v Value) uint32 {
	switch v.Kind {
	case KindNumber:
		bits := doubleBits(v.Num)
		bits ^= bits >> 33
		bits *= 0xff51afd7ed558ccd
		bits ^= bits >> 33
		return uint32(bits)
	case KindBool:
		if v.Bool {
			return 0x9e3779b9
		}
		return 0x85ebca6b
	case KindObject:
		if s, ok := v.Obj.(*String); ok {
			return s.Hash
		}
		return objAddrHash(v.Obj)
	default:
		return 0
	}
}

func valuesEqualAsKey(a, b Value) bool {
	// String equality is pointer identity because strings are interned
	// (spec.md §3), so plain Value.Equal (which also compares by
	// identity for objects) is exactly the key equality the table needs.
	return a.Equal(b)
}

func (t *Table) findEntry(entries []tableEntry, key Value) int {
	cap := len(entries)
	idx := int(hashValue(key)) % cap
	if idx < 0 {
		idx += cap
	}
	tombstone := -1
	for {
		e := &entries[idx]
		if e.Key.IsUndefined() {
			if e.Value.IsNil() {
				if tombstone != -1 {
					return tombstone
				}
				return idx
			}
			if tombstone == -1 {
				tombstone = idx
			}
		} else if valuesEqualAsKey(e.Key, key) {
			return idx
		}
		idx = (idx + 1) % cap
	}
}

func (t *Table) grow(newCap int) {
	newEntries := make([]tableEntry, newCap)
	for i := range newEntries {
		newEntries[i].Key = Undefined
	}
	t.live = 0
	for _, e := range t.entries {
		if e.Key.IsUndefined() {
			continue
		}
		idx := t.findEntry(newEntries, e.Key)
		newEntries[idx] = e
		t.live++
	}
	t.entries = newEntries
	t.count = t.live
}

// Get returns the value stored for k, or Nil if absent.
func (t *Table) Get(k Value) Value {
	if len(t.entries) == 0 {
		return Nil
	}
	idx := t.findEntry(t.entries, k)
	e := &t.entries[idx]
	if e.Key.IsUndefined() {
		return Nil
	}
	return e.Value
}

// Set stores v under k, per spec.md §4.6: Nil/Undefined keys are a
// caller-level error handled by the VM before calling Set; a Nil value
// deletes the key; capacity grows once the table's configured load
// factor (Options.TableMaxLoad, spec.md §2) would be exceeded.
func (t *Table) Set(k, v Value) {
	if v.IsNil() {
		t.Delete(k)
		return
	}
	if float64(t.count+1) > float64(len(t.entries))*t.maxLoad {
		newCap := 8
		if len(t.entries) > 0 {
			newCap = len(t.entries) * 2
		}
		t.grow(newCap)
	}
	idx := t.findEntry(t.entries, k)
	e := &t.entries[idx]
	isNew := e.Key.IsUndefined()
	if isNew && e.Value.IsNil() {
		t.count++
		t.live++
	} else if isNew {
		// overwriting a tombstone: count already includes it
		t.live++
	}
	e.Key = k
	e.Value = v
}

// Delete removes k using the tombstone strategy: the slot is left
// present (Key=Undefined) with Value=Bool(true) as the tombstone marker
// so probe chains through it remain unbroken.
func (t *Table) Delete(k Value) bool {
	if len(t.entries) == 0 {
		return false
	}
	idx := t.findEntry(t.entries, k)
	e := &t.entries[idx]
	if e.Key.IsUndefined() {
		return false
	}
	e.Key = Undefined
	e.Value = Bool(true) // tombstone marker, distinct from Nil (empty)
	t.live--
	return true
}

// FindString scans the table for an interned string with the given
// content, without allocating a String first. Used by the string pool
// (spec.md §4.5) to probe for an existing interned string by raw bytes.
func (t *Table) FindString(chars string, hash uint32) *String {
	if len(t.entries) == 0 {
		return nil
	}
	cap := len(t.entries)
	idx := int(hash) % cap
	if idx < 0 {
		idx += cap
	}
	for {
		e := &t.entries[idx]
		if e.Key.IsUndefined() {
			if e.Value.IsNil() {
				return nil
			}
		} else if s, ok := e.Key.Obj.(*String); ok && s.Hash == hash && s.Chars == chars {
			return s
		}
		idx = (idx + 1) % cap
	}
}

// Iterate calls fn for every live key/value pair, in bucket order.
func (t *Table) Iterate(fn func(k, v Value)) {
	for _, e := range t.entries {
		if e.Key.IsUndefined() {
			continue
		}
		fn(e.Key, e.Value)
	}
}
