package ember

// tableGet and tableSet back every opcode that reads or writes through a
// table (spec.md §4.6): new_table/table_add_field build a literal,
// table_get/table_set access named fields by a constant string key, and
// index/index_set access by an arbitrary computed key.
func (vm *VM) tableGet(t, key Value) (Value, *RuntimeError) {
	tbl, ok := t.Obj.(*Table)
	if t.Kind != KindObject || !ok {
		return Nil, vm.eb.binopError("[]", t)
	}
	return tbl.Get(key), nil
}

func (vm *VM) tableSet(t, key, v Value) *RuntimeError {
	tbl, ok := t.Obj.(*Table)
	if t.Kind != KindObject || !ok {
		return vm.eb.binopError("[]", t)
	}
	tbl.Set(key, v)
	return nil
}
