package ember

import "math"

// doubleBits reinterprets f's IEEE-754 bit pattern as a uint64 for
// hashing, normalizing the two zero representations and all NaNs to a
// single pattern so Equal-per-spec numbers hash identically.
func doubleBits(f float64) uint64 {
	if f == 0 {
		f = 0 // normalize -0 to +0
	}
	if math.IsNaN(f) {
		return 0x7ff8000000000000
	}
	return math.Float64bits(f)
}

// objAddrHash returns the stand-in "address hash" for non-String heap
// objects (spec.md §4.6).
func objAddrHash(o Obj) uint32 {
	if o == nil {
		return 0
	}
	h := o.ObjHeader()
	seed := h.hashSeed
	seed ^= seed >> 16
	seed *= 0x7feb352d
	seed ^= seed >> 15
	return seed
}

// truncInt64 performs the "truncating cast to 64-bit signed" required by
// the bitwise opcodes (spec.md §4.2).
func truncInt64(n float64) int64 {
	if math.IsNaN(n) {
		return 0
	}
	if n >= 9223372036854775807 {
		return math.MaxInt64
	}
	if n <= -9223372036854775808 {
		return math.MinInt64
	}
	return int64(n)
}
