package ember

// Upvalue represents a captured outer local (spec.md §4.4). While the
// captured variable is still live on the stack, the Upvalue is *open*
// and Location points at the stack slot directly; when the slot goes out
// of scope, Close copies the current value into Closed and redirects
// Location at it. The open->closed transition happens exactly once.
type Upvalue struct {
	Header
	Location *Value   // points into the VM's stack array while open
	Closed   Value    // owned storage once closed
	NextOpen *Upvalue // next upvalue in the VM's open-upvalue chain
	slot     int      // stack index Location refers to while open
}

func newUpvalue(loc *Value, slot int) *Upvalue {
	return &Upvalue{Header: Header{Kind: ObjKindUpvalue}, Location: loc, slot: slot}
}

// IsOpen reports whether the upvalue still refers to a live stack slot.
func (u *Upvalue) IsOpen() bool { return u.Location != &u.Closed }

// Get returns the upvalue's current value, open or closed.
func (u *Upvalue) Get() Value { return *u.Location }

// Set writes through the upvalue, open or closed.
func (u *Upvalue) Set(v Value) { *u.Location = v }

// Close copies the live stack value into the upvalue's owned cell and
// retargets Location at it, so subsequent writes to the old stack slot
// are no longer visible through this upvalue (spec.md §4.4).
func (u *Upvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
}

func (u *Upvalue) Size() int { return 40 }

// Trace always marks Closed: in the open case *Location aliases a stack
// slot that is already marked as a root, so marking Closed too is
// harmless (it is either the real storage or the zero Value).
func (u *Upvalue) Trace(mark func(Value)) {
	mark(u.Closed)
	if u.IsOpen() {
		mark(*u.Location)
	}
}

func (u *Upvalue) String() string { return "<upvalue>" }
