package coxdev

// ToEventFromNative writes dest[i] = arg[eventOrder[i]] for each i,
// gathering a natural-order vector into event order.
func ToEventFromNative(arg []float64, eventOrder []int, dest []float64) error {
	n := len(eventOrder)
	if len(arg) != n {
		return &ErrShapeMismatch{Op: "ToEventFromNative", Field: "arg", Got: len(arg), Expected: n}
	}
	if len(dest) != n {
		return &ErrShapeMismatch{Op: "ToEventFromNative", Field: "dest", Got: len(dest), Expected: n}
	}
	for i, j := range eventOrder {
		dest[i] = arg[j]
	}
	return nil
}

// ToNativeFromEvent scatters an event-ordered arg back into natural
// order in place: arg is first copied into scratch (since the
// permutation is applied in place and would otherwise clobber entries
// it hasn't read yet), then arg[eventOrder[i]] = scratch[i] for each i.
//
// scratch is clobbered by this call and its contents must not be relied
// on afterward; this mirrors the C++ origin's to_native_from_event,
// which uses the same buffer as a pre-copy of arg.
func ToNativeFromEvent(arg []float64, eventOrder []int, scratch []float64) error {
	n := len(eventOrder)
	if len(arg) != n {
		return &ErrShapeMismatch{Op: "ToNativeFromEvent", Field: "arg", Got: len(arg), Expected: n}
	}
	if len(scratch) != n {
		return &ErrShapeMismatch{Op: "ToNativeFromEvent", Field: "scratch", Got: len(scratch), Expected: n}
	}
	copy(scratch, arg)
	for i, j := range eventOrder {
		arg[j] = scratch[i]
	}
	return nil
}
