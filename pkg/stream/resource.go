package stream

// DisposeFunc adapts a function to the Resource interface.
type DisposeFunc func()

// Dispose implements Resource.
func (f DisposeFunc) Dispose() {
	f()
}

// nop is a Resource whose disposal does nothing.
type nop struct{}

func (nop) Dispose() {}

// Nop returns a Resource whose Dispose is a no-op. Streams hand it out for
// subscriptions that had already terminated before Subscribe returned.
func Nop() Resource {
	return nop{}
}
