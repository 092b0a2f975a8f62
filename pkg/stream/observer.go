package stream

// ObserverFuncs adapts plain functions to the Observer interface.
// Nil fields are treated as no-ops.
type ObserverFuncs struct {
	// Next is called for each delivered event.
	Next func(Event)

	// Err is called when the stream terminates with an error.
	Err func(error)

	// Completed is called when the stream terminates normally.
	Completed func()
}

// OnNext implements Observer.
func (o ObserverFuncs) OnNext(e Event) {
	if o.Next != nil {
		o.Next(e)
	}
}

// OnError implements Observer.
func (o ObserverFuncs) OnError(err error) {
	if o.Err != nil {
		o.Err(err)
	}
}

// OnCompleted implements Observer.
func (o ObserverFuncs) OnCompleted() {
	if o.Completed != nil {
		o.Completed()
	}
}
