package emit

// NullEmitter implements Emitter by discarding all events.
//
// Use it in tests or deployments where event output is not wanted.
type NullEmitter struct{}

// NewNullEmitter creates a NullEmitter.
func NewNullEmitter() *NullEmitter {
	return &NullEmitter{}
}

// Emit discards the event.
func (n *NullEmitter) Emit(Event) {}
