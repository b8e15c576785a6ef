package notebook

// Signal is a synchronous notification channel. Emit calls every connected
// slot on the caller's goroutine before returning, so a slot that writes
// back to the emitter re-enters Emit. Consumers that write in response to a
// signal need their own re-entrancy guard.
type Signal[T any] struct {
	slots  []slot[T]
	nextID int
}

type slot[T any] struct {
	id int
	fn func(T)
}

// Connect registers fn and returns a function that disconnects it.
// Disconnecting twice is harmless.
func (s *Signal[T]) Connect(fn func(T)) func() {
	s.nextID++
	id := s.nextID
	s.slots = append(s.slots, slot[T]{id: id, fn: fn})
	return func() { s.disconnect(id) }
}

func (s *Signal[T]) disconnect(id int) {
	for i, sl := range s.slots {
		if sl.id == id {
			s.slots = append(s.slots[:i:i], s.slots[i+1:]...)
			return
		}
	}
}

// Emit delivers v to the slots connected at the time of the call. Slots
// connected or disconnected during delivery take effect on the next Emit.
func (s *Signal[T]) Emit(v T) {
	if len(s.slots) == 0 {
		return
	}
	snapshot := make([]slot[T], len(s.slots))
	copy(snapshot, s.slots)
	for _, sl := range snapshot {
		sl.fn(v)
	}
}

// Len returns the number of connected slots.
func (s *Signal[T]) Len() int {
	return len(s.slots)
}
