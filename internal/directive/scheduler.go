package directive

// Scheduler runs work after the current update has been laid out. Deferred
// callbacks run some time later, in unspecified order relative to each
// other, but strictly after the call that scheduled them.
type Scheduler interface {
	Defer(fn func())
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(fn func())

// Defer implements Scheduler.
func (f SchedulerFunc) Defer(fn func()) { f(fn) }

// FrameScheduler queues deferred callbacks until the host flushes the next
// frame. It is not safe for concurrent use; like the cells it serves it
// lives on the UI goroutine.
type FrameScheduler struct {
	pending []func()
}

// NewFrameScheduler returns an empty scheduler.
func NewFrameScheduler() *FrameScheduler {
	return &FrameScheduler{}
}

// Defer implements Scheduler.
func (s *FrameScheduler) Defer(fn func()) {
	s.pending = append(s.pending, fn)
}

// Pending returns the number of queued callbacks.
func (s *FrameScheduler) Pending() int {
	return len(s.pending)
}

// Flush runs the callbacks queued before the call and returns how many ran.
// Callbacks deferred while flushing wait for the next frame.
func (s *FrameScheduler) Flush() int {
	batch := s.pending
	s.pending = nil
	for _, fn := range batch {
		fn()
	}
	return len(batch)
}
