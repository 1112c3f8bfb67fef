package composer

// FrameHandle identifies a pending frame request. The zero handle means
// "none".
type FrameHandle uint64

// FrameRequester schedules callbacks aligned to the host's display frames,
// in the manner of requestAnimationFrame.
type FrameRequester interface {
	RequestFrame(fn func()) FrameHandle
	CancelFrame(h FrameHandle)
}

type pendingFrame struct {
	handle FrameHandle
	fn     func()
}

// FrameLoop is a FrameRequester driven by the host: the host calls Fire
// once per display frame, from the same goroutine that requests frames.
type FrameLoop struct {
	next    FrameHandle
	pending []pendingFrame
	firing  []pendingFrame
}

// NewFrameLoop returns an empty frame loop.
func NewFrameLoop() *FrameLoop {
	return &FrameLoop{}
}

// RequestFrame queues fn for the next Fire.
func (f *FrameLoop) RequestFrame(fn func()) FrameHandle {
	f.next++
	f.pending = append(f.pending, pendingFrame{handle: f.next, fn: fn})
	return f.next
}

// CancelFrame drops a queued request. Unknown or already fired handles are
// ignored.
func (f *FrameLoop) CancelFrame(h FrameHandle) {
	if h == 0 {
		return
	}
	for i := range f.pending {
		if f.pending[i].handle == h {
			copy(f.pending[i:], f.pending[i+1:])
			f.pending[len(f.pending)-1] = pendingFrame{}
			f.pending = f.pending[:len(f.pending)-1]
			return
		}
	}
}

// Pending returns the number of queued requests.
func (f *FrameLoop) Pending() int { return len(f.pending) }

// Fire runs every request queued before the call and returns how many ran.
// Requests made by the callbacks themselves wait for the next Fire.
func (f *FrameLoop) Fire() int {
	if len(f.pending) == 0 {
		return 0
	}
	f.firing, f.pending = f.pending, f.firing[:0]
	for _, p := range f.firing {
		p.fn()
	}
	n := len(f.firing)
	clear(f.firing)
	f.firing = f.firing[:0]
	return n
}
