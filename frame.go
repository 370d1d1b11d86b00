package particles

// Scheduler requests callbacks at the next display refresh. The returned
// cancel func drops the request if it has not run yet; calling it after the
// callback ran or more than once does nothing.
type Scheduler interface {
	RequestFrame(fn func()) (cancel func())
}

// FrameQueue is a cooperative Scheduler. The host calls RunFrame once per
// refresh. Callbacks requested while a frame runs are deferred to the next
// frame. FrameQueue is not safe for concurrent use.
type FrameQueue struct {
	nextID  uint64
	pending []frameRequest
	running []frameRequest
}

type frameRequest struct {
	id uint64
	fn func()
}

var _ Scheduler = (*FrameQueue)(nil)

func (q *FrameQueue) RequestFrame(fn func()) (cancel func()) {
	if fn == nil {
		panic("particles: nil frame callback")
	}
	q.nextID++
	id := q.nextID
	q.pending = append(q.pending, frameRequest{id: id, fn: fn})
	return func() { q.cancel(id) }
}

func (q *FrameQueue) cancel(id uint64) {
	for _, reqs := range [2][]frameRequest{q.pending, q.running} {
		for i := range reqs {
			if reqs[i].id == id {
				reqs[i].fn = nil
				return
			}
		}
	}
}

// Pending returns the amount of callbacks waiting for the next frame.
func (q *FrameQueue) Pending() (n int) {
	for _, req := range q.pending {
		if req.fn != nil {
			n++
		}
	}
	return n
}

// RunFrame runs all callbacks requested before the call and returns how
// many ran.
func (q *FrameQueue) RunFrame() (n int) {
	q.running, q.pending = q.pending, q.running[:0]
	for i := range q.running {
		fn := q.running[i].fn
		if fn == nil {
			continue // Cancelled.
		}
		q.running[i].fn = nil
		fn()
		n++
	}
	q.running = q.running[:0]
	return n
}
