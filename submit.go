package kaio

import "github.com/gammazero/deque"

// SubmitQueue is the submission surface Submitter drives; *IOContext
// implements it.
type SubmitQueue interface {
	Submit(batch []*Iocb) (int, error)
}

var _ SubmitQueue = (*IOContext)(nil)

// Submitter queues request descriptors and pushes them to a SubmitQueue in
// FIFO order, absorbing kernel backpressure: io_submit may accept only a
// prefix of a batch, and Submitter keeps the unaccepted tail queued for the
// next Flush instead of making every caller re-implement the retry.
//
// Not safe for concurrent use; serialize per instance like Pool.
type Submitter struct {
	q       SubmitQueue
	pending deque.Deque[*Iocb]
	scratch []*Iocb
}

// NewSubmitter creates a Submitter feeding q.
func NewSubmitter(q SubmitQueue) *Submitter {
	return &Submitter{q: q}
}

// Push queues icb for submission. The descriptor and any memory it points
// to must stay alive until its completion is harvested.
func (s *Submitter) Push(icb *Iocb) {
	s.pending.PushBack(icb)
}

// Pending returns the number of queued descriptors.
func (s *Submitter) Pending() int {
	return s.pending.Len()
}

// Flush submits every queued descriptor in order and returns how many the
// kernel accepted. Descriptors the kernel declines stay queued; partial
// acceptance returns a nil error. A non-nil error leaves the whole queue
// intact.
func (s *Submitter) Flush() (int, error) {
	n := s.pending.Len()
	if n == 0 {
		return 0, nil
	}

	s.scratch = s.scratch[:0]
	for i := 0; i < n; i++ {
		s.scratch = append(s.scratch, s.pending.At(i))
	}

	accepted, err := s.q.Submit(s.scratch)
	for i := 0; i < accepted; i++ {
		s.pending.PopFront()
	}
	return accepted, err
}
