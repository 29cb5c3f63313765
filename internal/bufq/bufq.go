// Package bufq implements the byte cursor the push driver feeds into:
// an append-only buffer of not-yet-decoded bytes plus a read offset.
// Bytes before the offset are logically consumed and are reclaimed once
// they dominate the buffer, recycling the backing array through the
// byte slice pool.
package bufq

import "github.com/lestrrat-go/strictxml/internal/pool"

type Queue struct {
	buf []byte
	off int
}

func New() *Queue {
	return &Queue{buf: pool.ByteSlice().Get()}
}

// Append copies chunk onto the tail of the queue. The caller keeps
// ownership of chunk.
func (q *Queue) Append(chunk []byte) {
	q.buf = append(q.buf, chunk...)
}

// Unread returns the not-yet-consumed bytes. The slice is only valid
// until the next Append or Reclaim.
func (q *Queue) Unread() []byte {
	return q.buf[q.off:]
}

// Consume marks the next n unread bytes as consumed.
func (q *Queue) Consume(n int) {
	if n < 0 || q.off+n > len(q.buf) {
		panic("bufq: consume past end of buffer")
	}
	q.off += n
}

// Len returns the number of unread bytes.
func (q *Queue) Len() int {
	return len(q.buf) - q.off
}

// Reclaim drops consumed bytes once they dominate the buffer. The
// remaining unread bytes move to a fresh backing array and the old one
// goes back to the pool, so a long stream does not accrete its history.
func (q *Queue) Reclaim() {
	if q.off == 0 || q.off*2 < cap(q.buf) {
		return
	}
	old := q.buf
	next := pool.ByteSlice().GetCapacity(q.Len())
	next = append(next, old[q.off:]...)
	q.buf = next
	q.off = 0
	pool.ByteSlice().Put(old)
}

// Release returns the backing array to the pool. The queue must not be
// used afterwards.
func (q *Queue) Release() {
	pool.ByteSlice().Put(q.buf)
	q.buf = nil
	q.off = 0
}
