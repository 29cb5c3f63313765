package strictxml

import (
	"io"
)

const pullReadSize = 4096

// PullParser adapts the push-fed Parser to a pull interface over an
// io.Reader. Call Next repeatedly; after the EndOfDocument event has
// been returned, Next returns io.EOF.
type PullParser struct {
	p     *Parser
	src   io.Reader
	buf   []byte
	queue []Event
	done  bool
	err   error
}

func NewPullParser(src io.Reader) *PullParser {
	return &PullParser{
		p:   New(),
		src: src,
		buf: make([]byte, pullReadSize),
	}
}

// Next returns the next event in document order, reading from the
// source as needed. Parse errors are sticky: once Next has returned
// one, it returns the same error forever.
func (pp *PullParser) Next() (Event, error) {
	for {
		if len(pp.queue) > 0 {
			ev := pp.queue[0]
			copy(pp.queue, pp.queue[1:])
			pp.queue[len(pp.queue)-1] = nil
			pp.queue = pp.queue[:len(pp.queue)-1]
			return ev, nil
		}
		if pp.err != nil {
			return nil, pp.err
		}
		if pp.done {
			return nil, io.EOF
		}

		n, rerr := pp.src.Read(pp.buf)
		if n > 0 {
			if err := pp.p.Feed(pp.buf[:n]); err != nil {
				pp.err = err
				return nil, err
			}
		}
		switch rerr {
		case nil:
		case io.EOF:
			pp.p.FeedEOF()
		default:
			pp.err = rerr
			return nil, rerr
		}

		done, err := pp.p.DrainEvents(func(ev Event) error {
			pp.queue = append(pp.queue, ev)
			return nil
		})
		if err != nil {
			// events drained before the failure still precede it in
			// document order; the error surfaces once the queue is empty
			// and then repeats forever
			pp.err = err
			continue
		}
		pp.done = done
	}
}
