// Package strictxml parses a deliberately restricted subset of XML 1.0
// with namespaces. Input must be UTF-8; DTDs, processing instructions,
// comments, CDATA sections and user-defined entities are rejected
// outright rather than skipped. What remains parses into a flat stream
// of events (declaration, start/end element, text, end of document)
// with byte/line/column positions on every failure.
//
// The core type is Parser, which is push-fed: input arrives in chunks
// of arbitrary size via Feed, and events are collected with DrainEvents
// whenever convenient. Parse and PullParser are conveniences layered on
// top of it for in-memory documents and io.Reader sources.
package strictxml

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

const Version = "0.1.0"

var parserPool = sync.Pool{
	New: func() interface{} {
		return New()
	},
}

// Parse parses a complete in-memory document and returns its events,
// the last of which is always EndOfDocument. The context is consulted
// between events, so a caller can abandon a large document early; a
// trace logger attached via WithTraceLogger receives one debug record
// per event.
func Parse(ctx context.Context, data []byte) ([]Event, error) {
	tlog := traceLogger(ctx, "Parse")

	p := parserPool.Get().(*Parser)
	defer func() {
		p.Reset()
		parserPool.Put(p)
	}()

	if err := p.Feed(data); err != nil {
		return nil, err
	}
	p.FeedEOF()

	var events []Event
	done, err := p.DrainEvents(func(ev Event) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		tlog.Debug("event", slog.String("type", ev.Type().String()))
		events = append(events, ev)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !done {
		// unreachable: after FeedEOF a drain either completes or fails
		return nil, fmt.Errorf("%w", ErrTruncatedDocument)
	}
	return events, nil
}
