// Package lifecycle bridges repository change events into aretw0/lifecycle.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/shelf/pkg/core"
)

type shelfSource struct {
	events <-chan core.Event
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits library change events.
// The output closes when the input closes or the Start context ends.
func NewSource(events <-chan core.Event) lifecycle.Source {
	return &shelfSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
}

func (s *shelfSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *shelfSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				// core.Event satisfies lifecycle.Event through String().
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
