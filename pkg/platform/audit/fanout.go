package audit

import (
	"context"
	"errors"
)

// Fanout appends each event to every store. All stores are attempted; the
// returned error joins every failure.
type Fanout []Store

func (f Fanout) Append(ctx context.Context, event Event) error {
	var errs []error
	for _, s := range f {
		if s == nil {
			continue
		}
		if err := s.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
