package results

import (
	"context"
	"errors"
)

// Sink persists a finished run.
type Sink interface {
	Name() string
	Save(ctx context.Context, run *Run) error
}

// MultiSink saves to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Name() string {
	return "multi"
}

func (m MultiSink) Save(ctx context.Context, run *Run) error {
	var errs []error
	for _, s := range m {
		if err := s.Save(ctx, run); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
