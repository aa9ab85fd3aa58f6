package activity

import (
	"context"
	"errors"
)

type fanOutSink struct {
	sinks []Sink
}

// FanOut returns a sink that appends each event to every underlying sink.
// Every sink gets the event even when an earlier one fails; the errors are
// joined so the recorder can count the drop once.
func FanOut(sinks ...Sink) Sink {
	if len(sinks) == 1 {
		return sinks[0]
	}
	return &fanOutSink{sinks: sinks}
}

func (f *fanOutSink) Append(ctx context.Context, event Event) error {
	var errs []error
	for _, sink := range f.sinks {
		if err := sink.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
