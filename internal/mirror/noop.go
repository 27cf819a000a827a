package mirror

import "context"

// Noop is a Store that discards writes and never holds objects. It is used
// when mirroring is disabled so the service never needs a nil check.
type Noop struct{}

// NewNoop creates a no-op store.
func NewNoop() *Noop {
	return &Noop{}
}

func (*Noop) Put(context.Context, string, []byte) error {
	return nil
}

func (*Noop) Get(context.Context, string) ([]byte, error) {
	return nil, ErrObjectNotFound
}

func (*Noop) Delete(context.Context, string) error {
	return nil
}

var _ Store = (*Noop)(nil)
