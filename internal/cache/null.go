package cache

import (
	"context"
	"time"
)

// Null is a Cache that stores nothing. It is used when caching is disabled
// so callers never need a nil check.
type Null struct{}

// NewNull creates a no-op cache.
func NewNull() *Null {
	return &Null{}
}

func (*Null) Get(context.Context, string) ([]byte, error) {
	return nil, ErrNotFound
}

func (*Null) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (*Null) Delete(context.Context, string) error {
	return nil
}

var _ Cache = (*Null)(nil)
