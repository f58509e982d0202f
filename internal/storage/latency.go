package storage

import (
	"context"
	"time"
)

// LatencyStore delays every call to the wrapped store, imitating a remote backend.
// Reads wait readDelay, writes wait writeDelay.
type LatencyStore struct {
	next       Store
	readDelay  time.Duration
	writeDelay time.Duration
}

// WithLatency wraps next. Zero delays return next unchanged.
func WithLatency(next Store, readDelay, writeDelay time.Duration) Store {
	if readDelay <= 0 && writeDelay <= 0 {
		return next
	}
	return &LatencyStore{next: next, readDelay: readDelay, writeDelay: writeDelay}
}

func (s *LatencyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := Sleep(ctx, s.readDelay); err != nil {
		return nil, err
	}
	return s.next.Get(ctx, key)
}

func (s *LatencyStore) Set(ctx context.Context, key string, value []byte) error {
	if err := Sleep(ctx, s.writeDelay); err != nil {
		return err
	}
	return s.next.Set(ctx, key, value)
}

func (s *LatencyStore) Delete(ctx context.Context, key string) error {
	if err := Sleep(ctx, s.writeDelay); err != nil {
		return err
	}
	return s.next.Delete(ctx, key)
}

// Update is a read followed by a write, so it waits for both delays.
func (s *LatencyStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	if err := Sleep(ctx, s.readDelay+s.writeDelay); err != nil {
		return err
	}
	return s.next.Update(ctx, key, fn)
}

func (s *LatencyStore) Close() error {
	return s.next.Close()
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
