package kv

import "context"

type Repository interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Removing an absent key is not an error.
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
	// CompareAndSwap writes value only when the stored value still equals old.
	// With hadOld false the write succeeds only if key is absent.
	CompareAndSwap(ctx context.Context, key, old string, hadOld bool, value string) (bool, error)
}
