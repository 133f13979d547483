package pipeline

// Invalidator is the dirty flag a Cache consults. state.CommonState implements it.
type Invalidator interface {
	Dirty() bool
	ClearDirty()
}

// Cache holds zero or one built value, typically a render pipeline. It rebuilds only when the
// owner is dirty or nothing has been built yet. Marking the owner dirty never drops the
// cached value; only Reset does.
type Cache[T any] struct {
	value    T
	present  bool
	rebuilds int
	release  func(T)
}

// CacheBuilderOption is a functional option for configuring a Cache.
type CacheBuilderOption[T any] func(*Cache[T])

// WithRelease sets the function that disposes of a value when it is replaced or reset.
//
// Parameters:
//   - fn: the release function
//
// Returns:
//   - CacheBuilderOption[T]: option function to apply
func WithRelease[T any](fn func(T)) CacheBuilderOption[T] {
	return func(c *Cache[T]) {
		c.release = fn
	}
}

// NewCache creates an empty Cache.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *Cache[T]: the empty cache
func NewCache[T any](options ...CacheBuilderOption[T]) *Cache[T] {
	c := &Cache[T]{}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Ensure returns a value that is current with respect to inv. It is evaluated once at the
// start of a render step: when inv is dirty or the cache is empty, build is called, the
// previous value is released, the new value stored and inv's dirty flag cleared. When build
// fails the previous value and the dirty flag are kept and the error is returned.
//
// Parameters:
//   - inv: the dirty flag owner
//   - build: constructs a fresh value
//
// Returns:
//   - T: the current value
//   - error: build's error
func (c *Cache[T]) Ensure(inv Invalidator, build func() (T, error)) (T, error) {
	if c.present && !inv.Dirty() {
		return c.value, nil
	}

	v, err := build()
	if err != nil {
		var zero T
		return zero, err
	}

	if c.present && c.release != nil {
		c.release(c.value)
	}
	c.value = v
	c.present = true
	c.rebuilds++
	inv.ClearDirty()
	return v, nil
}

// Get returns the cached value without rebuilding.
//
// Returns:
//   - T: the cached value, zero if absent
//   - bool: true if a value is present
func (c *Cache[T]) Get() (T, bool) {
	return c.value, c.present
}

// Present reports whether a value has been built.
func (c *Cache[T]) Present() bool {
	return c.present
}

// Rebuilds returns how many times a value has been built.
func (c *Cache[T]) Rebuilds() int {
	return c.rebuilds
}

// Reset releases and drops the cached value.
func (c *Cache[T]) Reset() {
	if c.present && c.release != nil {
		c.release(c.value)
	}
	var zero T
	c.value = zero
	c.present = false
}
