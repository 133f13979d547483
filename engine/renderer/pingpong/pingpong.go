// Package pingpong manages a pair of same-sized resources whose read and write roles swap
// every frame, so a shader can sample last frame's result while writing this frame's.
package pingpong

// Roles returns the indices of the resource read and written on the given frame.
// read = frame % 2 and write = (frame + 1) % 2, so the two never coincide and alternate
// every frame.
//
// Parameters:
//   - frame: the frame counter of the owning demo
//
// Returns:
//   - read: index of the resource sampled this frame
//   - write: index of the resource written this frame
func Roles(frame uint64) (read, write int) {
	return int(frame % 2), int((frame + 1) % 2)
}

// Pair holds the two resources. Both are cleared to a zero baseline before first use and
// again after Invalidate or Replace.
type Pair[T any] struct {
	resources  [2]T
	clear      func(T) error
	release    func(T)
	needsClear bool
}

// PairBuilderOption is a functional option for configuring a Pair.
type PairBuilderOption[T any] func(*Pair[T])

// WithClear sets the function that resets one resource to its zero baseline.
//
// Parameters:
//   - fn: the clear function
//
// Returns:
//   - PairBuilderOption[T]: option function to apply
func WithClear[T any](fn func(T) error) PairBuilderOption[T] {
	return func(p *Pair[T]) {
		p.clear = fn
	}
}

// WithRelease sets the function that disposes of a resource on Replace or Release.
//
// Parameters:
//   - fn: the release function
//
// Returns:
//   - PairBuilderOption[T]: option function to apply
func WithRelease[T any](fn func(T)) PairBuilderOption[T] {
	return func(p *Pair[T]) {
		p.release = fn
	}
}

// NewPair creates a pair from two resources of identical format and size.
//
// Parameters:
//   - a: resource 0
//   - b: resource 1
//   - options: functional options
//
// Returns:
//   - *Pair[T]: the pair, pending its initial clear
func NewPair[T any](a, b T, options ...PairBuilderOption[T]) *Pair[T] {
	p := &Pair[T]{
		resources:  [2]T{a, b},
		needsClear: true,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Resource returns resource i (0 or 1).
func (p *Pair[T]) Resource(i int) T {
	return p.resources[i]
}

// Read returns the resource sampled on frame.
func (p *Pair[T]) Read(frame uint64) T {
	r, _ := Roles(frame)
	return p.resources[r]
}

// Write returns the resource written on frame.
func (p *Pair[T]) Write(frame uint64) T {
	_, w := Roles(frame)
	return p.resources[w]
}

// NeedsClear reports whether the next Prepare will clear both resources.
func (p *Pair[T]) NeedsClear() bool {
	return p.needsClear
}

// Invalidate schedules both resources to be cleared again before their next use.
func (p *Pair[T]) Invalidate() {
	p.needsClear = true
}

// Prepare clears both resources if a clear is pending. It is called before the resources
// are bound, so frame 0 never samples uninitialized contents.
//
// Returns:
//   - error: the clear function's error; the clear stays pending
func (p *Pair[T]) Prepare() error {
	if !p.needsClear {
		return nil
	}
	if p.clear != nil {
		for _, r := range p.resources {
			if err := p.clear(r); err != nil {
				return err
			}
		}
	}
	p.needsClear = false
	return nil
}

// Replace swaps in a new pair of resources, e.g. after a resize, releasing the old ones.
// The new resources are cleared before their first use.
//
// Parameters:
//   - a: the new resource 0
//   - b: the new resource 1
func (p *Pair[T]) Replace(a, b T) {
	p.Release()
	p.resources = [2]T{a, b}
	p.needsClear = true
}

// Release releases both resources.
func (p *Pair[T]) Release() {
	if p.release == nil {
		return
	}
	for _, r := range p.resources {
		p.release(r)
	}
}

// Bind prepares the pair and then builds the frame's bindings from its read and write
// resources. Bindings are rebuilt on every call because the roles change every frame.
//
// Parameters:
//   - p: the pair
//   - frame: the frame counter of the owning demo
//   - fn: builds the bindings from the read and write resources
//
// Returns:
//   - B: the bindings built by fn
//   - error: the clear or fn error
func Bind[T, B any](p *Pair[T], frame uint64, fn func(read, write T) (B, error)) (B, error) {
	if err := p.Prepare(); err != nil {
		var zero B
		return zero, err
	}
	return fn(p.Read(frame), p.Write(frame))
}
