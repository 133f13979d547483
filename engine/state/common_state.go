// Package state holds the per-demo mutable state shared by every demo: the current shader
// handle, fill mode, time accumulator, frame counter and the dirty flag that forces the
// demo's pipeline to be rebuilt before its next draw.
package state

import (
	"fmt"
	"time"
)

// Loader produces shader handles by name. shader.Store satisfies Loader[shader.Shader].
type Loader[H any] interface {
	Load(name string) (H, error)
	Reload(name string) (H, error)
}

// CommonState is the dirty-tracked state owned by one demo. It is not safe for concurrent
// use; the frame loop is its only mutator.
type CommonState[H any] struct {
	name   string
	loader Loader[H]

	shader   H
	fillMode FillMode
	time     time.Duration
	frame    uint64
	dirty    bool
}

// New loads the named shader and returns state with dirty set, frame 0 and time 0.
//
// Parameters:
//   - name: the shader name passed to loader
//   - loader: the shader loader
//
// Returns:
//   - *CommonState[H]: the new state
//   - error: the loader's error if the initial load fails
func New[H any](name string, loader Loader[H]) (*CommonState[H], error) {
	sh, err := loader.Load(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load shader %q: %w", name, err)
	}
	return &CommonState[H]{
		name:     name,
		loader:   loader,
		shader:   sh,
		fillMode: FillModeFill,
		dirty:    true,
	}, nil
}

// Name returns the shader name this state loads.
func (s *CommonState[H]) Name() string {
	return s.name
}

// Shader returns the current shader handle.
func (s *CommonState[H]) Shader() H {
	return s.shader
}

// FillMode returns the current fill mode.
func (s *CommonState[H]) FillMode() FillMode {
	return s.fillMode
}

// Time returns the accumulated time.
func (s *CommonState[H]) Time() time.Duration {
	return s.time
}

// Frame returns the number of completed renders.
func (s *CommonState[H]) Frame() uint64 {
	return s.frame
}

// Dirty reports whether the pipeline must be rebuilt before the next draw.
func (s *CommonState[H]) Dirty() bool {
	return s.dirty
}

// AdvanceTime adds dt to the accumulated time. A negative dt panics.
//
// Parameters:
//   - dt: the elapsed time, must be >= 0
func (s *CommonState[H]) AdvanceTime(dt time.Duration) {
	if dt < 0 {
		panic(fmt.Sprintf("state: negative time step %v", dt))
	}
	s.time += dt
}

// AdvanceFrame increments the frame counter. Called once per completed render.
func (s *CommonState[H]) AdvanceFrame() {
	s.frame++
}

// MarkDirty requests a pipeline rebuild. Idempotent.
func (s *CommonState[H]) MarkDirty() {
	s.dirty = true
}

// ClearDirty is called by the pipeline cache after a successful rebuild.
func (s *CommonState[H]) ClearDirty() {
	s.dirty = false
}

// ApplyReload reloads the shader and swaps it in, then marks the state dirty. On failure the
// current shader and dirty flag are left untouched and the error is returned. A replaced
// handle implementing Release() is released after the swap.
//
// Returns:
//   - error: the loader's error if the reload fails
func (s *CommonState[H]) ApplyReload() error {
	sh, err := s.loader.Reload(s.name)
	if err != nil {
		return fmt.Errorf("failed to reload shader %q: %w", s.name, err)
	}
	old := s.shader
	s.shader = sh
	s.MarkDirty()
	if r, ok := any(old).(interface{ Release() }); ok {
		r.Release()
	}
	return nil
}

// FillUp steps the fill mode towards Fill and marks the state dirty.
func (s *CommonState[H]) FillUp() {
	s.fillMode = s.fillMode.Up()
	s.MarkDirty()
}

// FillDown steps the fill mode towards Point and marks the state dirty.
func (s *CommonState[H]) FillDown() {
	s.fillMode = s.fillMode.Down()
	s.MarkDirty()
}
