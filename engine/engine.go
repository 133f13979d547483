package engine

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-lab/common"
	"github.com/Carmen-Shannon/oxy-lab/engine/demo"
	"github.com/Carmen-Shannon/oxy-lab/engine/hotreload"
	"github.com/Carmen-Shannon/oxy-lab/engine/profiler"
	"github.com/Carmen-Shannon/oxy-lab/engine/renderer"
	"github.com/Carmen-Shannon/oxy-lab/engine/window"
)

// engine implements the Engine interface.
// All of its state is touched only from the loop thread; window callbacks run inside
// window.ProcessMessages on that same thread and only append to the input queue.
type engine struct {
	window   window.Window
	renderer renderer.Renderer
	watcher  hotreload.Watcher

	demos         []demo.Demo
	active        int
	pendingReload map[int]bool

	inputs    []InputEvent
	extension string

	pacer    *pacer
	lastTick time.Time

	profiler         *profiler.Profiler
	profilingEnabled bool

	surfaceLost bool
	quit        bool
	quitOnce    sync.Once
	runErr      error
}

// Engine is the frame orchestrator. Each tick it applies shader reloads, advances the active
// demo's time, dispatches queued input, renders one frame and paces the next tick.
type Engine interface {
	// Run installs the window callbacks and drives ticks from the window's message loop
	// until the window closes, Escape is pressed or a tick fails.
	//
	// Returns:
	//   - error: the first fatal tick error, nil on a normal exit
	Run() error

	// Tick runs one tick at the given wall time.
	//
	// Parameters:
	//   - now: the tick timestamp; the first tick advances time by zero
	//
	// Returns:
	//   - error: a fatal shader reload, pipeline or GPU error
	Tick(now time.Time) error

	// PushInput queues an input event for the next tick.
	PushInput(ev InputEvent)

	// Active returns the active demo.
	Active() demo.Demo

	// ActiveIndex returns the index of the active demo.
	ActiveIndex() int

	// SetActive switches to the demo at index, clamped into range. A demo whose shader
	// changed on disk while it was inactive is reloaded first.
	//
	// Parameters:
	//   - index: the demo index
	//
	// Returns:
	//   - error: the reload error of the newly active demo
	SetActive(index int) error

	// Running reports whether Quit has not been called.
	Running() bool

	// Quit stops the loop before the next tick. Safe to call multiple times.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine with the provided options. When a window is supplied, its
// input callbacks are wired to the engine's input queue.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: error if no demos or renderer were supplied
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		pendingReload: make(map[int]bool),
		extension:     ".wgsl",
		pacer: &pacer{
			interval: time.Second / 60,
			now:      time.Now,
			sleep:    time.Sleep,
		},
	}

	for _, opt := range options {
		opt(e)
	}

	if len(e.demos) == 0 {
		return nil, fmt.Errorf("engine needs at least one demo")
	}
	if e.renderer == nil {
		return nil, fmt.Errorf("engine needs a renderer")
	}
	e.active = common.Clamp(e.active, 0, len(e.demos)-1)
	if e.profilingEnabled && e.profiler == nil {
		e.profiler = profiler.NewProfiler()
	}

	if e.window != nil {
		e.bindWindow()
	}
	return e, nil
}

// bindWindow routes the window callbacks into the input queue.
func (e *engine) bindWindow() {
	e.window.SetResizeCallback(func(width, height int) {
		e.PushInput(InputEvent{Kind: InputResize, Width: width, Height: height})
	})
	e.window.SetKeyDownCallback(func(keyCode uint32) {
		e.PushInput(InputEvent{Kind: InputKey, Key: keyCode})
	})
	e.window.SetScrollCallback(func(delta float32) {
		e.PushInput(InputEvent{Kind: InputScroll, Delta: delta})
	})
	e.window.SetMouseButtonCallback(func(pressed bool, x, y float32) {
		e.PushInput(InputEvent{Kind: InputClick, Pressed: pressed, X: x, Y: y})
	})
	e.window.SetMouseMoveCallback(func(x, y float32) {
		e.PushInput(InputEvent{Kind: InputMove, X: x, Y: y})
	})
}

func (e *engine) Run() error {
	if e.window == nil {
		return fmt.Errorf("engine has no window to run")
	}

	log.Printf("engine: starting with demo %d (%s)", e.active, e.Active().Name())
	e.window.SetUpdateCallback(func() {
		if e.quit {
			return
		}
		if err := e.Tick(e.pacer.wait()); err != nil {
			e.runErr = err
			e.Quit()
		}
	})
	e.window.ProcessMessages()
	e.Quit()
	return e.runErr
}

func (e *engine) Tick(now time.Time) error {
	if e.quit {
		return nil
	}
	active := e.demos[e.active]

	// 1. Apply reloads before anything observes the shader.
	if err := e.applyReloads(active); err != nil {
		return err
	}

	// 2. Only the active demo accumulates time.
	var dt time.Duration
	if !e.lastTick.IsZero() && now.After(e.lastTick) {
		dt = now.Sub(e.lastTick)
	}
	e.lastTick = now
	active.Common().AdvanceTime(dt)

	// 3. Input may switch the active demo or request quit.
	if err := e.dispatchInputs(); err != nil {
		return err
	}
	if e.quit {
		return nil
	}

	// 4. Render the (possibly new) active demo.
	return e.render(e.demos[e.active])
}

// applyReloads drains the watcher. Any actionable change reloads the active demo once;
// changes to an inactive demo's shader are deferred until it becomes active.
func (e *engine) applyReloads(active demo.Demo) error {
	if e.watcher == nil {
		return nil
	}

	paths, errs := hotreload.Drain(e.watcher, e.extension)
	for _, err := range errs {
		log.Printf("hotreload: %v", err)
	}
	if len(paths) == 0 {
		return nil
	}

	for _, p := range paths {
		for i, d := range e.demos {
			if i != e.active && samePath(d.Common().Shader().Path(), p) {
				e.pendingReload[i] = true
			}
		}
	}

	log.Printf("hotreload: reloading %s (%d changed file(s))", active.Common().Name(), len(paths))
	if err := active.Common().ApplyReload(); err != nil {
		return fmt.Errorf("failed to reload demo %s: %w", active.Name(), err)
	}
	delete(e.pendingReload, e.active)
	return nil
}

func (e *engine) dispatchInputs() error {
	inputs := e.inputs
	e.inputs = nil

	for _, ev := range inputs {
		active := e.demos[e.active]
		switch ev.Kind {
		case InputKey:
			if err := e.handleKey(active, ev.Key); err != nil {
				return err
			}
			if e.quit {
				return nil
			}
		case InputScroll:
			if ev.Delta > scrollThreshold {
				active.HandleScroll(true)
			} else if ev.Delta < -scrollThreshold {
				active.HandleScroll(false)
			}
		case InputClick:
			e.renderer.SetMouse(ev.X, ev.Y)
			active.HandleClick(e.renderer.MouseClip(), ev.Pressed)
		case InputMove:
			e.renderer.SetMouse(ev.X, ev.Y)
		case InputResize:
			e.renderer.Resize(ev.Width, ev.Height)
		}
	}
	return nil
}

func (e *engine) handleKey(active demo.Demo, key uint32) error {
	switch key {
	case common.KeyEsc:
		e.Quit()
		return nil
	case common.KeyP:
		return e.SetActive(e.active - 1)
	case common.KeyN:
		return e.SetActive(e.active + 1)
	case common.KeyUp, common.KeyW:
		active.Common().FillUp()
		log.Printf("engine: %s fill mode %s", active.Name(), active.Common().FillMode())
	case common.KeyDown, common.KeyS:
		active.Common().FillDown()
		log.Printf("engine: %s fill mode %s", active.Name(), active.Common().FillMode())
	}
	active.HandleKey(key)
	return nil
}

func (e *engine) render(active demo.Demo) error {
	frame, err := e.renderer.BeginFrame()
	if errors.Is(err, renderer.ErrSurfaceUnavailable) {
		if !e.surfaceLost {
			log.Printf("engine: skipping frames: %v", err)
			e.surfaceLost = true
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to begin frame: %w", err)
	}
	if e.surfaceLost {
		log.Printf("engine: surface available again")
		e.surfaceLost = false
	}

	if err := active.Render(e.renderer, frame); err != nil {
		e.renderer.DiscardFrame(frame)
		return fmt.Errorf("failed to render demo %s: %w", active.Name(), err)
	}
	if err := e.renderer.EndFrame(frame); err != nil {
		return fmt.Errorf("failed to submit frame of demo %s: %w", active.Name(), err)
	}
	active.Common().AdvanceFrame()

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick(active.Name())
	}
	return nil
}

func (e *engine) PushInput(ev InputEvent) {
	e.inputs = append(e.inputs, ev)
}

func (e *engine) Active() demo.Demo {
	return e.demos[e.active]
}

func (e *engine) ActiveIndex() int {
	return e.active
}

func (e *engine) SetActive(index int) error {
	index = common.Clamp(index, 0, len(e.demos)-1)
	if index == e.active {
		return nil
	}
	e.active = index
	next := e.demos[index]
	log.Printf("engine: switched to demo %d (%s)", index, next.Name())

	if e.pendingReload[index] {
		delete(e.pendingReload, index)
		if err := next.Common().ApplyReload(); err != nil {
			return fmt.Errorf("failed to reload demo %s: %w", next.Name(), err)
		}
	}
	return nil
}

func (e *engine) Running() bool {
	return !e.quit
}

// Quit signals the loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		e.quit = true
		if e.window != nil {
			e.window.RequestClose()
		}
	})
}

// samePath compares two file paths after making them absolute and clean.
func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
