package main

import (
	"fmt"
	"log"
	"time"

	"github.com/Carmen-Shannon/oxy-lab/config"
	"github.com/Carmen-Shannon/oxy-lab/demos"
	"github.com/Carmen-Shannon/oxy-lab/engine"
	"github.com/Carmen-Shannon/oxy-lab/engine/hotreload"
	"github.com/Carmen-Shannon/oxy-lab/engine/profiler"
	"github.com/Carmen-Shannon/oxy-lab/engine/renderer"
	"github.com/Carmen-Shannon/oxy-lab/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-lab/engine/window"
	"github.com/spf13/pflag"
)

func main() {
	// ── Flags + Config ──────────────────────────────────────────────────
	configPath := pflag.StringP("config", "c", "", "TOML configuration file")
	shaderDir := pflag.String("shaders", "", "directory holding the demo WGSL files")
	initialDemo := pflag.Int("demo", 0, "index of the demo shown at startup")
	watcherBackend := pflag.String("watcher", "", `shader watcher backend, "fsnotify" or "poll"`)
	profile := pflag.Bool("profile", false, "log FPS and memory statistics every second")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if pflag.CommandLine.Changed("shaders") {
		cfg.Lab.ShaderDir = *shaderDir
	}
	if pflag.CommandLine.Changed("demo") {
		cfg.Lab.InitialDemo = *initialDemo
	}
	if pflag.CommandLine.Changed("watcher") {
		cfg.Watcher.Backend = *watcherBackend
	}
	if pflag.CommandLine.Changed("profile") {
		cfg.Lab.Profiling = *profile
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("oxy-lab: %v", err)
	}
}

func run(cfg config.Config) error {
	log.Println("[P]revious demo, [N]ext demo, Up/W and Down/S change fill mode, Escape quits")

	// ── Window ──────────────────────────────────────────────────────────
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	// ── Renderer ────────────────────────────────────────────────────────
	presentMode := renderer.PresentModeVSync
	if cfg.Renderer.PresentMode == renderer.PresentModeUncapped.String() {
		presentMode = renderer.PresentModeUncapped
	}
	r, err := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		win,
		renderer.WithPresentMode(presentMode),
		renderer.WithMSAA(renderer.MSAASampleCount(cfg.Renderer.MSAA)),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.Software),
	)
	if err != nil {
		return err
	}
	defer r.Release()

	// ── Shaders + Demos ─────────────────────────────────────────────────
	store := shader.NewStore(cfg.Lab.ShaderDir,
		shader.WithCompiler(r),
		shader.WithValidation(cfg.Lab.ValidateWGSL),
	)
	all, err := demos.Load(store, demos.All...)
	if err != nil {
		return err
	}
	defer func() {
		for _, d := range all {
			d.Release()
		}
	}()

	// ── Hot Reload ──────────────────────────────────────────────────────
	watcher, err := newWatcher(cfg)
	if err != nil {
		return err
	}
	defer watcher.Close()
	log.Printf("Watching %s for shader changes (%s)", cfg.Lab.ShaderDir, cfg.Watcher.Backend)

	// ── Engine ──────────────────────────────────────────────────────────
	eng, err := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithWatcher(watcher),
		engine.WithDemos(all...),
		engine.WithInitialDemo(cfg.Lab.InitialDemo),
		engine.WithExtension(cfg.Watcher.Extension),
		engine.WithTickRate(cfg.Lab.TickRate),
		engine.WithProfiling(cfg.Lab.Profiling),
		engine.WithProfiler(profiler.NewProfiler(profiler.WithInterval(time.Second))),
	)
	if err != nil {
		return err
	}
	return eng.Run()
}

func newWatcher(cfg config.Config) (hotreload.Watcher, error) {
	options := []hotreload.WatcherBuilderOption{
		hotreload.WithQueueSize(cfg.Watcher.QueueSize),
		hotreload.WithPollInterval(time.Duration(cfg.Watcher.PollInterval)),
	}
	switch cfg.Watcher.Backend {
	case "poll":
		return hotreload.NewPollWatcher(cfg.Lab.ShaderDir, options...)
	case "fsnotify":
		return hotreload.NewFSNotifyWatcher(cfg.Lab.ShaderDir, options...)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownWatcher, cfg.Watcher.Backend)
	}
}
