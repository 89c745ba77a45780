package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"syscall"
	"time"

	"github.com/vanderheijden86/devsetup/pkg/catalog"
	"github.com/vanderheijden86/devsetup/pkg/config"
	"github.com/vanderheijden86/devsetup/pkg/debug"
	"github.com/vanderheijden86/devsetup/pkg/metrics"
	"github.com/vanderheijden86/devsetup/pkg/progress"
	"github.com/vanderheijden86/devsetup/pkg/route"
	"github.com/vanderheijden86/devsetup/pkg/ui"
	"github.com/vanderheijden86/devsetup/pkg/version"
	"github.com/vanderheijden86/devsetup/pkg/watcher"

	tea "github.com/charmbracelet/bubbletea"
)

// cliFlags holds the parsed command line.
type cliFlags struct {
	configPath    string
	store         string
	storePath     string
	catalogDir    string
	watch         bool
	theme         string
	guide         string
	routePath     string
	robotCatalog  bool
	search        string
	robotProgress string
	reset         string
	yes           bool
}

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")

	var f cliFlags
	flag.StringVar(&f.configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/devsetup/config.yaml)")
	flag.StringVar(&f.store, "store", "", "Progress backend: json, sqlite or memory")
	flag.StringVar(&f.storePath, "store-path", "", "Progress store file")
	flag.StringVar(&f.catalogDir, "catalog", "", "Load guides from a directory (categories.yaml + guides/*.yaml)")
	flag.BoolVar(&f.watch, "watch", false, "Reload the --catalog directory when it changes")
	flag.StringVar(&f.theme, "theme", "", "Color theme: dark or light")
	flag.StringVar(&f.guide, "guide", "", "Open the guide with this id")
	flag.StringVar(&f.routePath, "route", "", "Open the view at this path (e.g. /mqtt-guide)")
	flag.BoolVar(&f.robotCatalog, "robot-catalog", false, "Print the catalog as JSON (filtered by --search)")
	flag.StringVar(&f.search, "search", "", "Search query for --robot-catalog")
	flag.StringVar(&f.robotProgress, "robot-progress", "", "Print progress of the given guide as JSON")
	flag.StringVar(&f.reset, "reset", "", "Clear progress of the given guide")
	flag.BoolVar(&f.yes, "yes", false, "Skip confirmation prompts (use with --reset)")
	flag.Parse()

	// CPU profiling support
	if *cpuProfile != "" {
		pf, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pf.Close()
		if err := pprof.StartCPUProfile(pf); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: devsetup [options]")
		fmt.Println("\nStep-by-step server setup guides in the terminal.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Println(version.String())
		os.Exit(0)
	}

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(f cliFlags) error {
	cfg, cfgPath, err := loadSettings(f)
	if err != nil {
		return err
	}

	cat, err := loadCatalog(cfg.Catalog.Path)
	if err != nil {
		return err
	}

	if f.robotCatalog {
		return writeRobotCatalog(os.Stdout, cat, f.search)
	}

	backend, err := progress.Open(cfg.Storage.Backend, cfg.StoragePath())
	if err != nil {
		return fmt.Errorf("opening progress store: %w", err)
	}
	defer backend.Close()
	store := progress.NewStore(backend)

	switch {
	case f.robotProgress != "":
		return writeRobotProgress(os.Stdout, cat, store, f.robotProgress)
	case f.reset != "":
		return resetGuide(os.Stdout, cat, store, f.reset, f.yes, confirmReset)
	}

	closeLog := redirectDebugLog()
	defer closeLog()

	opts := []ui.Option{
		ui.WithLightTheme(cfg.IsLight()),
		ui.WithSidebarWidth(cfg.UI.SidebarWidth),
		ui.WithInitialView(initialView(cat, f.guide, f.routePath)),
		ui.WithThemeSaver(func(light bool) error { return saveTheme(cfgPath, light) }),
	}

	if cfg.Catalog.Watch && cfg.Catalog.Path != "" {
		w, err := watcher.NewWatcher(cfg.Catalog.Path,
			watcher.WithOnError(func(err error) { debug.Log("watcher: %v", err) }),
		)
		if err != nil {
			return fmt.Errorf("watching catalog: %w", err)
		}
		if err := w.Start(); err != nil {
			return fmt.Errorf("watching catalog: %w", err)
		}
		defer w.Stop()
		opts = append(opts, ui.WithCatalogWatch(w, cfg.Catalog.Path))
	}

	m := ui.NewModel(cat, store, opts...)
	err = runTUIProgram(m)
	logMetrics()
	if err != nil {
		return fmt.Errorf("running devsetup: %w", err)
	}
	return nil
}

// logMetrics writes the session's timing stats to the debug log.
func logMetrics() {
	if !debug.Enabled() {
		return
	}
	for _, s := range metrics.Snapshot() {
		debug.Log("metrics: %s count=%d avg=%s max=%s total=%s", s.Name, s.Count, s.Avg(), s.Max, s.Total)
	}
}

// loadSettings resolves configuration with flag > env > file > default
// precedence and returns it with the path theme changes are saved to.
func loadSettings(f cliFlags) (config.Config, string, error) {
	path := f.configPath
	var cfg config.Config
	var err error
	if path == "" {
		path = config.ConfigPath()
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFrom(path)
	}
	if err != nil {
		return cfg, path, err
	}
	cfg.ApplyEnv()

	if f.store != "" {
		cfg.Storage.Backend = f.store
	}
	if f.storePath != "" {
		cfg.Storage.Path = f.storePath
	}
	if f.catalogDir != "" {
		cfg.Catalog.Path = f.catalogDir
	}
	if f.watch {
		cfg.Catalog.Watch = true
	}
	if f.theme != "" {
		cfg.UI.Theme = f.theme
	}
	if err := cfg.Validate(); err != nil {
		return cfg, path, err
	}
	return cfg, path, nil
}

// saveTheme persists the theme choice into the config file at path,
// leaving the other file settings as they were. Flag and env overrides are
// not written back.
func saveTheme(path string, light bool) error {
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}
	cfg.UI.Theme = config.ThemeDark
	if light {
		cfg.UI.Theme = config.ThemeLight
	}
	return config.SaveTo(cfg, path)
}

// loadCatalog returns the embedded catalog, or the one in dir when set.
func loadCatalog(dir string) (*catalog.Catalog, error) {
	if dir == "" {
		return catalog.Load()
	}
	c, err := catalog.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("loading catalog from %s: %w", dir, err)
	}
	return c, nil
}

// initialView picks the view the TUI opens on. --guide wins over --route.
func initialView(c *catalog.Catalog, guideID, path string) route.View {
	if guideID != "" {
		// guides without content fall back to home
		v, _ := route.Open(c, guideID)
		return v
	}
	return route.Resolve(c, path)
}

// redirectDebugLog sends debug output to a file while the TUI owns the
// terminal. The returned func closes the file.
func redirectDebugLog() func() {
	if !debug.Enabled() {
		return func() {}
	}
	dir := config.StateDir()
	if dir == "" {
		return func() {}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return func() {}
	}
	debug.SetOutput(f)
	return func() {
		debug.SetOutput(os.Stderr)
		f.Close()
	}
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set DEVSETUP_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("DEVSETUP_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
