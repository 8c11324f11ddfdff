package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ayusman/mefu/internal/app"
	"github.com/ayusman/mefu/internal/capture"
	"github.com/ayusman/mefu/internal/config"
	"github.com/ayusman/mefu/internal/detector"
	"github.com/ayusman/mefu/internal/layout"
	"github.com/ayusman/mefu/internal/logging"
	"github.com/ayusman/mefu/internal/menu"
	"github.com/ayusman/mefu/internal/menufile"
	"github.com/ayusman/mefu/internal/plugin"
	"github.com/ayusman/mefu/internal/server"
	"github.com/ayusman/mefu/internal/store"
	"github.com/ayusman/mefu/internal/tray"
)

const gestureSetting = "gesture_enabled"

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to config.yaml")
	headless := flag.Bool("headless", false, "run without the system tray")
	flag.Parse()

	if err := run(*configPath, *headless); err != nil {
		fmt.Fprintf(os.Stderr, "mefu: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, headless bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logging.Init(cfg.LoggingOptions())
	defer logging.Close()
	logger := logging.With("main")

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	journal := st.Journal()
	journal.SetLogger(logging.With("journal"))
	settings := st.Settings()
	gestureOn := settings.Bool(gestureSetting, cfg.Gesture.Enabled)

	registry := menu.NewRegistry()

	mgr := plugin.NewManager(cfg.Plugins.Dir)
	if err := mgr.Discover(); err != nil {
		logger.Warn("plugin discovery failed", slog.String("dir", cfg.Plugins.Dir), slog.Any("error", err))
	}
	actions := plugin.RegisterActions(registry, mgr, plugin.NewExecutor(cfg.PluginTimeout()))
	defer actions.Wait()

	items, err := menuItems(cfg, actions)
	if err != nil {
		return err
	}

	surface := app.NewLogSurface(logging.With("surface"))
	a := app.New(cfg.AppConfig(), surface, registry)
	a.SetItems(items)

	for _, h := range menufile.Handlers(items) {
		if !registry.Has(h) {
			logger.Warn("menu handler not registered", slog.String("handler", h))
		}
	}

	t := tray.New(gestureOn)
	a.SetJournal(menu.MultiJournal(journal, t.Journal()))

	det, err := detector.NewMediaPipeDetector(cfg.DetectorConfig())
	if err != nil {
		logger.Warn("hand detector unavailable, gestures limited to remote ingest", slog.Any("error", err))
	} else {
		defer det.Close()
		a.SetSampler(capture.NewSampler(capture.NewCamera(cfg.CameraConfig()), det, a.Slot(), cfg.SamplerConfig()))
	}

	a.OnGestureChange(func(on bool) {
		if err := settings.SetBool(gestureSetting, on); err != nil {
			logger.Warn("failed to persist gesture mode", slog.Any("error", err))
		}
		t.SetGestureEnabled(on)
	})
	if gestureOn {
		a.SetGestureEnabled(true)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Enabled {
		srv := server.New(server.Config{
			StaticDir: findWebDir(cfg.Server.StaticDir),
			Slot:      a.Slot(),
			Journal:   journal,
			Settings:  settings,
			Logger:    logging.With("server"),
			OnPointer: func(pos layout.Point, secondary bool) {
				button := app.ButtonPrimary
				if secondary {
					button = app.ButtonSecondary
				}
				a.Post(app.PointerEvent{Pos: pos, Button: button})
			},
		})
		go func() {
			logger.Info("starting server", slog.String("addr", cfg.Server.Listen))
			if err := srv.ListenAndServe(cfg.Server.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server failed", slog.Any("error", err))
				stop()
			}
		}()
	}

	loopErr := make(chan error, 1)
	go func() { loopErr <- a.Run(ctx) }()

	if cfg.Tray.Enabled && !headless {
		t.OnToggle(a.SetGestureEnabled)
		t.OnOpen(func() { a.Do(a.OpenAtCenter) })
		t.OnQuit(stop)
		go func() {
			<-ctx.Done()
			t.Quit()
		}()
		t.Run()
		stop()
	} else {
		<-ctx.Done()
	}

	if err := <-loopErr; err != nil {
		return fmt.Errorf("menu loop: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

// menuItems returns the root items: the menu file when configured, else one
// submenu per plugin followed by the gesture toggle.
func menuItems(cfg config.Config, actions *plugin.Actions) ([]menu.Item, error) {
	toggle := menu.Item{Name: "Gesture Mode", Icon: "hand", Handler: app.ToggleGestureHandler}

	if cfg.Menu.File == "" {
		return append(actions.Items(), toggle), nil
	}

	f, err := menufile.Load(cfg.Menu.File)
	if err != nil {
		return nil, err
	}
	items := f.Menu.Items
	if f.Menu.IncludePlugins {
		items = append(items, actions.Items()...)
	}
	return items, nil
}

// findWebDir returns dir when set, else the first of "web", "../web" and
// the data directory's web folder that exists.
func findWebDir(dir string) string {
	if dir != "" {
		return dir
	}

	for _, p := range []string{"web", "../web", filepath.Join(config.DataDir(), "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
