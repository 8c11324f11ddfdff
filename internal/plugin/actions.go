package plugin

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ayusman/mefu/internal/logging"
	"github.com/ayusman/mefu/internal/menu"
)

// Result reports the outcome of one plugin action run.
type Result struct {
	Handler  string
	Response *Response
	Err      error
}

// Actions binds discovered plugin actions to menu handlers named
// "<plugin>/<action>". Runs happen on their own goroutines so the menu loop
// never blocks on a plugin.
type Actions struct {
	mgr      *Manager
	exec     *Executor
	logger   *slog.Logger
	handlers []string
	wg       sync.WaitGroup

	mu       sync.Mutex
	onResult func(Result)
}

// HandlerName returns the menu handler name of a plugin action.
func HandlerName(plugin, action string) string {
	return plugin + "/" + action
}

// RegisterActions registers every action of every plugin known to mgr.
func RegisterActions(reg *menu.Registry, mgr *Manager, exec *Executor) *Actions {
	a := &Actions{
		mgr:    mgr,
		exec:   exec,
		logger: logging.With("plugin"),
	}

	for _, p := range mgr.List() {
		for _, action := range p.Manifest.Actions {
			name := HandlerName(p.Manifest.Name, action)
			plugin, action := p, action
			reg.Register(name, func() { a.launch(plugin, action, name) })
			a.handlers = append(a.handlers, name)
		}
	}
	return a
}

// Handlers returns the registered handler names in registration order.
func (a *Actions) Handlers() []string {
	return append([]string(nil), a.handlers...)
}

// OnResult sets a callback run on the worker goroutine after each action.
func (a *Actions) OnResult(fn func(Result)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onResult = fn
}

// Wait blocks until every launched action has finished.
func (a *Actions) Wait() {
	a.wg.Wait()
}

// Items builds one submenu per plugin, each listing its actions.
func (a *Actions) Items() []menu.Item {
	var items []menu.Item
	for _, p := range a.mgr.List() {
		if len(p.Manifest.Actions) == 0 {
			continue
		}
		parent := menu.Item{Name: p.Manifest.Name, Icon: p.Manifest.Icon}
		if p.Manifest.Description != "" {
			parent.Name = p.Manifest.Description
		}
		for _, action := range p.Manifest.Actions {
			parent.Children = append(parent.Children, menu.Item{
				Name:    p.Manifest.Label(action),
				Icon:    action,
				Handler: HandlerName(p.Manifest.Name, action),
			})
		}
		items = append(items, parent)
	}
	return items
}

func (a *Actions) launch(p *Plugin, action, handler string) {
	req := &Request{
		Action:  action,
		Handler: handler,
		Item:    p.Manifest.Label(action),
		Params:  p.Manifest.Params[action],
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		resp, err := a.exec.Execute(context.Background(), p, req)
		switch {
		case err != nil:
			a.logger.Warn("plugin action failed", slog.String("handler", handler), slog.Any("error", err))
		case !resp.Success:
			a.logger.Warn("plugin action reported failure", slog.String("handler", handler), slog.String("error", resp.Error))
		default:
			a.logger.Debug("plugin action done", slog.String("handler", handler))
		}

		a.mu.Lock()
		fn := a.onResult
		a.mu.Unlock()
		if fn != nil {
			fn(Result{Handler: handler, Response: resp, Err: err})
		}
	}()
}
