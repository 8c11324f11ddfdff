// Package plugin discovers external action plugins and exposes their actions
// as menu handlers.
//
// A plugin is a directory holding a plugin.json manifest and an executable.
// The executable reads one JSON Request on stdin and writes one JSON Response
// on stdout.
package plugin

import "encoding/json"

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Actions     []string `json:"actions"`
	// Icon and Labels are used when the plugin is shown as a submenu.
	Icon   string            `json:"icon,omitempty"`
	Labels map[string]string `json:"labels,omitempty"`
	// Params holds fixed per-action parameters passed with every request.
	Params map[string]json.RawMessage `json:"params,omitempty"`
}

// Label returns the display label of action.
func (m Manifest) Label(action string) string {
	if l, ok := m.Labels[action]; ok && l != "" {
		return l
	}
	return action
}

// Request is sent to a plugin on stdin.
type Request struct {
	Action  string          `json:"action"`
	Handler string          `json:"handler"`
	Item    string          `json:"item,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// HasAction reports whether the manifest declares action.
func (p *Plugin) HasAction(action string) bool {
	for _, a := range p.Manifest.Actions {
		if a == action {
			return true
		}
	}
	return false
}
