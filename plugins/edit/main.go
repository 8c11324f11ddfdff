// Command edit is a menu plugin that sends clipboard and editing shortcuts to
// the focused application: AppleScript on macOS, xdotool on Linux.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/ayusman/mefu/internal/plugin"
)

// Shortcut is a key plus modifiers. Modifiers use portable names:
// primary (command on macOS, ctrl elsewhere), shift, alt, ctrl.
type Shortcut struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"`
}

var shortcuts = map[string]Shortcut{
	"copy":       {Key: "c", Modifiers: []string{"primary"}},
	"cut":        {Key: "x", Modifiers: []string{"primary"}},
	"paste":      {Key: "v", Modifiers: []string{"primary"}},
	"select-all": {Key: "a", Modifiers: []string{"primary"}},
	"undo":       {Key: "z", Modifiers: []string{"primary"}},
}

var appleModifiers = map[string]string{
	"primary": "command down",
	"command": "command down",
	"cmd":     "command down",
	"alt":     "option down",
	"option":  "option down",
	"ctrl":    "control down",
	"control": "control down",
	"shift":   "shift down",
}

var xdoModifiers = map[string]string{
	"primary": "ctrl",
	"ctrl":    "ctrl",
	"control": "ctrl",
	"alt":     "alt",
	"option":  "alt",
	"shift":   "shift",
	"command": "super",
	"cmd":     "super",
}

func main() {
	var req plugin.Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		respond(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	sc, err := resolve(req)
	if err != nil {
		respond(err)
		return
	}
	respond(send(runtime.GOOS, sc))
}

// resolve picks the shortcut for a request. Params, when present, override
// the built-in binding.
func resolve(req plugin.Request) (Shortcut, error) {
	sc, known := shortcuts[req.Action]
	if len(req.Params) > 0 {
		var p Shortcut
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return Shortcut{}, fmt.Errorf("failed to parse params: %w", err)
		}
		if p.Key != "" {
			return p, nil
		}
	}
	if !known {
		return Shortcut{}, fmt.Errorf("unknown action: %s", req.Action)
	}
	return sc, nil
}

func send(goos string, sc Shortcut) error {
	var cmd *exec.Cmd
	switch goos {
	case "darwin":
		cmd = exec.Command("osascript", "-e", appleScript(sc))
	case "linux":
		cmd = exec.Command("xdotool", "key", "--clearmodifiers", xdoChord(sc))
	default:
		return fmt.Errorf("unsupported platform: %s", goos)
	}

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func appleScript(sc Shortcut) string {
	var mods []string
	for _, m := range sc.Modifiers {
		if am, ok := appleModifiers[strings.ToLower(m)]; ok {
			mods = append(mods, am)
		}
	}
	if len(mods) == 0 {
		return fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, sc.Key)
	}
	return fmt.Sprintf(`tell application "System Events" to keystroke "%s" using {%s}`, sc.Key, strings.Join(mods, ", "))
}

func xdoChord(sc Shortcut) string {
	var parts []string
	for _, m := range sc.Modifiers {
		if xm, ok := xdoModifiers[strings.ToLower(m)]; ok {
			parts = append(parts, xm)
		}
	}
	return strings.Join(append(parts, sc.Key), "+")
}

func respond(err error) {
	resp := plugin.Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
