// Command media is a menu plugin for volume and playback control:
// AppleScript on macOS, pactl and playerctl on Linux.
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

// command is one external program invocation.
type command []string

// darwinKeyCode wraps a System Events media key press.
func darwinKeyCode(code int) command {
	return command{"osascript", "-e", fmt.Sprintf("tell application \"System Events\"\n\tkey code %d\nend tell", code)}
}

var commands = map[string]map[string]command{
	"darwin": {
		"volume-up":   {"osascript", "-e", `set volume output volume ((output volume of (get volume settings)) + 10)`},
		"volume-down": {"osascript", "-e", `set volume output volume ((output volume of (get volume settings)) - 10)`},
		"volume-mute": {"osascript", "-e", `set volume output muted (not (output muted of (get volume settings)))`},
		"play-pause":  darwinKeyCode(100),
		"next":        darwinKeyCode(101),
		"prev":        darwinKeyCode(98),
	},
	"linux": {
		"volume-up":   {"pactl", "set-sink-volume", "@DEFAULT_SINK@", "+10%"},
		"volume-down": {"pactl", "set-sink-volume", "@DEFAULT_SINK@", "-10%"},
		"volume-mute": {"pactl", "set-sink-mute", "@DEFAULT_SINK@", "toggle"},
		"play-pause":  {"playerctl", "play-pause"},
		"next":        {"playerctl", "next"},
		"prev":        {"playerctl", "previous"},
	},
}

func main() {
	var req plugin.Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		respond(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	cmd, err := lookup(runtime.GOOS, req.Action)
	if err != nil {
		respond(err)
		return
	}
	respond(run(cmd))
}

func lookup(goos, action string) (command, error) {
	table, ok := commands[goos]
	if !ok {
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
	cmd, ok := table[action]
	if !ok {
		return nil, fmt.Errorf("unknown action: %s", action)
	}
	return cmd, nil
}

func run(c command) error {
	out, err := exec.Command(c[0], c[1:]...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", c[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

func respond(err error) {
	resp := plugin.Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
