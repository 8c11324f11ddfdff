package plugin

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// writePlugin creates dir/<m.Name>/plugin.json and, when script is non-empty,
// an executable named m.Executable.
func writePlugin(t *testing.T, dir string, m Manifest, script string) string {
	t.Helper()

	pluginDir := filepath.Join(dir, m.Name)
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pluginDir, "plugin.json"), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	if script != "" {
		if err := os.WriteFile(filepath.Join(pluginDir, m.Executable), []byte(script), 0755); err != nil {
			t.Fatalf("failed to write script: %v", err)
		}
	}
	return pluginDir
}

// scriptPlugin returns a Plugin running a shell script from a temp dir.
func scriptPlugin(t *testing.T, name, script string) *Plugin {
	t.Helper()
	m := Manifest{Name: name, Version: "1.0.0", Executable: name + ".sh", Actions: []string{"run"}}
	dir := writePlugin(t, t.TempDir(), m, script)
	return &Plugin{Manifest: m, Path: dir, Executable: filepath.Join(dir, m.Executable)}
}
