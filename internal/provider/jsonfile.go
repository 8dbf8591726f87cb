package provider

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// loadJSON reads a whole JSON document into out. A missing file is
// not an error; out keeps its zero value. Unreadable content is
// reported rather than silently reset so a corrupt file never gets
// clobbered by the next save.
func loadJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// saveJSON rewrites the whole document. Last writer wins; this is the
// documented single-user boundary.
func saveJSON(path string, in interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// intArg pulls an integer argument out of a dispatch argument map,
// tolerating the float64 that JSON decoding produces.
func intArg(args map[string]interface{}, key string, def int) int {
	v, ok := args[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return def
	}
}

// stringArg pulls a string argument out of a dispatch argument map.
func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}
