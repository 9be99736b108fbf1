package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Target is a named source to collect posts from. Type selects the fetcher:
// "static" uses the plain HTTP fetcher, everything else ("page", "group",
// "search") goes through the browser.
type Target struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

type targetsFile struct {
	Targets []Target `json:"targets"`
}

// LoadTargets reads the target list from path. A missing file is an empty
// list, not an error.
func LoadTargets(path string) ([]Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read targets: %w", err)
	}

	var tf targetsFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("failed to parse targets: %w", err)
	}
	return tf.Targets, nil
}

// SaveTargets writes the target list to path.
func SaveTargets(path string, targets []Target) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(targetsFile{Targets: targets}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
