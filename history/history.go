package history

// This file contains shared utilities for recording and loading the local
// run history kept under the repository's .bsrun directory.

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bsrun/bsrun/model"
)

type Entry struct {
	Run      model.Run
	FullPath string
}

// Root returns the .bsrun directory path from the git repository root.
func Root() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("not in a git repository: %w", err)
	}
	repoRoot := strings.TrimSpace(string(output))
	return filepath.Join(repoRoot, ".bsrun"), nil
}

// Record writes one run record to a fresh .bsrun/<timestamp>-<id> directory
// and returns the directory path.
func Record(run *model.Run) (string, error) {
	root, err := Root()
	if err != nil {
		return "", err
	}

	shortID := run.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	runName := fmt.Sprintf("%s-%s", run.Timestamp.Format("20060102-150405"), shortID)
	runDir := filepath.Join(root, runName)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "run.json"), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write run metadata: %w", err)
	}
	return runDir, nil
}

// LoadEntries loads all run records from the .bsrun directory.
func LoadEntries(logger zerolog.Logger, root string) ([]Entry, error) {
	var entries []Entry

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			runPath := filepath.Join(path, "run.json")
			if _, err := os.Stat(runPath); err == nil {
				run, err := parseRunJSON(runPath)
				if err != nil {
					logger.Warn().Err(err).Str("path", runPath).Msg("Failed to parse run.json")
					return nil
				}

				entries = append(entries, Entry{
					Run:      run,
					FullPath: path,
				})
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk .bsrun directory: %w", err)
	}

	return entries, nil
}

func parseRunJSON(runPath string) (model.Run, error) {
	data, err := os.ReadFile(runPath)
	if err != nil {
		return model.Run{}, err
	}

	var run model.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return model.Run{}, err
	}

	return run, nil
}
