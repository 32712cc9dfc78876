package cli

// This file contains the list command for displaying previous test runs.

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/bsrun/bsrun/history"
)

func (a *App) list(ctx *cli.Context) error {
	limit := ctx.Int("limit")

	root, err := history.Root()
	if err != nil {
		return err
	}
	if _, err := os.Stat(root); os.IsNotExist(err) {
		fmt.Println("No test runs found")
		fmt.Printf("Test runs are saved to %s/<timestamp>-<id>/\n", root)
		return nil
	}

	entries, err := history.LoadEntries(a.logger, root)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No test runs found")
		return nil
	}

	// Sort by timestamp (newest first)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Run.Timestamp.After(entries[j].Run.Timestamp)
	})

	// Apply limit
	displayRuns := entries
	if limit > 0 && limit < len(displayRuns) {
		displayRuns = displayRuns[:limit]
	}

	fmt.Printf("\n=== Test Runs (%d total) ===\n\n", len(entries))

	for _, entry := range displayRuns {
		run := entry.Run
		timestamp := run.Timestamp.Format("2006-01-02 15:04:05")
		duration := run.Duration.Round(time.Second)

		// Determine status indicator
		status := "✓"
		if run.ExitCode != 0 {
			status = "✗"
		}

		// Show short ID (first 8 chars)
		shortID := run.ID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}

		fmt.Printf("%s  %s  [%s]  exit=%d  id=%s\n", status, timestamp, duration, run.ExitCode, shortID)
		if run.Project != "" {
			fmt.Printf("   Project: %s\n", run.Project)
		}
		if len(run.Devices) > 0 {
			fmt.Printf("   Devices: %s\n", strings.Join(run.Devices, ", "))
		}
		if len(run.FailedDevices) > 0 {
			fmt.Printf("   Failed: %s\n", strings.Join(run.FailedDevices, ", "))
		}
		if len(run.NoStartDevices) > 0 {
			fmt.Printf("   Never started: %s\n", strings.Join(run.NoStartDevices, ", "))
		}
		fmt.Printf("   %s\n", entry.FullPath)
		fmt.Println()
	}

	return nil
}
