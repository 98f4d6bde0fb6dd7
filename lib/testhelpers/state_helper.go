// Package testhelpers provides reusable test utilities and helpers for testing containercrack.
package testhelpers

import (
	"os"
	"path/filepath"

	"github.com/unclesp1d3r/containercrack/runstate"
)

const dirPerm os.FileMode = 0o755

func mustMkdirAll(path string) {
	if err := os.MkdirAll(path, dirPerm); err != nil {
		panic(err)
	}
}

// SetupTestState initializes runstate.State with test values.
// It creates temporary directories for all path fields and returns a cleanup
// function that removes them and resets state.
func SetupTestState() func() {
	testDataDir, err := os.MkdirTemp(os.TempDir(), "containercrack-test-*")
	if err != nil {
		panic(err)
	}

	runstate.State.DataPath = filepath.Join(testDataDir, "data")
	runstate.State.WordlistsPath = filepath.Join(testDataDir, "data", "wordlists")
	runstate.State.OutputPath = filepath.Join(testDataDir, "results")
	runstate.State.Debug = false
	runstate.State.ExtraDebugging = false
	runstate.State.Workers = 2
	runstate.State.ProgressInterval = 1000
	runstate.State.ShowProgressBar = false

	mustMkdirAll(runstate.State.DataPath)
	mustMkdirAll(runstate.State.WordlistsPath)
	mustMkdirAll(runstate.State.OutputPath)

	return func() {
		_ = os.RemoveAll(testDataDir)
		ResetTestState()
	}
}

// ResetTestState resets runstate.State to zero values without cleanup.
// Useful for tests that need to reset state between subtests.
func ResetTestState() {
	runstate.State.DataPath = ""
	runstate.State.WordlistsPath = ""
	runstate.State.OutputPath = ""
	runstate.State.Debug = false
	runstate.State.ExtraDebugging = false
	runstate.State.Workers = 0
	runstate.State.ProgressInterval = 0
	runstate.State.ShowProgressBar = false
	// Reset synchronized fields via setters
	runstate.State.SetInterrupted(false)
	runstate.State.SetCurrentActivity("")
}

// WithTestState is a convenience wrapper that sets up state, runs the test function,
// and cleans up automatically.
func WithTestState(testFunc func()) {
	cleanup := SetupTestState()
	defer cleanup()
	testFunc()
}
