// Package runstate provides the shared logger and run-wide state used across containercrack.
package runstate

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// State represents the configuration and runtime state of the current run.
var State = runState{} //nolint:gochecknoglobals // Global run state

// runState holds settings resolved from configuration before any work starts.
// Fields touched by worker goroutines go through the getter/setter methods.
type runState struct {
	DataPath         string // DataPath is the directory holding fetched wordlists and other run data.
	WordlistsPath    string // WordlistsPath is the directory remote wordlists are downloaded into.
	OutputPath       string // OutputPath is the directory reports are written to.
	Debug            bool   // Debug specifies whether the run logs at debug level.
	ExtraDebugging   bool   // ExtraDebugging logs every rejected candidate. Set once at init.
	Workers          int    // Workers is the size of the parallel worker pool.
	ProgressInterval uint64 // ProgressInterval is the number of attempts between progress log lines.
	ShowProgressBar  bool   // ShowProgressBar enables the batch progress bar.

	// Synchronized fields, accessed from the orchestrator and its workers.
	interrupted       atomic.Bool
	currentActivityMu sync.RWMutex
	currentActivity   Activity
}

// Activity represents what the run is doing right now.
type Activity string

// Activity constants define the phases of a run.
const (
	// CurrentActivityStarting indicates configuration is being loaded.
	CurrentActivityStarting Activity = "starting"
	// CurrentActivityFetching indicates a remote wordlist is being downloaded.
	CurrentActivityFetching Activity = "fetching"
	// CurrentActivityDiscovering indicates target directories are being scanned.
	CurrentActivityDiscovering Activity = "discovering"
	// CurrentActivityCracking indicates candidates are being verified.
	CurrentActivityCracking Activity = "cracking"
	// CurrentActivityReporting indicates the report is being written.
	CurrentActivityReporting Activity = "reporting"
	// CurrentActivityStopping indicates the run was interrupted and is winding down.
	CurrentActivityStopping Activity = "stopping"
)

// GetInterrupted returns whether an interrupt signal has been received.
func (s *runState) GetInterrupted() bool {
	return s.interrupted.Load()
}

// SetInterrupted records that an interrupt signal has been received.
func (s *runState) SetInterrupted(v bool) {
	s.interrupted.Store(v)
}

// GetCurrentActivity returns the current activity of the run (thread-safe).
func (s *runState) GetCurrentActivity() Activity {
	s.currentActivityMu.RLock()
	defer s.currentActivityMu.RUnlock()

	return s.currentActivity
}

// SetCurrentActivity sets the current activity of the run (thread-safe).
func (s *runState) SetCurrentActivity(a Activity) {
	s.currentActivityMu.Lock()
	defer s.currentActivityMu.Unlock()
	s.currentActivity = a
}

// Logger is a shared logging instance configured to output logs at InfoLevel with timestamps to os.Stdout.
var Logger = log.NewWithOptions(os.Stdout, log.Options{ //nolint:gochecknoglobals // Global logger instance
	Level:           log.InfoLevel,
	ReportTimestamp: true,
})

// ErrorLogger is a logger instance for logging critical errors with detailed error information.
var ErrorLogger = Logger.With() //nolint:gochecknoglobals // Global error logger instance
