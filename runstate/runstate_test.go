package runstate

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_DefaultValues(t *testing.T) {
	assert.Empty(t, State.DataPath)
	assert.Empty(t, State.WordlistsPath)
	assert.Empty(t, State.OutputPath)
	assert.False(t, State.Debug)
	assert.False(t, State.ExtraDebugging)
	assert.Equal(t, 0, State.Workers)
	assert.Equal(t, uint64(0), State.ProgressInterval)
	assert.False(t, State.GetInterrupted())
}

func TestState_Modification(t *testing.T) {
	origOutput := State.OutputPath
	origWorkers := State.Workers
	origDebug := State.Debug

	defer func() {
		State.OutputPath = origOutput
		State.Workers = origWorkers
		State.Debug = origDebug
	}()

	State.OutputPath = "/tmp/results"
	State.Workers = 8
	State.Debug = true

	assert.Equal(t, "/tmp/results", State.OutputPath)
	assert.Equal(t, 8, State.Workers)
	assert.True(t, State.Debug)
}

func TestActivityConstants(t *testing.T) {
	assert.Equal(t, CurrentActivityStarting, Activity("starting"))
	assert.Equal(t, CurrentActivityFetching, Activity("fetching"))
	assert.Equal(t, CurrentActivityDiscovering, Activity("discovering"))
	assert.Equal(t, CurrentActivityCracking, Activity("cracking"))
	assert.Equal(t, CurrentActivityReporting, Activity("reporting"))
	assert.Equal(t, CurrentActivityStopping, Activity("stopping"))
}

func TestCurrentActivity_Concurrent(t *testing.T) {
	defer State.SetCurrentActivity("")

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			State.SetCurrentActivity(CurrentActivityCracking)
		}()
		go func() {
			defer wg.Done()
			_ = State.GetCurrentActivity()
		}()
	}
	wg.Wait()

	assert.Equal(t, CurrentActivityCracking, State.GetCurrentActivity())
}

func TestInterrupted(t *testing.T) {
	defer State.SetInterrupted(false)

	assert.False(t, State.GetInterrupted())
	State.SetInterrupted(true)
	assert.True(t, State.GetInterrupted())
}

func TestLoggers(t *testing.T) {
	assert.NotNil(t, Logger)
	assert.NotNil(t, ErrorLogger)
}
