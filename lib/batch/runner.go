// Package batch discovers encrypted containers and attacks them one by one or
// across a pool of worker goroutines.
package batch

import (
	"context"
	"sort"
	"sync"

	"github.com/unclesp1d3r/containercrack/lib/container"
	"github.com/unclesp1d3r/containercrack/lib/crackerrors"
	"github.com/unclesp1d3r/containercrack/lib/display"
	"github.com/unclesp1d3r/containercrack/lib/session"
	"github.com/unclesp1d3r/containercrack/lib/strategy"
	"github.com/unclesp1d3r/containercrack/lib/verifier"
	"github.com/unclesp1d3r/containercrack/runstate"
)

// Result holds exactly one outcome per target, keyed by target path.
type Result map[string]session.Outcome

// Paths returns the target paths in sorted order.
func (r Result) Paths() []string {
	paths := make([]string, 0, len(r))
	for p := range r {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	return paths
}

// Cracked returns the number of targets whose password was found.
func (r Result) Cracked() int {
	n := 0
	for _, o := range r {
		if o.Success {
			n++
		}
	}

	return n
}

// Runner attacks a list of targets with one attack configuration.
type Runner struct {
	Config   strategy.AttackConfig
	Parallel bool
	Workers  int
	// Registry supplies the backends. Nil means verifier.Default.
	Registry *verifier.Registry
	// OnOutcome is called from the goroutine running Run once per finished target.
	OnOutcome func(session.Outcome)
}

// Run attacks every target and returns their outcomes.
//
// Configuration problems, an empty target list and missing backends are
// returned as errors before any target is touched. Everything that goes wrong
// with a single target is recorded in its outcome instead.
func (r *Runner) Run(ctx context.Context, targets []container.Target) (Result, error) {
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}

	cfg := r.Config.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg := r.Registry
	if reg == nil {
		reg = verifier.Default
	}

	kinds := make([]container.Kind, 0, len(targets))
	for _, t := range targets {
		kinds = append(kinds, t.Kind)
	}
	if err := reg.CheckAvailable(kinds); err != nil {
		return nil, err
	}

	w := &worker{cfg: cfg, registry: reg}
	result := make(Result, len(targets))
	collect := func(o session.Outcome) {
		result[o.Target.Path] = o
		if r.OnOutcome != nil {
			r.OnOutcome(o)
		}
	}

	workers := min(r.Workers, len(targets))
	if !r.Parallel || workers <= 1 {
		for _, t := range targets {
			collect(w.attack(ctx, t))
		}

		return result, nil
	}

	runstate.Logger.Debug("Starting worker pool", "workers", workers, "targets", len(targets))

	tasks := make(chan container.Target, workers)
	outcomes := make(chan session.Outcome, workers)

	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for t := range tasks {
				outcomes <- w.attack(ctx, t)
			}
		})
	}

	go func() {
		defer close(tasks)
		for _, t := range targets {
			tasks <- t
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	for o := range outcomes {
		collect(o)
	}

	return result, nil
}

// worker runs single targets. It is shared by all pool goroutines and holds no mutable state.
type worker struct {
	cfg      strategy.AttackConfig
	registry *verifier.Registry
}

// attack runs the configured strategy against one target with its own strategy and verifier.
// A panic is recovered and reported as a worker failure of that target.
func (w *worker) attack(ctx context.Context, target container.Target) (out session.Outcome) {
	if ctx.Err() != nil {
		return session.NotStarted(target, w.cfg.StartLine)
	}

	defer func() {
		if rec := recover(); rec != nil {
			runstate.Logger.Error("Recovered from panic while attacking target", "file", target.Path, "panic", rec)
			out = session.Failed(target, crackerrors.Errorf(crackerrors.KindWorkerFailure, "attack", target.Path,
				"worker panic: %v", rec))
		}
	}()

	if target.Kind == container.KindUnknown {
		return session.Failed(target, crackerrors.Errorf(crackerrors.KindUnsupportedFormat, "attack", target.Path,
			"unsupported file extension"))
	}

	strat, err := strategy.New(w.cfg)
	if err != nil {
		return session.Failed(target, err)
	}

	v, err := w.registry.Open(target)
	if err != nil {
		return session.Failed(target, err)
	}
	defer func() {
		if err := v.Close(); err != nil {
			runstate.Logger.Debug("Error closing verifier", "file", target.Path, "error", err)
		}
	}()

	display.AttackStarted(target, string(strat.Kind()))

	return strat.Run(ctx, target, v)
}
