// Package verifier tests candidate passwords against encrypted containers.
//
// Each container family has a Backend that parses a file once and hands out a
// Verifier bound to it. Backends register themselves with the Default registry
// from build-tagged files, so a binary built with -tags nooffice simply has no
// Office backend and reports it as unavailable at startup.
package verifier

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/unclesp1d3r/containercrack/lib/container"
	"github.com/unclesp1d3r/containercrack/lib/crackerrors"
)

// Verifier checks candidates against one opened container.
// A wrong password yields (false, nil); errors are reserved for structural problems.
// A Verifier is not safe for concurrent use.
type Verifier interface {
	Verify(candidate string) (bool, error)
	Close() error
}

// Backend opens containers of a single Kind.
type Backend interface {
	Kind() container.Kind
	Name() string
	Open(path string) (Verifier, error)
}

// Registry maps container kinds to backends.
type Registry struct {
	mu       sync.RWMutex
	backends map[container.Kind]Backend
}

// Default is the registry the compiled-in backends register with.
var Default = NewRegistry() //nolint:gochecknoglobals // Backend registry

// NewRegistry returns a registry holding the given backends.
func NewRegistry(backends ...Backend) *Registry {
	r := &Registry{backends: make(map[container.Kind]Backend)}
	for _, b := range backends {
		r.Register(b)
	}

	return r
}

// Register adds a backend, replacing any previous backend for the same kind.
func (r *Registry) Register(b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[b.Kind()] = b
}

// Lookup returns the backend for kind or a KindBackendUnavailable error.
func (r *Registry) Lookup(kind container.Kind) (Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.backends[kind]
	if !ok {
		return nil, crackerrors.Errorf(crackerrors.KindBackendUnavailable, "lookup", "",
			"no %s backend compiled into this binary", kind)
	}

	return b, nil
}

// Available returns the registered backends ordered by kind.
func (r *Registry) Available() []Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Backend, 0, len(r.backends))
	for _, b := range r.backends {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind() < out[j].Kind() })

	return out
}

// CheckAvailable verifies once, before any attempt is made, that every kind has a backend.
// The returned error names all missing kinds.
func (r *Registry) CheckAvailable(kinds []container.Kind) error {
	var missing []string
	seen := make(map[container.Kind]bool)
	for _, k := range kinds {
		if seen[k] || k == container.KindUnknown {
			continue
		}
		seen[k] = true
		if _, err := r.Lookup(k); err != nil {
			missing = append(missing, k.String())
		}
	}

	if len(missing) == 0 {
		return nil
	}

	return crackerrors.Errorf(crackerrors.KindBackendUnavailable, "startup", "",
		"no backend compiled in for: %s", strings.Join(missing, ", "))
}

// Open detects the kind of target and opens it with the matching backend.
func (r *Registry) Open(target container.Target) (Verifier, error) {
	if target.Kind == container.KindUnknown {
		return nil, crackerrors.Errorf(crackerrors.KindUnsupportedFormat, "open", target.Path,
			"no container kind was detected for this target")
	}

	b, err := r.Lookup(target.Kind)
	if err != nil {
		return nil, err
	}

	return b.Open(target.Path)
}

// Verify is a one-shot check of a single candidate against the file at path.
func (r *Registry) Verify(path, candidate string) (ok bool, err error) {
	target, err := container.NewTarget(path)
	if err != nil {
		return false, err
	}

	v, err := r.Open(target)
	if err != nil {
		return false, err
	}
	defer func() {
		if cerr := v.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing verifier: %w", cerr)
		}
	}()

	return v.Verify(candidate)
}

// Verify checks one candidate against path using the Default registry.
func Verify(path, candidate string) (bool, error) {
	return Default.Verify(path, candidate)
}

// acceptAll is the Verifier for containers that turned out not to be encrypted.
type acceptAll struct{}

func (acceptAll) Verify(string) (bool, error) { return true, nil }
func (acceptAll) Close() error                 { return nil }
