package testhelpers

import (
	"path/filepath"
	"sync"

	"github.com/unclesp1d3r/containercrack/lib/container"
	"github.com/unclesp1d3r/containercrack/lib/verifier"
)

// MemoryBackend is a verifier.Backend that never reads the file. Each file is
// treated as encrypted with the password stored under its base name; files
// with no entry accept no candidate.
type MemoryBackend struct {
	ContainerKind container.Kind
	Passwords     map[string]string
	OpenErrors    map[string]error
	Panics        map[string]bool

	mu     sync.Mutex
	opened int
}

// NewMemoryBackend returns a backend for kind with the given passwords by base name.
func NewMemoryBackend(kind container.Kind, passwords map[string]string) *MemoryBackend {
	if passwords == nil {
		passwords = map[string]string{}
	}

	return &MemoryBackend{ContainerKind: kind, Passwords: passwords}
}

// Kind returns the container kind served.
func (b *MemoryBackend) Kind() container.Kind { return b.ContainerKind }

// Name identifies the backend in listings.
func (b *MemoryBackend) Name() string { return "memory " + b.ContainerKind.String() }

// Open returns a verifier for path, or the error registered in OpenErrors.
func (b *MemoryBackend) Open(path string) (verifier.Verifier, error) {
	b.mu.Lock()
	b.opened++
	b.mu.Unlock()

	name := filepath.Base(path)
	if err := b.OpenErrors[name]; err != nil {
		return nil, err
	}

	password, ok := b.Passwords[name]

	return &memoryVerifier{password: password, locked: ok, panics: b.Panics[name]}, nil
}

// Opened returns how many times Open was called.
func (b *MemoryBackend) Opened() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.opened
}

type memoryVerifier struct {
	password string
	locked   bool
	panics   bool
}

func (v *memoryVerifier) Verify(candidate string) (bool, error) {
	if v.panics {
		panic("backend exploded")
	}

	return v.locked && candidate == v.password, nil
}

func (v *memoryVerifier) Close() error { return nil }

// NewMemoryRegistry returns a registry of memory backends for every container kind.
func NewMemoryRegistry(passwords map[string]string) (*verifier.Registry, map[container.Kind]*MemoryBackend) {
	backends := make(map[container.Kind]*MemoryBackend, len(container.Kinds))
	reg := verifier.NewRegistry()
	for _, k := range container.Kinds {
		b := NewMemoryBackend(k, passwords)
		backends[k] = b
		reg.Register(b)
	}

	return reg, backends
}
