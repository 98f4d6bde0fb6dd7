package verifier

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unclesp1d3r/containercrack/lib/container"
	"github.com/unclesp1d3r/containercrack/lib/crackerrors"
)

type stubVerifier struct {
	password string
	closed   bool
}

func (s *stubVerifier) Verify(candidate string) (bool, error) { return candidate == s.password, nil }
func (s *stubVerifier) Close() error                          { s.closed = true; return nil }

type stubBackend struct {
	kind     container.Kind
	password string
	openErr  error
	last     *stubVerifier
}

func (b *stubBackend) Kind() container.Kind { return b.kind }
func (b *stubBackend) Name() string         { return "stub " + b.kind.String() }
func (b *stubBackend) Open(string) (Verifier, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	b.last = &stubVerifier{password: b.password}
	return b.last, nil
}

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry(&stubBackend{kind: container.KindZip})

	b, err := r.Lookup(container.KindZip)
	require.NoError(t, err)
	assert.Equal(t, container.KindZip, b.Kind())

	_, err = r.Lookup(container.KindPDF)
	require.ErrorIs(t, err, crackerrors.ErrBackendUnavailable)
	assert.Contains(t, err.Error(), "pdf")
}

func TestRegistry_Available(t *testing.T) {
	r := NewRegistry(
		&stubBackend{kind: container.KindZip},
		&stubBackend{kind: container.KindPDF},
	)

	available := r.Available()
	require.Len(t, available, 2)
	assert.Equal(t, container.KindPDF, available[0].Kind())
	assert.Equal(t, container.KindZip, available[1].Kind())
}

func TestRegistry_CheckAvailable(t *testing.T) {
	r := NewRegistry(&stubBackend{kind: container.KindZip})

	require.NoError(t, r.CheckAvailable([]container.Kind{container.KindZip, container.KindZip}))
	require.NoError(t, r.CheckAvailable(nil))

	err := r.CheckAvailable([]container.Kind{container.KindZip, container.KindPDF, container.KindOffice})
	require.ErrorIs(t, err, crackerrors.ErrBackendUnavailable)
	assert.Contains(t, err.Error(), "pdf, office")
}

func TestRegistry_Verify(t *testing.T) {
	backend := &stubBackend{kind: container.KindZip, password: "hunter2"}
	r := NewRegistry(backend)

	ok, err := r.Verify("/tmp/a.zip", "hunter2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, backend.last.closed)

	ok, err = r.Verify("/tmp/a.zip", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = r.Verify("/tmp/a.txt", "x")
	require.ErrorIs(t, err, crackerrors.ErrUnsupportedFormat)

	_, err = r.Verify("/tmp/a.pdf", "x")
	require.ErrorIs(t, err, crackerrors.ErrBackendUnavailable)
}

func TestRegistry_OpenError(t *testing.T) {
	openErr := crackerrors.New(crackerrors.KindCorrupt, "open", "a.zip", errors.New("bad"))
	r := NewRegistry(&stubBackend{kind: container.KindZip, openErr: openErr})

	_, err := r.Open(container.Target{Path: "a.zip", Kind: container.KindZip})
	assert.ErrorIs(t, err, crackerrors.ErrCorrupt)
}

func TestRegistry_OpenUnknownKind(t *testing.T) {
	r := NewRegistry()

	for _, path := range []string{"notes.txt", "a.zip"} {
		v, err := r.Open(container.Target{Path: path})
		require.ErrorIs(t, err, crackerrors.ErrUnsupportedFormat, path)
		assert.Nil(t, v)
	}
}
