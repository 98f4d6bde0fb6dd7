package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unclesp1d3r/containercrack/lib/crackerrors"
	"github.com/unclesp1d3r/containercrack/lib/session"
)

// AssertErrorKind verifies that err is classified as kind.
func AssertErrorKind(t *testing.T, kind crackerrors.Kind, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind.String(), crackerrors.KindOf(err).String(), "error kind mismatch: %v", err)
}

// AssertCracked verifies that o found password after the given number of attempts.
func AssertCracked(t *testing.T, o session.Outcome, password string, attempts uint64) {
	t.Helper()
	require.True(t, o.Success, "target %s was not cracked (err=%v)", o.Target.Path, o.Err)
	require.NotNil(t, o.Password)
	assert.Equal(t, password, *o.Password, "password mismatch")
	assert.Equal(t, attempts, o.Attempts, "attempts mismatch")
	assert.NoError(t, o.Err)
}

// AssertNotFound verifies that o ran to the end without finding a password.
func AssertNotFound(t *testing.T, o session.Outcome, attempts uint64) {
	t.Helper()
	assert.False(t, o.Success, "target %s should not be cracked", o.Target.Path)
	assert.Nil(t, o.Password)
	assert.False(t, o.Interrupted)
	assert.NoError(t, o.Err)
	assert.Equal(t, attempts, o.Attempts, "attempts mismatch")
}
