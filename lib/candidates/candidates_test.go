package candidates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unclesp1d3r/containercrack/lib/crackerrors"
)

func writeWordlist(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "plain", raw: "hunter2\n", expected: "hunter2"},
		{name: "crlf", raw: "hunter2\r\n", expected: "hunter2"},
		{name: "trailing spaces and tabs", raw: "pass word \t\n", expected: "pass word"},
		{name: "leading space kept", raw: "  secret\n", expected: "  secret"},
		{name: "invalid utf8 dropped", raw: "pa\xffss\n", expected: "pass"},
		{name: "unicode kept", raw: "pässwörd€\n", expected: "pässwörd€"},
		{name: "blank", raw: " \t\r\n", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clean(tt.raw))
		})
	}
}

func TestFile_LineNumbers(t *testing.T) {
	path := writeWordlist(t, "alpha\n\n  \nbravo\r\ncharlie")

	got, err := Collect(File{Path: path})
	require.NoError(t, err)

	assert.Equal(t, []Candidate{
		{Value: "alpha", Line: 1},
		{Value: "bravo", Line: 4},
		{Value: "charlie", Line: 5},
	}, got)
}

func TestFile_Reopen(t *testing.T) {
	src := File{Path: writeWordlist(t, "one\ntwo\n")}

	first, err := Collect(src)
	require.NoError(t, err)
	second, err := Collect(src)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
	assert.Equal(t, src.Path, src.Name())
}

func TestFile_Empty(t *testing.T) {
	got, err := Collect(File{Path: writeWordlist(t, "")})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFile_LongLine(t *testing.T) {
	long := make([]byte, 3*readBufferSize)
	for i := range long {
		long[i] = 'a'
	}
	got, err := Collect(File{Path: writeWordlist(t, string(long)+"\nb\n")})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Len(t, got[0].Value, len(long))
	assert.Equal(t, 2, got[1].Line)
}

func TestFile_Missing(t *testing.T) {
	_, err := File{Path: filepath.Join(t.TempDir(), "nope.txt")}.Open()
	require.Error(t, err)
	assert.Equal(t, crackerrors.KindNotFound, crackerrors.KindOf(err))
}

func TestFile_CloseTwice(t *testing.T) {
	it, err := File{Path: writeWordlist(t, "x\n")}.Open()
	require.NoError(t, err)
	require.NoError(t, it.Close())
	assert.NoError(t, it.Close())
}

func TestList(t *testing.T) {
	src := List{Values: []string{"wrong1", "", "hunter2\r", "wrong2"}}

	got, err := Collect(src)
	require.NoError(t, err)

	assert.Equal(t, []Candidate{
		{Value: "wrong1", Line: 1},
		{Value: "hunter2", Line: 3},
		{Value: "wrong2", Line: 4},
	}, got)
	assert.Equal(t, "memory", src.Name())
	assert.Equal(t, "custom", List{Label: "custom"}.Name())
}
