package container

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unclesp1d3r/containercrack/lib/crackerrors"
)

func TestKindFromExtension(t *testing.T) {
	tests := []struct {
		path     string
		expected Kind
	}{
		{path: "a.pdf", expected: KindPDF},
		{path: "A.PDF", expected: KindPDF},
		{path: "/x/report.docx", expected: KindOffice},
		{path: "sheet.XLSX", expected: KindOffice},
		{path: "deck.pptx", expected: KindOffice},
		{path: "archive.Zip", expected: KindZip},
		{path: "legacy.doc", expected: KindUnknown},
		{path: "noext", expected: KindUnknown},
		{path: "archive.zip.txt", expected: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindFromExtension(tt.path))
			assert.Equal(t, tt.expected != KindUnknown, IsSupported(tt.path))
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "pdf", KindPDF.String())
	assert.Equal(t, "office", KindOffice.String())
	assert.Equal(t, "zip", KindZip.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}

func TestNewTarget(t *testing.T) {
	target, err := NewTarget("/data/a.zip")
	require.NoError(t, err)
	assert.Equal(t, KindZip, target.Kind)
	assert.Equal(t, "a.zip", target.Name())

	target, err = NewTarget("/data/notes.txt")
	require.ErrorIs(t, err, crackerrors.ErrUnsupportedFormat)
	assert.Equal(t, KindUnknown, target.Kind)
	assert.Equal(t, "/data/notes.txt", target.Path)
}

func TestSniffBytes(t *testing.T) {
	tests := []struct {
		name     string
		head     []byte
		expected Signature
	}{
		{name: "pdf", head: []byte("%PDF-1.7\n%\xe2\xe3"), expected: SignaturePDF},
		{name: "pdf after junk", head: append([]byte("\x00\x00junk"), []byte("%PDF-1.4")...), expected: SignaturePDF},
		{name: "zip", head: []byte("PK\x03\x04\x14\x00"), expected: SignatureZip},
		{name: "empty zip", head: []byte("PK\x05\x06\x00\x00"), expected: SignatureZip},
		{name: "cfb", head: []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0x00}, expected: SignatureCFB},
		{name: "text", head: []byte("hello world"), expected: SignatureUnknown},
		{name: "empty", head: nil, expected: SignatureUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SniffBytes(tt.head))
		})
	}
}

func TestCheckSignature(t *testing.T) {
	dir := t.TempDir()
	fake := filepath.Join(dir, "fake.pdf")
	require.NoError(t, os.WriteFile(fake, []byte("PK\x03\x04 not a pdf"), 0o600))

	_, err := CheckSignature(fake, KindPDF)
	require.ErrorIs(t, err, crackerrors.ErrUnsupportedFormat)

	sig, err := CheckSignature(fake, KindOffice)
	require.NoError(t, err)
	assert.Equal(t, SignatureZip, sig)

	_, err = CheckSignature(filepath.Join(dir, "missing.zip"), KindZip)
	assert.ErrorIs(t, err, crackerrors.ErrNotFound)
}
