// Package container identifies encrypted container files and the format family they belong to.
package container

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/unclesp1d3r/containercrack/lib/crackerrors"
)

// Kind is the closed set of container families a backend can verify.
type Kind int

const (
	// KindUnknown is the zero value; no backend handles it.
	KindUnknown Kind = iota
	// KindPDF is a PDF document protected by the standard security handler.
	KindPDF
	// KindOffice is an OOXML document (docx, xlsx, pptx).
	KindOffice
	// KindZip is a ZIP archive with encrypted entries.
	KindZip
)

// Kinds lists every supported Kind in a stable order.
var Kinds = []Kind{KindPDF, KindOffice, KindZip} //nolint:gochecknoglobals // Fixed set

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindOffice:
		return "office"
	case KindZip:
		return "zip"
	default:
		return "unknown"
	}
}

var extensionKinds = map[string]Kind{ //nolint:gochecknoglobals // Lookup table
	".pdf":  KindPDF,
	".docx": KindOffice,
	".xlsx": KindOffice,
	".pptx": KindOffice,
	".zip":  KindZip,
}

// SupportedExtensions returns the recognised file extensions, lower case and sorted.
func SupportedExtensions() []string {
	return []string{".docx", ".pdf", ".pptx", ".xlsx", ".zip"}
}

// KindFromExtension maps a path to its Kind by extension, case-insensitively.
func KindFromExtension(path string) Kind {
	return extensionKinds[strings.ToLower(filepath.Ext(path))]
}

// IsSupported reports whether the path has a supported extension.
func IsSupported(path string) bool {
	return KindFromExtension(path) != KindUnknown
}

// Target is a container file scheduled for an attack.
type Target struct {
	Path string
	Kind Kind
}

// Name returns the base name of the target file.
func (t Target) Name() string {
	return filepath.Base(t.Path)
}

// NewTarget builds a Target, rejecting unsupported extensions.
func NewTarget(path string) (Target, error) {
	kind := KindFromExtension(path)
	if kind == KindUnknown {
		return Target{Path: path}, crackerrors.Errorf(crackerrors.KindUnsupportedFormat, "detect", path,
			"extension %q is not one of %s", filepath.Ext(path), strings.Join(SupportedExtensions(), ", "))
	}

	return Target{Path: path, Kind: kind}, nil
}

// Signature is the on-disk layout detected from a file header.
type Signature int

const (
	// SignatureUnknown means none of the known magic numbers matched.
	SignatureUnknown Signature = iota
	// SignaturePDF is a file starting with "%PDF-" (within the first KiB).
	SignaturePDF
	// SignatureZip is a ZIP local file header or an empty archive's end record.
	SignatureZip
	// SignatureCFB is an OLE compound file, used by encrypted OOXML documents.
	SignatureCFB
)

const sniffLen = 1024

var (
	magicPDF      = []byte("%PDF-")                                          //nolint:gochecknoglobals // Magic number
	magicZip      = []byte("PK\x03\x04")                                     //nolint:gochecknoglobals // Magic number
	magicZipEmpty = []byte("PK\x05\x06")                                     //nolint:gochecknoglobals // Magic number
	magicCFB      = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1} //nolint:gochecknoglobals // Magic number
)

// SniffBytes detects the signature of a file header.
func SniffBytes(head []byte) Signature {
	switch {
	case bytes.HasPrefix(head, magicZip), bytes.HasPrefix(head, magicZipEmpty):
		return SignatureZip
	case bytes.HasPrefix(head, magicCFB):
		return SignatureCFB
	case bytes.Contains(head[:min(len(head), sniffLen)], magicPDF):
		return SignaturePDF
	default:
		return SignatureUnknown
	}
}

// Sniff reads the header of the file at path and detects its signature.
func Sniff(path string) (Signature, error) {
	f, err := os.Open(path)
	if err != nil {
		return SignatureUnknown, crackerrors.FromFS("open", path, err)
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return SignatureUnknown, crackerrors.FromFS("read", path, err)
	}

	return SniffBytes(head[:n]), nil
}

// Accepts reports whether a signature is a valid on-disk layout for the kind.
// OOXML documents are ZIP packages when unencrypted and compound files when encrypted.
func (k Kind) Accepts(sig Signature) bool {
	switch k {
	case KindPDF:
		return sig == SignaturePDF
	case KindOffice:
		return sig == SignatureCFB || sig == SignatureZip
	case KindZip:
		return sig == SignatureZip
	default:
		return false
	}
}

// CheckSignature verifies that the file at path really is a container of the given kind.
func CheckSignature(path string, kind Kind) (Signature, error) {
	sig, err := Sniff(path)
	if err != nil {
		return sig, err
	}

	if !kind.Accepts(sig) {
		return sig, crackerrors.Errorf(crackerrors.KindUnsupportedFormat, "open", path,
			"file content is not a %s container", kind)
	}

	return sig, nil
}
