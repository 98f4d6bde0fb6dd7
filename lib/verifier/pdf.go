//go:build !nopdf

package verifier

import (
	"errors"
	"os"

	"github.com/unclesp1d3r/containercrack/lib/container"
	"github.com/unclesp1d3r/containercrack/lib/crackerrors"
)

func init() {
	Default.Register(PDFBackend{})
}

// PDFBackend verifies user and owner passwords of the PDF standard security handler, revisions 2 to 6.
type PDFBackend struct{}

// Kind implements Backend.
func (PDFBackend) Kind() container.Kind { return container.KindPDF }

// Name implements Backend.
func (PDFBackend) Name() string { return "pdf (standard security handler R2-R6)" }

// Open parses the encryption dictionary. Unencrypted documents open every candidate.
func (PDFBackend) Open(path string) (Verifier, error) {
	if _, err := container.CheckSignature(path, container.KindPDF); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, crackerrors.FromFS("read", path, err)
	}

	sec, err := parsePDFSecurity(data)
	if errors.Is(err, errPDFNotEncrypted) {
		return acceptAll{}, nil
	}
	if err != nil {
		return nil, crackerrors.New(crackerrors.KindCorrupt, "open", path, err)
	}

	return &pdfVerifier{sec: sec}, nil
}

type pdfVerifier struct {
	sec *pdfSecurity
}

func (v *pdfVerifier) Verify(candidate string) (bool, error) {
	return v.sec.check(candidate), nil
}

func (v *pdfVerifier) Close() error { return nil }
