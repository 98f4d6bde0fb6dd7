//go:build !nooffice

package verifier

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/richardlehane/mscfb"
	"github.com/unclesp1d3r/containercrack/lib/container"
	"github.com/unclesp1d3r/containercrack/lib/crackerrors"
)

func init() {
	Default.Register(OfficeBackend{})
}

const encryptionInfoStream = "EncryptionInfo"

// OfficeBackend verifies passwords of encrypted OOXML documents (agile and standard encryption).
type OfficeBackend struct{}

// Kind implements Backend.
func (OfficeBackend) Kind() container.Kind { return container.KindOffice }

// Name implements Backend.
func (OfficeBackend) Name() string { return "office (OOXML agile and standard encryption)" }

// Open reads the EncryptionInfo stream from the compound file wrapper.
// A plain OOXML package (a ZIP file) is not encrypted and opens every candidate.
func (OfficeBackend) Open(path string) (Verifier, error) {
	sig, err := container.CheckSignature(path, container.KindOffice)
	if err != nil {
		return nil, err
	}
	if sig == container.SignatureZip {
		return acceptAll{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, crackerrors.FromFS("read", path, err)
	}

	info, err := readEncryptionInfo(data)
	if err != nil {
		return nil, crackerrors.New(crackerrors.KindCorrupt, "open", path, err)
	}

	check, err := parseEncryptionInfo(info)
	if err != nil {
		return nil, crackerrors.New(crackerrors.KindCorrupt, "open", path, err)
	}

	return &officeVerifier{check: check}, nil
}

func readEncryptionInfo(data []byte) ([]byte, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if entry.Name != encryptionInfoStream {
			continue
		}

		buf := make([]byte, entry.Size)
		if _, err := io.ReadFull(entry, buf); err != nil {
			return nil, err
		}

		return buf, nil
	}

	return nil, errors.New("compound file has no EncryptionInfo stream")
}

type officeVerifier struct {
	check officeKeyCheck
}

func (v *officeVerifier) Verify(candidate string) (bool, error) {
	return v.check.verify(candidate), nil
}

func (v *officeVerifier) Close() error { return nil }
