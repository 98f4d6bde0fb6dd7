//go:build !nopdf

package verifier

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// pdfSecurity is the password-check material of a standard security handler.
type pdfSecurity struct {
	revision        int
	keyLen          int // bytes, revisions 2-4
	o               []byte
	u               []byte
	p               int32
	id0             []byte
	encryptMetadata bool
}

var (
	rePDFEncryptRef      = regexp.MustCompile(`/Encrypt\s+(\d+)\s+(\d+)\s+R`) //nolint:gochecknoglobals // Compiled pattern
	rePDFEncryptInline   = regexp.MustCompile(`/Encrypt\s*<<`)                //nolint:gochecknoglobals // Compiled pattern
	rePDFXRefStream      = regexp.MustCompile(`/Type\s*/XRef\b`)              //nolint:gochecknoglobals // Compiled pattern
	rePDFFilterStandard  = regexp.MustCompile(`/Filter\s*/Standard\b`)        //nolint:gochecknoglobals // Compiled pattern
	rePDFEncryptMetadata = regexp.MustCompile(`/EncryptMetadata\s+(true|false)\b`) //nolint:gochecknoglobals // Compiled pattern
)

var errPDFNotEncrypted = errors.New("pdf has no /Encrypt entry")

// parsePDFSecurity locates the encryption dictionary referenced by the most
// recent trailer (classic trailer or cross-reference stream) and extracts the
// values needed to check passwords. errPDFNotEncrypted is returned for plain files.
func parsePDFSecurity(data []byte) (*pdfSecurity, error) {
	trailer, err := findPDFTrailer(data)
	if err != nil {
		return nil, err
	}

	var encDict []byte
	switch {
	case rePDFEncryptRef.Match(trailer):
		m := rePDFEncryptRef.FindSubmatch(trailer)
		objNum, _ := strconv.Atoi(string(m[1]))
		gen, _ := strconv.Atoi(string(m[2]))
		encDict, err = findPDFObjectDict(data, objNum, gen)
		if err != nil {
			return nil, err
		}
	case rePDFEncryptInline.Match(trailer):
		loc := rePDFEncryptInline.FindIndex(trailer)
		encDict, _, err = parsePDFDictAt(trailer, loc[1]-2)
		if err != nil {
			return nil, fmt.Errorf("invalid inline /Encrypt dictionary: %w", err)
		}
	default:
		return nil, errPDFNotEncrypted
	}

	id0, err := pdfTrailerID(trailer)
	if err != nil {
		return nil, err
	}

	return parsePDFEncryptDict(encDict, id0)
}

// findPDFTrailer returns the last trailer dictionary of the file.
// Files with cross-reference streams carry the trailer keys in the stream dictionary.
func findPDFTrailer(data []byte) ([]byte, error) {
	var candidates [][]byte

	if idx := bytes.LastIndex(data, []byte("trailer")); idx >= 0 {
		if start := bytes.Index(data[idx:], []byte("<<")); start >= 0 {
			if dict, _, err := parsePDFDictAt(data, idx+start); err == nil {
				candidates = append(candidates, dict)
			}
		}
	}

	for _, loc := range rePDFXRefStream.FindAllIndex(data, -1) {
		start := bytes.LastIndex(data[:loc[0]], []byte("obj"))
		if start < 0 {
			continue
		}
		open := bytes.Index(data[start:], []byte("<<"))
		if open < 0 {
			continue
		}
		if dict, _, err := parsePDFDictAt(data, start+open); err == nil {
			candidates = append(candidates, dict)
		}
	}

	if len(candidates) == 0 {
		return nil, errors.New("pdf trailer not found")
	}

	for i := len(candidates) - 1; i >= 0; i-- {
		if bytes.Contains(candidates[i], []byte("/Encrypt")) {
			return candidates[i], nil
		}
	}

	return candidates[len(candidates)-1], nil
}

func pdfTrailerID(trailer []byte) ([]byte, error) {
	idx := bytes.Index(trailer, []byte("/ID"))
	if idx < 0 {
		return nil, errors.New("pdf trailer /ID is required for encrypted files")
	}
	rest := bytes.TrimLeft(trailer[idx+3:], " \t\r\n\f")
	if len(rest) == 0 || rest[0] != '[' {
		return nil, errors.New("pdf trailer /ID is not an array")
	}

	tok, _, err := readPDFString(rest[1:])
	if err != nil {
		return nil, fmt.Errorf("invalid pdf trailer /ID: %w", err)
	}

	return tok, nil
}

func parsePDFEncryptDict(dict []byte, id0 []byte) (*pdfSecurity, error) {
	top := pdfTopLevel(dict)

	if !rePDFFilterStandard.Match(top) {
		return nil, errors.New("unsupported pdf security handler (only /Standard)")
	}

	r, err := pdfIntValue(top, "R")
	if err != nil {
		return nil, err
	}
	if r < 2 || r > 6 {
		return nil, fmt.Errorf("unsupported pdf security revision R=%d", r)
	}

	sec := &pdfSecurity{revision: r, id0: id0, encryptMetadata: true}

	if p, err := pdfIntValue(top, "P"); err == nil {
		sec.p = int32(p) //nolint:gosec // /P is a signed 32-bit field
	} else if r <= 4 {
		return nil, err
	}

	if m := rePDFEncryptMetadata.FindSubmatch(top); len(m) == 2 {
		sec.encryptMetadata = string(m[1]) == "true"
	}

	if sec.o, err = pdfStringValue(top, "O"); err != nil {
		return nil, err
	}
	if sec.u, err = pdfStringValue(top, "U"); err != nil {
		return nil, err
	}

	if r >= 5 {
		if len(sec.o) < 48 || len(sec.u) < 48 {
			return nil, fmt.Errorf("pdf /O and /U must be 48 bytes for R=%d", r)
		}
		sec.o, sec.u = sec.o[:48], sec.u[:48]

		return sec, nil
	}

	if len(sec.o) < 32 || len(sec.u) < 32 {
		return nil, errors.New("pdf /O and /U must be 32 bytes")
	}
	sec.o, sec.u = sec.o[:32], sec.u[:32]

	sec.keyLen = 5
	if r >= 3 {
		bits, err := pdfIntValue(top, "Length")
		switch {
		case err == nil:
			sec.keyLen = bits / 8
		case r == 4:
			sec.keyLen = 16
		}
	}
	if sec.keyLen < 5 || sec.keyLen > 16 {
		return nil, fmt.Errorf("unsupported pdf key length: %d bytes", sec.keyLen)
	}

	return sec, nil
}

// findPDFObjectDict returns the dictionary of the last "num gen obj" in the file.
func findPDFObjectDict(data []byte, num, gen int) ([]byte, error) {
	re := regexp.MustCompile(fmt.Sprintf(`(?:^|[^0-9])%d\s+%d\s+obj\b`, num, gen))
	locs := re.FindAllIndex(data, -1)
	if len(locs) == 0 {
		return nil, fmt.Errorf("pdf object %d %d not found", num, gen)
	}

	end := locs[len(locs)-1][1]
	start := bytes.Index(data[end:], []byte("<<"))
	if start < 0 {
		return nil, fmt.Errorf("pdf object %d %d has no dictionary", num, gen)
	}

	dict, _, err := parsePDFDictAt(data, end+start)
	if err != nil {
		return nil, fmt.Errorf("invalid pdf object %d %d: %w", num, gen, err)
	}

	return dict, nil
}

// parsePDFDictAt returns the balanced dictionary starting at data[start].
// Strings are skipped so that "<<" or ">>" inside them do not unbalance the scan.
func parsePDFDictAt(data []byte, start int) ([]byte, int, error) {
	if start < 0 || start+1 >= len(data) || data[start] != '<' || data[start+1] != '<' {
		return nil, 0, errors.New("dictionary start not found")
	}

	depth := 0
	for i := start; i+1 < len(data); {
		switch {
		case data[i] == '<' && data[i+1] == '<':
			depth++
			i += 2
		case data[i] == '>' && data[i+1] == '>':
			depth--
			i += 2
			if depth == 0 {
				return data[start:i], i, nil
			}
		case data[i] == '(' || data[i] == '<':
			_, n, err := readPDFString(data[i:])
			if err != nil {
				return nil, 0, err
			}
			i += n
		default:
			i++
		}
	}

	return nil, 0, errors.New("unterminated dictionary")
}

// pdfTopLevel blanks out nested dictionaries so key lookups only see the outer level.
func pdfTopLevel(dict []byte) []byte {
	out := make([]byte, len(dict))
	copy(out, dict)

	blank := func(b []byte) {
		for i := range b {
			b[i] = ' '
		}
	}

	depth := 0
	for i := 0; i < len(out); {
		switch {
		case i+1 < len(out) && out[i] == '<' && out[i+1] == '<':
			depth++
			if depth > 1 {
				blank(out[i : i+2])
			}
			i += 2
		case i+1 < len(out) && out[i] == '>' && out[i+1] == '>':
			if depth > 1 {
				blank(out[i : i+2])
			}
			depth--
			i += 2
		case out[i] == '(' || out[i] == '<':
			_, n, err := readPDFString(out[i:])
			if err != nil {
				n = 1
			}
			if depth > 1 {
				blank(out[i : i+n])
			}
			i += n
		default:
			if depth > 1 {
				out[i] = ' '
			}
			i++
		}
	}

	return out
}

func pdfKeyValue(dict []byte, key string) ([]byte, bool) {
	re := regexp.MustCompile(`/` + regexp.QuoteMeta(key) + `[\s(<\[/]`)
	loc := re.FindIndex(dict)
	if loc == nil {
		return nil, false
	}

	return bytes.TrimLeft(dict[loc[1]-1:], " \t\r\n\f"), true
}

func pdfIntValue(dict []byte, key string) (int, error) {
	v, ok := pdfKeyValue(dict, key)
	if !ok {
		return 0, fmt.Errorf("pdf encryption key /%s missing", key)
	}

	end := 0
	for end < len(v) && (v[end] == '-' || v[end] == '+' || (v[end] >= '0' && v[end] <= '9')) {
		end++
	}

	n, err := strconv.Atoi(string(v[:end]))
	if err != nil {
		return 0, fmt.Errorf("pdf encryption key /%s invalid: %w", key, err)
	}

	return n, nil
}

func pdfStringValue(dict []byte, key string) ([]byte, error) {
	v, ok := pdfKeyValue(dict, key)
	if !ok {
		return nil, fmt.Errorf("pdf encryption key /%s missing", key)
	}

	s, _, err := readPDFString(v)
	if err != nil {
		return nil, fmt.Errorf("pdf encryption key /%s: %w", key, err)
	}

	return s, nil
}

// readPDFString decodes the hex or literal string at the start of src and
// returns the decoded bytes and the number of source bytes consumed.
func readPDFString(src []byte) ([]byte, int, error) {
	src2 := bytes.TrimLeft(src, " \t\r\n\f")
	skipped := len(src) - len(src2)
	if len(src2) == 0 {
		return nil, 0, errors.New("expected pdf string")
	}

	switch src2[0] {
	case '<':
		end := bytes.IndexByte(src2, '>')
		if end < 0 {
			return nil, 0, errors.New("unterminated hex string")
		}
		out, err := hex.DecodeString(compactPDFHex(string(src2[1:end])))
		if err != nil {
			return nil, 0, err
		}

		return out, skipped + end + 1, nil
	case '(':
		return readPDFLiteral(src2, skipped)
	default:
		return nil, 0, errors.New("expected pdf string")
	}
}

func readPDFLiteral(src []byte, skipped int) ([]byte, int, error) {
	out := make([]byte, 0, len(src))
	depth := 0

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch c {
		case '(':
			depth++
			if depth > 1 {
				out = append(out, c)
			}
			continue
		case ')':
			depth--
			if depth == 0 {
				return out, skipped + i + 1, nil
			}
			out = append(out, c)
			continue
		case '\\':
		default:
			out = append(out, c)
			continue
		}

		i++
		if i >= len(src) {
			break
		}
		switch src[i] {
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case '\\', '(', ')':
			out = append(out, src[i])
		case '\r':
			if i+1 < len(src) && src[i+1] == '\n' {
				i++
			}
		case '\n':
		default:
			if src[i] >= '0' && src[i] <= '7' {
				val := int(src[i] - '0')
				for j := 0; j < 2 && i+1 < len(src) && src[i+1] >= '0' && src[i+1] <= '7'; j++ {
					i++
					val = val<<3 + int(src[i]-'0')
				}
				out = append(out, byte(val)) //nolint:gosec // octal escapes are at most 0o777
			} else {
				out = append(out, src[i])
			}
		}
	}

	return nil, 0, errors.New("unterminated literal string")
}

func compactPDFHex(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t', '\f':
			return -1
		}
		return r
	}, s)
	if len(s)%2 == 1 {
		s += "0"
	}

	return s
}
