// Package candidates streams candidate passwords from wordlists and in-memory lists.
//
// Lines are decoded as UTF-8 with invalid bytes dropped and trailing whitespace
// (including a CR from CRLF files) removed. Blank lines are skipped but still
// counted, so Candidate.Line always matches the line number in the source.
package candidates

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/duke-git/lancet/v2/strutil"
	"github.com/unclesp1d3r/containercrack/lib/crackerrors"
)

const readBufferSize = 64 * 1024

// Candidate is one password to try and the 1-based line it was read from.
// Generated candidates carry Line 0.
type Candidate struct {
	Value string
	Line  int
}

// Source is a finite, ordered sequence of candidates that can be opened
// any number of times. Every Open starts from the beginning.
type Source interface {
	Name() string
	Open() (Iterator, error)
}

// Iterator walks a Source in the style of bufio.Scanner.
type Iterator interface {
	Next() bool
	Candidate() Candidate
	Err() error
	Close() error
}

// Clean normalises one raw line into a candidate value.
func Clean(raw string) string {
	return strings.TrimRightFunc(strings.ToValidUTF8(raw, ""), unicode.IsSpace)
}

// File reads candidates from a wordlist on disk.
type File struct {
	Path string
}

// Name returns the wordlist path.
func (f File) Name() string { return f.Path }

// Open opens the wordlist for reading.
func (f File) Open() (Iterator, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, crackerrors.FromFS("open wordlist", f.Path, err)
	}

	return &lineIterator{
		path:   f.Path,
		reader: bufio.NewReaderSize(fh, readBufferSize),
		closer: fh,
	}, nil
}

type lineIterator struct {
	path   string
	reader *bufio.Reader
	closer io.Closer
	line   int
	cur    Candidate
	err    error
	done   bool
}

func (it *lineIterator) Next() bool {
	for !it.done {
		raw, err := it.reader.ReadString('\n')
		if err != nil {
			it.done = true
			if !errors.Is(err, io.EOF) {
				it.err = crackerrors.New(crackerrors.KindIOError, "read wordlist", it.path, err)
				return false
			}
			if raw == "" {
				return false
			}
		}

		it.line++
		value := Clean(raw)
		if strutil.IsBlank(value) {
			continue
		}

		it.cur = Candidate{Value: value, Line: it.line}

		return true
	}

	return false
}

func (it *lineIterator) Candidate() Candidate { return it.cur }
func (it *lineIterator) Err() error           { return it.err }

func (it *lineIterator) Close() error {
	if it.closer == nil {
		return nil
	}
	err := it.closer.Close()
	it.closer = nil

	return err
}

// List serves candidates from memory, one entry per line.
type List struct {
	Label  string
	Values []string
}

// Name returns the label of the list, or "memory".
func (l List) Name() string {
	if l.Label == "" {
		return "memory"
	}

	return l.Label
}

// Open never fails.
func (l List) Open() (Iterator, error) {
	return &listIterator{values: l.Values}, nil
}

type listIterator struct {
	values []string
	pos    int
	cur    Candidate
}

func (it *listIterator) Next() bool {
	for it.pos < len(it.values) {
		it.pos++
		value := Clean(it.values[it.pos-1])
		if strutil.IsBlank(value) {
			continue
		}
		it.cur = Candidate{Value: value, Line: it.pos}

		return true
	}

	return false
}

func (it *listIterator) Candidate() Candidate { return it.cur }
func (it *listIterator) Err() error           { return nil }
func (it *listIterator) Close() error         { return nil }

// Collect drains src into a slice.
func Collect(src Source) (out []Candidate, err error) {
	it, err := src.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := it.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for it.Next() {
		out = append(out, it.Candidate())
	}

	return out, it.Err()
}
