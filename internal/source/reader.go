package source

// reader.go cleans up text tables exported on other machines before parsing:
//
//   - a UTF-8 byte-order mark at the start of the stream is dropped
//   - invalid UTF-8 bytes become '?'
//   - bytes read are counted so oversized files can be refused
//
// NewTextReader applies all three in order.

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// MaxTableBytes bounds how much of a table file is read.
const MaxTableBytes = 8 << 20

// ErrTableTooLarge is returned when a table exceeds MaxTableBytes.
var ErrTableTooLarge = errors.New("table file too large")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// UTF8Sanitizer replaces invalid UTF-8 bytes with '?'.
// Replacement keeps the output no longer than the input.
type UTF8Sanitizer struct {
	br      *bufio.Reader
	pending []byte
	err     error
}

// NewUTF8Sanitizer wraps r.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &UTF8Sanitizer{br: br}
}

// Read implements io.Reader.
func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	n := 0
	var buf [utf8.UTFMax]byte

	for n < len(p) {
		if len(s.pending) > 0 {
			c := copy(p[n:], s.pending)
			s.pending = s.pending[c:]
			n += c
			continue
		}
		if s.err != nil {
			break
		}

		r, size, err := s.br.ReadRune()
		if err != nil {
			s.err = err
			break
		}
		if r == utf8.RuneError && size == 1 {
			s.pending = append(s.pending[:0], '?')
		} else {
			k := utf8.EncodeRune(buf[:], r)
			s.pending = append(s.pending[:0], buf[:k]...)
		}
	}

	if n > 0 {
		return n, nil
	}
	return 0, s.err
}

// skipBOM drops a leading byte-order mark from br.
func skipBOM(br *bufio.Reader) error {
	head, err := br.Peek(len(utf8BOM))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return err
	}
	if bytes.Equal(head, utf8BOM) {
		_, err = br.Discard(len(utf8BOM))
		return err
	}
	return nil
}

// CountingReader tracks bytes read through it.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader wraps r.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// NewTextReader strips the BOM, sanitises UTF-8 and counts bytes, in that order.
func NewTextReader(r io.Reader) (*CountingReader, error) {
	br := bufio.NewReader(r)
	if err := skipBOM(br); err != nil {
		return nil, err
	}
	return NewCountingReader(NewUTF8Sanitizer(br)), nil
}

// ReadText reads a whole text table through NewTextReader, refusing
// anything larger than MaxTableBytes.
func ReadText(r io.Reader) (string, error) {
	cr, err := NewTextReader(io.LimitReader(r, MaxTableBytes+1))
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(cr)
	if err != nil {
		return "", err
	}
	if cr.BytesRead > MaxTableBytes {
		return "", fmt.Errorf("%w: over %d bytes", ErrTableTooLarge, MaxTableBytes)
	}
	return string(data), nil
}
