// Package formats detects which supported asset format a buffer holds and
// decodes it.
package formats

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/samcharles93/assetfmt/pkg/cursor"
	"github.com/samcharles93/assetfmt/pkg/formats/fxgraph"
	"github.com/samcharles93/assetfmt/pkg/formats/msb"
)

// ErrUnknownFormat is returned when no registered format claims the data.
var ErrUnknownFormat = errors.New("formats: unrecognised file signature")

// Document is a decoded file of any supported format.
type Document interface {
	Format() string
	Encode() ([]byte, error)
	Summary() string
}

// Format describes one supported file format.
type Format struct {
	Name   string
	Magic  string
	Decode func(data []byte) (Document, error)
}

// Signature reports whether data starts with the format's magic.
func (f Format) Signature(data []byte) bool {
	return bytes.HasPrefix(data, []byte(f.Magic))
}

var registered = []Format{
	{Name: "msb", Magic: msb.Magic, Decode: adapt(msb.Read)},
	{Name: "fxgraph", Magic: fxgraph.Magic, Decode: adapt(fxgraph.Read)},
}

func adapt[D Document](read func([]byte) (D, error)) func([]byte) (Document, error) {
	return func(b []byte) (Document, error) {
		d, err := read(b)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}

// All returns the registered formats in detection order.
func All() []Format {
	out := make([]Format, len(registered))
	copy(out, registered)
	return out
}

// Lookup finds a format by name.
func Lookup(name string) (Format, bool) {
	for _, f := range registered {
		if f.Name == name {
			return f, true
		}
	}
	return Format{}, false
}

// Detect returns the first format whose signature matches data.
func Detect(data []byte) (Format, error) {
	for _, f := range registered {
		if f.Signature(data) {
			return f, nil
		}
	}
	return Format{}, ErrUnknownFormat
}

// Decode detects the format of data and decodes it. A decoder that rejects
// the signature itself passes the data on to the next candidate, so two
// formats may share a prefix.
func Decode(data []byte) (Document, error) {
	var firstErr error
	for _, f := range registered {
		if !f.Signature(data) {
			continue
		}
		doc, err := f.Decode(data)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, cursor.ErrSignature) {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownFormat, firstErr)
	}
	return nil, ErrUnknownFormat
}
