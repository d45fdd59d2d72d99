// Package docstore persists whole JSON documents by name.
//
// A document is read in full and written in full. Backends do not merge,
// version or lock; callers that need load-modify-save serialisation hold
// their own lock around the sequence.
package docstore

import (
	"context"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// ErrNotFound is returned by Read when no document with the name exists.
var ErrNotFound = errors.New("docstore: document not found")

// Backend reads and writes raw document bytes.
type Backend interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
}

// codec keeps non-ASCII text and HTML characters unescaped so the files
// stay readable when edited by hand.
var codec = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// Load decodes the named document into v. ErrNotFound is returned unwrapped
// so callers can fall back to defaults.
func Load(ctx context.Context, b Backend, name string, v any) error {
	data, err := b.Read(ctx, name)
	if err != nil {
		return err
	}
	if err := codec.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "decode %s", name)
	}
	return nil
}

// Save encodes v with two-space indentation and writes it as the named document.
func Save(ctx context.Context, b Backend, name string, v any) error {
	data, err := codec.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode %s", name)
	}
	if err := b.Write(ctx, name, data); err != nil {
		return errors.Wrapf(err, "write %s", name)
	}
	return nil
}
