package format

import "errors"

var (
	// ErrUnknownFormat indicates no handler is registered under the name.
	ErrUnknownFormat = errors.New("format: unknown format")

	// ErrParse indicates the text could not be parsed as the handler's
	// syntax.
	ErrParse = errors.New("format: parse failed")

	// ErrSerialize indicates the node tree could not be rendered in the
	// handler's syntax.
	ErrSerialize = errors.New("format: serialize failed")

	// ErrNilRoot indicates Serialize was given no tree.
	ErrNilRoot = errors.New("format: nil root node")
)
