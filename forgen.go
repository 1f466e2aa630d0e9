package forgen

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderUnavailable reports that the project could not be loaded
	// into a semantic model. Nothing is written.
	ErrProviderUnavailable = errors.New("semantic model unavailable")

	// ErrSerialization reports that the document could not be encoded or
	// written.
	ErrSerialization = errors.New("document serialization failed")
)

// Diagnostic is a non-fatal problem with one file. The file is left out of
// the document, or loaded incompletely, and the run continues.
type Diagnostic struct {
	Path string
	Err  error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %v", d.Path, d.Err)
}
