package memory

import (
	"context"
	"fmt"

	"github.com/sawane/shiori/pkg/scenario"
)

// Loader implements ports.DocumentLoader for documents built in code.
// Useful for tests and embedded scenarios.
type Loader struct {
	Document *scenario.Document
}

// NewLoader creates a loader that returns the given document.
func NewLoader(doc *scenario.Document) *Loader {
	return &Loader{Document: doc}
}

// Load returns the wrapped document.
func (l *Loader) Load(ctx context.Context) (*scenario.Document, error) {
	if l.Document == nil {
		return nil, fmt.Errorf("no document configured")
	}
	return l.Document, nil
}
