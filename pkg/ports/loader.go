package ports

import (
	"context"

	"github.com/sawane/shiori/pkg/scenario"
)

// DocumentLoader defines how the engine retrieves a scenario document.
// This allows the storage layer (YAML files, embedded assets, Memory) to
// be decoupled from the runtime.
type DocumentLoader interface {
	// Load parses and returns the document. Implementations should
	// return documents that pass scenario.Validate without errors.
	Load(ctx context.Context) (*scenario.Document, error)
}
