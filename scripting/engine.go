package scripting

import (
	"context"

	"github.com/wudi/packlist/record"
)

// Engine represents a scripting engine (e.g., JavaScript).
type Engine interface {
	// Set binds a global visible to later scripts.
	Set(name string, value interface{}) error
	// Execute runs a script and returns its exported completion value.
	Execute(ctx context.Context, script string) (interface{}, error)
}

// RecordFilter decides whether an extracted record is kept.
type RecordFilter interface {
	Keep(ctx context.Context, rec record.Record) (bool, error)
}
