package domain

import (
	"encoding/json"
	"fmt"
)

// Record is an entity held in a collection.
type Record interface {
	RecordID() ID
	// SearchFields returns the text the search box matches against.
	SearchFields() []string
	// CategoryLabel returns the category used by the category filter, if any.
	CategoryLabel() string
	OwnerRef() Owner
}

// Patch is a partial update, sent as the PATCH body.
type Patch map[string]any

// ApplyPatch overlays patch on rec using the record's JSON field names.
func ApplyPatch[T any](rec T, patch Patch) (T, error) {
	var zero T

	raw, err := json.Marshal(rec)
	if err != nil {
		return zero, fmt.Errorf("encode record: %w", err)
	}

	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return zero, fmt.Errorf("decode record: %w", err)
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		fields[k] = v
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return zero, fmt.Errorf("encode patch: %w", err)
	}

	var out T
	if err := json.Unmarshal(merged, &out); err != nil {
		return zero, fmt.Errorf("apply patch: %w", err)
	}
	return out, nil
}
