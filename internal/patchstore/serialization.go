package patchstore

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/metrasynth/gallery/pkg/patch"
)

// RecordToHash converts a Record to a Redis hash. The patch document is
// JSON-encoded into a single field.
func RecordToHash(r *Record) (map[string]interface{}, error) {
	documentJSON, err := json.Marshal(r.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	hash := map[string]interface{}{
		"id":            r.ID,
		"name":          r.Name,
		"seed":          r.Seed,
		"state":         r.State,
		"target":        r.Target,
		"module_count":  r.ModuleCount,
		"iterations":    r.Iterations,
		"created_at_ms": r.CreatedAtMs,
		"document":      string(documentJSON),
	}

	return hash, nil
}

// HashToRecord converts a Redis hash back to a Record.
func HashToRecord(hash map[string]string) (*Record, error) {
	seed, err := strconv.ParseInt(hash["seed"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid seed field: %w", err)
	}

	ints := map[string]int{"target": 0, "module_count": 0, "iterations": 0}
	for field := range ints {
		v, err := strconv.Atoi(hash[field])
		if err != nil {
			return nil, fmt.Errorf("invalid %s field: %w", field, err)
		}
		ints[field] = v
	}

	var doc *patch.Document
	if documentJSON := hash["document"]; documentJSON != "" {
		doc, err = patch.DecodeJSON([]byte(documentJSON))
		if err != nil {
			return nil, err
		}
	}

	createdAtMs, err := strconv.ParseInt(hash["created_at_ms"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at_ms field: %w", err)
	}

	return &Record{
		ID:          hash["id"],
		Name:        hash["name"],
		Seed:        seed,
		State:       hash["state"],
		Target:      ints["target"],
		ModuleCount: ints["module_count"],
		Iterations:  ints["iterations"],
		CreatedAtMs: createdAtMs,
		Document:    doc,
	}, nil
}
