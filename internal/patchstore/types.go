package patchstore

import (
	"errors"

	"github.com/metrasynth/gallery/pkg/patch"
)

// Record is one generated patch together with the outcome of the run that
// produced it.
type Record struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Seed        int64           `json:"seed"`
	State       string          `json:"state"`
	Target      int             `json:"target"`
	ModuleCount int             `json:"module_count"`
	Iterations  int             `json:"iterations"`
	CreatedAtMs int64           `json:"created_at_ms"`
	Document    *patch.Document `json:"document"`
}

// Validate checks that the record can be stored.
func (r *Record) Validate() error {
	if r.ID == "" {
		return errors.New("record id is required")
	}
	if r.Name == "" {
		return errors.New("record name is required")
	}
	if r.Document == nil {
		return errors.New("record document is required")
	}
	if r.ModuleCount < 0 || r.Target < 0 || r.Iterations < 0 {
		return errors.New("record counts must be non-negative")
	}
	return nil
}
