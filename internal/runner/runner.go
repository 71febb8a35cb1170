package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/metrasynth/gallery/internal/config"
	"github.com/metrasynth/gallery/internal/generator"
	"github.com/metrasynth/gallery/internal/patchstore"
	"github.com/metrasynth/gallery/pkg/patch"
)

// Outcome is one finished generation run.
type Outcome struct {
	Name     string
	Project  *patch.Project
	Result   *generator.Result
	Document *patch.Document
}

// Generate grows one patch from cfg. An exhausted run returns an error
// matching generator.ErrExhausted and no outcome.
func Generate(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Outcome, error) {
	if log == nil {
		log = zap.NewNop()
	}
	name := cfg.ProjectName()
	project := patch.NewProject(name, patch.DefaultCatalog())

	engine, err := generator.New(cfg.GeneratorOptions(), project,
		generator.WithLogger(log.With(zap.String("project", name))))
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}

	result, err := engine.Run(ctx)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Name:     name,
		Project:  project,
		Result:   result,
		Document: project.Document(),
	}, nil
}

// Record converts the outcome into a patch store record.
func (o *Outcome) Record() *patchstore.Record {
	return &patchstore.Record{
		Name:        o.Name,
		Seed:        o.Result.Seed,
		State:       o.Result.State.String(),
		Target:      o.Result.Target,
		ModuleCount: o.Result.ModuleCount,
		Iterations:  o.Result.Iterations,
		Document:    o.Document,
	}
}

// Write encodes the outcome's document to path. An empty path or "-" writes
// to w instead.
func (o *Outcome) Write(path string, format patch.Format, w io.Writer) error {
	if path == "" || path == "-" {
		return patch.Encode(w, o.Document, format)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := patch.Encode(f, o.Document, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// FileName returns "<name>.<format>".
func (o *Outcome) FileName(format patch.Format) string {
	return fmt.Sprintf("%s.%s", o.Name, format)
}
