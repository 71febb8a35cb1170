package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/metrasynth/gallery/internal/config"
	"github.com/metrasynth/gallery/internal/generator"
	"github.com/metrasynth/gallery/pkg/patch"
)

// BatchOptions selects the seeds of a batch run and where results go.
type BatchOptions struct {
	From     int64
	Count    int
	Parallel int

	// OutputDir receives one document per converged seed; empty skips writing.
	OutputDir string
	Format    patch.Format

	// OnOutcome is called for every converged seed, serialized.
	OnOutcome func(context.Context, *Outcome) error
}

// SeedResult is the outcome of a single seed in a batch.
type SeedResult struct {
	Seed        int64
	Name        string
	State       generator.State
	Target      int
	ModuleCount int
	Iterations  int
	Path        string
}

// Batch generates Count consecutive seeds starting at From, running up to
// Parallel engines at once. Every engine owns its graph and streams, so
// results are identical to running the seeds one by one. Exhausted seeds are
// reported, not failed. Results are ordered by seed.
func Batch(ctx context.Context, base *config.Config, opts BatchOptions, log *zap.Logger) ([]SeedResult, error) {
	if opts.Count < 1 {
		return nil, fmt.Errorf("batch count must be at least 1, got %d", opts.Count)
	}
	if opts.From < 0 {
		return nil, fmt.Errorf("batch seed must be non-negative, got %d", opts.From)
	}
	if opts.Parallel < 1 {
		opts.Parallel = 1
	}
	if opts.Format == "" {
		opts.Format = patch.FormatJSON
	}
	if log == nil {
		log = zap.NewNop()
	}

	results := make([]SeedResult, opts.Count)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallel)

	for i := 0; i < opts.Count; i++ {
		seed := opts.From + int64(i)
		cfg := *base
		cfg.RandomSeed = seed
		if base.Name != "" {
			cfg.Name = fmt.Sprintf("%s-%d", base.Name, seed)
		}

		g.Go(func() error {
			outcome, err := Generate(gctx, &cfg, log.With(zap.Int64("seed", seed)))
			if err != nil {
				var exhausted *generator.ExhaustedError
				if errors.As(err, &exhausted) {
					results[i] = SeedResult{
						Seed:        seed,
						Name:        cfg.ProjectName(),
						State:       generator.Exhausted,
						Target:      exhausted.Target,
						ModuleCount: exhausted.ModuleCount,
						Iterations:  exhausted.Iterations,
					}
					return nil
				}
				return fmt.Errorf("seed %d: %w", seed, err)
			}

			res := SeedResult{
				Seed:        seed,
				Name:        outcome.Name,
				State:       outcome.Result.State,
				Target:      outcome.Result.Target,
				ModuleCount: outcome.Result.ModuleCount,
				Iterations:  outcome.Result.Iterations,
			}
			if opts.OutputDir != "" {
				res.Path = filepath.Join(opts.OutputDir, outcome.FileName(opts.Format))
				if err := outcome.Write(res.Path, opts.Format, nil); err != nil {
					return fmt.Errorf("seed %d: %w", seed, err)
				}
			}
			results[i] = res

			if opts.OnOutcome != nil {
				mu.Lock()
				defer mu.Unlock()
				if err := opts.OnOutcome(gctx, outcome); err != nil {
					return fmt.Errorf("seed %d: %w", seed, err)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Summary counts converged and exhausted seeds.
func Summary(results []SeedResult) (converged, exhausted int) {
	for _, r := range results {
		switch r.State {
		case generator.Converged:
			converged++
		case generator.Exhausted:
			exhausted++
		}
	}
	return converged, exhausted
}
