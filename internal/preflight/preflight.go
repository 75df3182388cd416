package preflight

import (
	"context"
	"errors"
	"fmt"

	"zeusmaker/internal/config"
	"zeusmaker/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every readiness check for a batch writing into outputDir.
// An empty outputDir falls back to the configured one.
func RunAll(ctx context.Context, cfg *config.Config, outputDir string) []Result {
	if cfg == nil {
		return nil
	}
	if outputDir == "" {
		outputDir = cfg.Paths.OutputDir
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Output directory", outputDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	results = append(results, CheckTranscoder(ctx, cfg))
	return results
}

// Err folds failed results into one validation error, or nil when all passed.
func Err(results []Result) error {
	var errs []error
	for _, r := range results {
		if !r.Passed {
			errs = append(errs, fmt.Errorf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return services.Wrap(services.ErrValidation, "preflight", "run checks", "", errors.Join(errs...))
}
