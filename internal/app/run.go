package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/denoisegridgo/internal/artifact"
	"github.com/vk/denoisegridgo/internal/ctxlog"
	"github.com/vk/denoisegridgo/internal/derive"
	"github.com/vk/denoisegridgo/internal/executor"
	"github.com/vk/denoisegridgo/internal/volume"
)

// selectionPlan pairs a selection's canonical identity with its wired
// terminal artifacts.
type selectionPlan struct {
	canonical string
	outputs   []derive.RegressorOutput
}

// Run executes the main application logic: canonicalize every selection,
// build the shared derivation graph, execute it, and write the terminal
// artifacts. Artifacts of branches that failed are not written; their error
// is part of the returned execution error.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	builder := artifact.NewBuilder()
	pool := artifact.NewPool()

	base, err := a.loadResources(ctx, builder)
	if err != nil {
		return fmt.Errorf("failed to load base resources: %w", err)
	}
	if err := derive.SeedPool(pool, base); err != nil {
		return err
	}

	resolver := derive.NewResolver(pool, builder, a.registry)
	plans := make([]selectionPlan, 0, len(a.model.Selections))
	for _, sel := range a.model.Selections {
		canonical := sel.Canonical()
		a.logger.Info("Selection canonicalized.", "name", sel.Name, "identity", canonical)

		outputs, err := resolver.BuildSelection(ctx, sel, base)
		if err != nil {
			return fmt.Errorf("failed to build selection %q: %w", sel.Name, err)
		}
		plans = append(plans, selectionPlan{canonical: canonical, outputs: outputs})
	}
	a.logger.Debug("Derivation graph built.", "node_count", builder.Len(), "cached_masks", pool.Len())

	if err := builder.Graph().DetectCycles(); err != nil {
		return fmt.Errorf("failed to build derivation graph: %w", err)
	}

	if builder.Len() == 0 {
		a.logger.Warn("No nodes found in graph, execution not required.")
		return nil
	}

	a.logger.Info("Starting execution...")
	store := artifact.NewStore()
	exec := executor.New(builder, store)
	execErr := exec.Execute(ctx)
	a.logger.Info("Execution finished.")

	if err := a.writeOutputs(ctx, appConfig.OutputDir, plans, exec); err != nil {
		return err
	}
	if execErr != nil {
		return fmt.Errorf("execution failed: %w", execErr)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// writeOutputs persists every completed terminal artifact, named by the
// owning selection's canonical identity and the regressor type.
func (a *App) writeOutputs(ctx context.Context, outputDir string, plans []selectionPlan, exec *executor.Executor) error {
	logger := ctxlog.FromContext(ctx)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}

	for _, plan := range plans {
		for _, output := range plan.outputs {
			value, ok := exec.Output(output.Ref)
			if !ok {
				logger.Warn("Skipping output of unfinished branch.", "artifact", output.Ref.Key)
				continue
			}
			name := fmt.Sprintf("%s_%s.txt", artifact.Label(plan.canonical), output.Type)
			path := filepath.Join(outputDir, name)
			if err := writeArtifact(path, output, value); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			logger.Info("Wrote output.", "path", path)
		}
	}
	return nil
}

func writeArtifact(path string, output derive.RegressorOutput, value any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch output.Kind {
	case derive.OutputCensor:
		censor, ok := value.([]int)
		if !ok {
			return fmt.Errorf("artifact has type %T, expected a censor vector", value)
		}
		return volume.WriteCensorColumn(f, censor)
	case derive.OutputSeries:
		rows, ok := value.([][]float64)
		if !ok {
			return fmt.Errorf("artifact has type %T, expected a regressor matrix", value)
		}
		return volume.WriteMatrix(f, rows)
	}
	return fmt.Errorf("unknown output kind %d", output.Kind)
}
