// Package executor runs a built derivation graph. Execution is sequential in
// deterministic topological order; a failed node marks its dependents skipped
// without touching sibling branches.
package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/denoisegridgo/internal/artifact"
	"github.com/vk/denoisegridgo/internal/ctxlog"
)

// Executor walks one run's graph and records results in the store.
type Executor struct {
	builder *artifact.Builder
	store   *artifact.Store
}

// New creates an executor over a fully constructed graph.
func New(builder *artifact.Builder, store *artifact.Store) *Executor {
	return &Executor{builder: builder, store: store}
}

// Execute runs every node once. It returns an error naming all failed nodes,
// wrapping the first root-cause failure; skipped nodes are symptoms and are
// not reported as causes.
func (e *Executor) Execute(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	order, err := e.builder.Graph().TopologicalOrder()
	if err != nil {
		return err
	}
	logger.Debug("Executing derivation graph.", "nodes", len(order))

	for _, key := range order {
		if e.store.Status(key) == artifact.StatusSkipped {
			continue
		}
		if err := ctx.Err(); err != nil {
			e.store.SetStatus(key, artifact.StatusFailed)
			e.store.SetError(key, err)
			continue
		}

		node, ok := e.builder.Node(key)
		if !ok {
			return fmt.Errorf("graph names unknown artifact %q", key)
		}
		if node.IsSource {
			e.store.SetOutput(key, node.Value)
			e.store.SetStatus(key, artifact.StatusDone)
			continue
		}

		e.store.SetStatus(key, artifact.StatusRunning)
		output, err := e.runNode(ctx, node)
		if err != nil {
			logger.Error("Node execution failed.", "key", key, "error", err)
			e.store.SetStatus(key, artifact.StatusFailed)
			e.store.SetError(key, err)
			e.skipDependents(ctx, key)
			continue
		}

		logger.Debug("Node execution succeeded.", "key", key)
		e.store.SetOutput(key, output)
		e.store.SetStatus(key, artifact.StatusDone)
	}

	return e.collectFailures(order)
}

func (e *Executor) runNode(ctx context.Context, node *artifact.Node) (any, error) {
	inputs := make(map[string]any, len(node.Inputs))
	for slot, ref := range node.Inputs {
		value, ok := e.store.Output(ref.Key)
		if !ok {
			return nil, fmt.Errorf("input '%s' of '%s' has no output from '%s'", slot, node.Key, ref.Key)
		}
		inputs[slot] = value
	}
	return node.Fn(ctx, inputs)
}

// skipDependents recursively marks all downstream nodes skipped so their
// builders never run.
func (e *Executor) skipDependents(ctx context.Context, key string) {
	logger := ctxlog.FromContext(ctx)
	dependents, err := e.builder.Graph().Dependents(key)
	if err != nil {
		return
	}
	for _, dependent := range dependents {
		if e.store.Status(dependent) == artifact.StatusSkipped {
			continue
		}
		logger.Warn("Skipping dependent node due to upstream failure.", "key", dependent, "dependency", key)
		e.store.SetStatus(dependent, artifact.StatusSkipped)
		e.store.SetError(dependent, fmt.Errorf("skipped due to upstream failure of '%s'", key))
		e.skipDependents(ctx, dependent)
	}
}

func (e *Executor) collectFailures(order []string) error {
	var failed []string
	var rootCause error
	for _, key := range order {
		if e.store.Status(key) != artifact.StatusFailed {
			continue
		}
		failed = append(failed, key)
		if rootCause == nil {
			rootCause = e.store.Err(key)
		}
	}
	if rootCause == nil {
		return nil
	}
	return fmt.Errorf("execution failed for %s: %w", strings.Join(failed, ", "), rootCause)
}

// Output returns the artifact a ref resolved to, if its node completed.
func (e *Executor) Output(ref artifact.Ref) (any, bool) {
	if e.store.Status(ref.Key) != artifact.StatusDone {
		return nil, false
	}
	return e.store.Output(ref.Key)
}
