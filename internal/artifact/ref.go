// Package artifact provides the building blocks of the derivation graph: a
// Ref addressing one produced artifact, the per-run Pool that memoizes
// derived masks by prefix key, the GraphBuilder capability the derivation
// cache registers builders through, and the Store execution results land in.
package artifact

import (
	"context"
	"regexp"
)

// Ref is a handle to one artifact: the node that produces it and its single
// output. A Ref is valid only within the run whose builder issued it.
type Ref struct {
	Key string
}

// IsZero reports whether the ref does not address anything.
func (r Ref) IsZero() bool {
	return r.Key == ""
}

// BuilderFn computes one artifact from its resolved inputs, keyed by input
// slot name. Implementations must be pure: same inputs, same artifact.
type BuilderFn func(ctx context.Context, inputs map[string]any) (any, error)

// GraphBuilder is the capability the derivation cache drives: it decides
// which keys and builders to request, while scheduling and execution stay
// with the executor.
type GraphBuilder interface {
	// Source registers an externally supplied base resource under a key.
	Source(key string, value any) (Ref, error)
	// Register adds a builder node wired to its inputs and returns a ref to
	// its output.
	Register(key string, fn BuilderFn, inputs map[string]Ref) (Ref, error)
	// Connect wires an additional input slot of an already registered node.
	Connect(from Ref, to Ref, slot string) error
}

var nonWord = regexp.MustCompile(`[^\w]`)

// Label renders a key as a log- and filename-safe identifier.
func Label(key string) string {
	return nonWord.ReplaceAllString(key, "_")
}
