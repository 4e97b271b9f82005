package artifact

import (
	"fmt"

	"github.com/vk/denoisegridgo/internal/dag"
)

// Node is the payload of one graph vertex: either a source carrying an
// externally supplied value, or a builder with its input wiring.
type Node struct {
	Key      string
	IsSource bool
	Value    any
	Fn       BuilderFn
	Inputs   map[string]Ref // input slot name -> producing ref
}

// Builder accumulates the derivation graph for one run. It implements
// GraphBuilder over a dag.Graph, holding node payloads alongside the
// topology. Keys double as node IDs, so every artifact key is unique per run.
type Builder struct {
	graph *dag.Graph
	nodes map[string]*Node
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		graph: dag.New(),
		nodes: make(map[string]*Node),
	}
}

// Source registers an externally supplied value under a key and returns a
// ref to it. Registering the same key twice is an error.
func (b *Builder) Source(key string, value any) (Ref, error) {
	if _, ok := b.nodes[key]; ok {
		return Ref{}, fmt.Errorf("artifact %q already registered", key)
	}
	b.graph.AddNode(key)
	b.nodes[key] = &Node{Key: key, IsSource: true, Value: value}
	return Ref{Key: key}, nil
}

// Register adds a builder node, wires edges from every input ref, and
// returns a ref to the node's output. All input refs must already exist.
func (b *Builder) Register(key string, fn BuilderFn, inputs map[string]Ref) (Ref, error) {
	if _, ok := b.nodes[key]; ok {
		return Ref{}, fmt.Errorf("artifact %q already registered", key)
	}
	if fn == nil {
		return Ref{}, fmt.Errorf("artifact %q registered without a builder", key)
	}
	for slot, ref := range inputs {
		if _, ok := b.nodes[ref.Key]; !ok {
			return Ref{}, fmt.Errorf("artifact %q input %q refers to unknown artifact %q", key, slot, ref.Key)
		}
	}

	b.graph.AddNode(key)
	wired := make(map[string]Ref, len(inputs))
	for slot, ref := range inputs {
		if err := b.graph.AddEdge(ref.Key, key); err != nil {
			return Ref{}, err
		}
		wired[slot] = ref
	}
	b.nodes[key] = &Node{Key: key, Fn: fn, Inputs: wired}
	return Ref{Key: key}, nil
}

// Connect wires an additional input slot of an already registered builder
// node. Sources accept no inputs, and a slot cannot be wired twice.
func (b *Builder) Connect(from Ref, to Ref, slot string) error {
	target, ok := b.nodes[to.Key]
	if !ok {
		return fmt.Errorf("cannot connect to unknown artifact %q", to.Key)
	}
	if target.IsSource {
		return fmt.Errorf("cannot connect input %q to source artifact %q", slot, to.Key)
	}
	if _, ok := b.nodes[from.Key]; !ok {
		return fmt.Errorf("cannot connect from unknown artifact %q", from.Key)
	}
	if _, ok := target.Inputs[slot]; ok {
		return fmt.Errorf("input %q of artifact %q is already wired", slot, to.Key)
	}
	if err := b.graph.AddEdge(from.Key, to.Key); err != nil {
		return err
	}
	target.Inputs[slot] = from
	return nil
}

// Node returns the payload registered under key.
func (b *Builder) Node(key string) (*Node, bool) {
	n, ok := b.nodes[key]
	return n, ok
}

// Graph exposes the underlying topology for ordering and cycle checks.
func (b *Builder) Graph() *dag.Graph {
	return b.graph
}

// Len returns the number of registered nodes.
func (b *Builder) Len() int {
	return len(b.nodes)
}
