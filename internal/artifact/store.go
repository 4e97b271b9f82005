package artifact

import "sync"

// Status is the execution state of one artifact node.
type Status int

const (
	// StatusPending indicates the node has not been picked up yet.
	StatusPending Status = iota
	// StatusRunning indicates the node's builder is executing.
	StatusRunning
	// StatusDone indicates the node's artifact has been produced.
	StatusDone
	// StatusFailed indicates the node's builder returned an error.
	StatusFailed
	// StatusSkipped indicates an upstream node on the branch failed.
	StatusSkipped
)

// Store holds the mutable execution state of a run: per-node status, output
// artifact, and error. It uses sync.Map so an external executor may update
// independent nodes concurrently without global lock contention.
type Store struct {
	statuses sync.Map // Key: node key, Value: Status
	outputs  sync.Map // Key: node key, Value: any
	errors   sync.Map // Key: node key, Value: error
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// SetStatus updates the execution status of a node.
func (s *Store) SetStatus(key string, status Status) {
	s.statuses.Store(key, status)
}

// Status retrieves the execution status of a node. Nodes never touched
// report StatusPending.
func (s *Store) Status(key string) Status {
	status, ok := s.statuses.Load(key)
	if !ok {
		return StatusPending
	}
	return status.(Status)
}

// SetOutput records the artifact produced by a node.
func (s *Store) SetOutput(key string, output any) {
	s.outputs.Store(key, output)
}

// Output retrieves the artifact produced by a node, if any.
func (s *Store) Output(key string) (any, bool) {
	return s.outputs.Load(key)
}

// SetError records a node's failure.
func (s *Store) SetError(key string, err error) {
	s.errors.Store(key, err)
}

// Err retrieves a node's recorded failure, or nil.
func (s *Store) Err(key string) error {
	err, ok := s.errors.Load(key)
	if !ok {
		return nil
	}
	return err.(error)
}
