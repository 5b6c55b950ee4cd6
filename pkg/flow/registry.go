package flow

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNodeNotFound is returned when no node has the requested id
	ErrNodeNotFound = errors.New("node not found")

	// ErrDuplicateNode is returned when a seed contains the same id twice
	ErrDuplicateNode = errors.New("duplicate node id")

	// ErrInvalidNodeID is returned for ids that cannot travel on the wire.
	// Valid ids are 0 through math.MaxUint32.
	ErrInvalidNodeID = errors.New("invalid node id")
)

// ValidID reports whether id can be used for a node
func ValidID(id int) bool {
	return id >= 0 && uint64(id) <= math.MaxUint32
}

// Registry is the ordered set of nodes on a canvas
type Registry struct {
	nodes []*Node
	index map[int]*Node
}

// NewRegistry creates a registry holding the given seed
func NewRegistry(seed ...Node) (*Registry, error) {
	r := &Registry{}
	if err := r.Initialize(seed); err != nil {
		return nil, err
	}
	return r, nil
}

// DefaultSeed returns the single node a canvas starts with when nothing is
// configured
func DefaultSeed() []Node {
	return []Node{NewNode(0, DefaultLabel, 0, 0)}
}

// Initialize replaces the working set. Live positions are reset to the
// committed positions so no node starts mid-drag.
func (r *Registry) Initialize(seed []Node) error {
	nodes := make([]*Node, 0, len(seed))
	index := make(map[int]*Node, len(seed))

	for _, n := range seed {
		if !ValidID(n.ID) {
			return fmt.Errorf("initialize registry: %w: %d", ErrInvalidNodeID, n.ID)
		}
		if _, exists := index[n.ID]; exists {
			return fmt.Errorf("initialize registry: %w: %d", ErrDuplicateNode, n.ID)
		}
		node := n
		node.Live = node.Position
		nodes = append(nodes, &node)
		index[node.ID] = &node
	}

	r.nodes = nodes
	r.index = index
	return nil
}

// List returns the nodes in insertion order
func (r *Registry) List() []*Node {
	out := make([]*Node, len(r.nodes))
	copy(out, r.nodes)
	return out
}

// Len returns the number of nodes
func (r *Registry) Len() int {
	return len(r.nodes)
}

// Get looks up a node by id
func (r *Registry) Get(id int) (*Node, error) {
	n, ok := r.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	return n, nil
}

// MustGet looks up a node that is known to exist. A miss means the caller
// broke an invariant, so it panics.
func (r *Registry) MustGet(id int) *Node {
	n, err := r.Get(id)
	if err != nil {
		panic(fmt.Sprintf("flow: expected to find node: %v", err))
	}
	return n
}
