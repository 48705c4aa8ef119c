package devtree

// Node is one node of a hardware description tree. Implementations are
// read-only snapshots; Children returns nodes in document order, which is
// significant to consumers.
type Node interface {
	// Name returns the node name ("/" for a tree root).
	Name() string

	// Child returns the first direct child with the given name.
	Child(name string) (Node, bool)

	// Children returns all direct children in document order.
	Children() []Node

	// Property returns the string property with the given name.
	Property(name string) (string, bool)
}

// MapNode is an in-memory Node for programmatic construction.
type MapNode struct {
	name     string
	props    map[string]string
	children []*MapNode
}

// NewNode creates a node with the given name.
func NewNode(name string) *MapNode {
	return &MapNode{
		name:  name,
		props: make(map[string]string),
	}
}

// SetProperty sets a string property and returns the node for chaining.
func (n *MapNode) SetProperty(name, value string) *MapNode {
	n.props[name] = value
	return n
}

// AddChild appends a child node, preserving insertion order, and returns
// the child.
func (n *MapNode) AddChild(child *MapNode) *MapNode {
	n.children = append(n.children, child)
	return child
}

// Name returns the node name.
func (n *MapNode) Name() string {
	return n.name
}

// Child returns the first direct child with the given name.
func (n *MapNode) Child(name string) (Node, bool) {
	for _, c := range n.children {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// Children returns all direct children in insertion order.
func (n *MapNode) Children() []Node {
	out := make([]Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

// Property returns the string property with the given name.
func (n *MapNode) Property(name string) (string, bool) {
	v, ok := n.props[name]
	return v, ok
}

// Compile-time interface satisfaction check.
var _ Node = (*MapNode)(nil)
