package syntax

// Position locates a node in its source file. Lines and columns are
// 1-based; offsets are byte offsets into the file content.
type Position struct {
	StartLine   uint32
	StartCol    uint32
	StartOffset uint32
	EndLine     uint32
	EndCol      uint32
	EndOffset   uint32
}

// Node is one node of a normalized syntax tree.
//
// Nodes are built by a frontend, wired into a Tree once, and treated as
// immutable afterwards. The scoring passes never create or destroy nodes;
// they only read them and track visit state externally, keyed by Index.
type Node struct {
	// Kind is the node's category.
	Kind Kind
	// Token is the node's leading token text: the identifier text for
	// KindIdentifier nodes, the leading keyword for statements.
	Token string
	// Pos is the node's source location.
	Pos Position
	// Parent is the enclosing node, nil for the root. Set by NewTree.
	Parent *Node
	// Children are the node's children in document order.
	Children []*Node
	// Index is the node's pre-order position within its tree. It is the
	// node's stable identity; visited bookkeeping keys on it. Set by
	// NewTree.
	Index int
}

// AddChild appends a child and sets its parent pointer.
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// PrevSibling returns the sibling immediately before n under its parent,
// or nil when n is the first child or the root.
func (n *Node) PrevSibling() *Node {
	if n.Parent == nil {
		return nil
	}

	var prev *Node

	for _, c := range n.Parent.Children {
		if c == n {
			return prev
		}

		prev = c
	}

	return nil
}

// DescendantsInSet returns every descendant of n (excluding n itself) whose
// kind is in the set, in document order. The scan crosses all interior
// nodes, including nested matches.
func (n *Node) DescendantsInSet(set KindSet) []*Node {
	var out []*Node

	var walk func(*Node)

	walk = func(cur *Node) {
		for _, c := range cur.Children {
			if set.Contains(c.Kind) {
				out = append(out, c)
			}

			walk(c)
		}
	}

	walk(n)

	return out
}

// HasAncestorInSet reports whether any ancestor of n, walking up to but not
// including stop, has a kind in the set. A nil stop walks to the root.
func (n *Node) HasAncestorInSet(stop *Node, set KindSet) bool {
	for cur := n.Parent; cur != nil && cur != stop; cur = cur.Parent {
		if set.Contains(cur.Kind) {
			return true
		}
	}

	return false
}

// Tree is a fully built syntax tree for one translation unit.
type Tree struct {
	// Root is the file node.
	Root *Node
	// NodeCount is the number of nodes in the tree. Pre-order indexes are
	// dense in [0, NodeCount).
	NodeCount int
}

// NewTree finalizes a tree built by a frontend: it wires parent pointers,
// assigns each node its pre-order index and counts nodes. The node graph
// must be acyclic and must not be modified after this call.
func NewTree(root *Node) *Tree {
	index := 0

	var walk func(n, parent *Node)

	walk = func(n, parent *Node) {
		n.Parent = parent
		n.Index = index
		index++

		for _, c := range n.Children {
			walk(c, n)
		}
	}

	walk(root, nil)

	return &Tree{Root: root, NodeCount: index}
}
