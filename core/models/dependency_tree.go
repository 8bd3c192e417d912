package models

import (
	"fmt"
	"io"
	"strings"
)

// DependencyNode is one module in the tree. Children keep insertion order.
type DependencyNode struct {
	Name     ModuleName
	Children []*DependencyNode
	Depth    int
}

func NewDependencyNode(name ModuleName) *DependencyNode {
	return &DependencyNode{
		Name:     name,
		Children: []*DependencyNode{},
	}
}

// AddChild attaches a fresh node for name. When name is already a child its
// subtree is discarded and the node keeps its original position.
func (n *DependencyNode) AddChild(name ModuleName) *DependencyNode {
	if existing := n.Child(name); existing != nil {
		existing.Children = []*DependencyNode{}
		return existing
	}

	child := NewDependencyNode(name)
	child.Depth = n.Depth + 1
	n.Children = append(n.Children, child)
	return child
}

func (n *DependencyNode) Child(name ModuleName) *DependencyNode {
	for _, child := range n.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

func (n *DependencyNode) IsLeaf() bool {
	return len(n.Children) == 0
}

type DependencyTree struct {
	Root      *DependencyNode
	Extension string
}

func NewDependencyTree(entry ModuleName, ext string) *DependencyTree {
	return &DependencyTree{
		Root:      NewDependencyNode(entry),
		Extension: ext,
	}
}

// Modules returns every module name in pre-order, root first.
func (dt *DependencyTree) Modules() []ModuleName {
	var names []ModuleName
	var visit func(node *DependencyNode)
	visit = func(node *DependencyNode) {
		names = append(names, node.Name)
		for _, child := range node.Children {
			visit(child)
		}
	}
	visit(dt.Root)
	return names
}

// Print renders the tree. The root is printed unindented, deeper levels
// get connector glyphs and indentation guides.
//
//	main.py
//	├── utils.py
//	│   └── helpers.py
//	└── models.py
func (dt *DependencyTree) Print(w io.Writer) error {
	if _, err := fmt.Fprintln(w, dt.Root.Name.FileName(dt.Extension)); err != nil {
		return err
	}
	return dt.printChildren(w, dt.Root, "")
}

func (dt *DependencyTree) String() string {
	var sb strings.Builder
	_ = dt.Print(&sb)
	return sb.String()
}

func (dt *DependencyTree) printChildren(w io.Writer, node *DependencyNode, indent string) error {
	for i, child := range node.Children {
		isLast := i == len(node.Children)-1

		branch := "├── "
		guide := "│   "
		if isLast {
			branch = "└── "
			guide = "    "
		}

		if _, err := fmt.Fprintf(w, "%s%s%s\n", indent, branch, child.Name.FileName(dt.Extension)); err != nil {
			return err
		}
		if err := dt.printChildren(w, child, indent+guide); err != nil {
			return err
		}
	}
	return nil
}
