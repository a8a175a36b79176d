package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dirql/internal/table"
)

// Node is one element of a tree rendering. Children keep the order they
// were appended in; a leaf may carry a value shown after its label.
type Node struct {
	Label    string
	Value    string
	Children []*Node
}

// indent is one tree level worth of leading whitespace.
const indent = "  "

// Tree renders a node hierarchy, each level indented one step deeper than
// its parent.
func Tree(root *Node) string {
	var b strings.Builder
	writeNode(&b, root, 0)
	return b.String()
}

func writeNode(b *strings.Builder, n *Node, depth int) {
	b.WriteString(strings.Repeat(indent, depth))
	b.WriteString(n.Label)
	if n.Value != "" {
		b.WriteString(": ")
		b.WriteString(n.Value)
	}
	b.WriteByte('\n')
	for _, child := range n.Children {
		writeNode(b, child, depth+1)
	}
}

// DirTree builds a tree of the directory at root: directories branch,
// files are leaves, siblings in alphabetical order.
func DirTree(root string) (*Node, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", root, err)
	}
	node := &Node{Label: filepath.Base(root)}
	if !info.IsDir() {
		return node, nil
	}
	if err := appendDirChildren(node, root); err != nil {
		return nil, err
	}
	return node, nil
}

func appendDirChildren(parent *Node, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		child := &Node{Label: entry.Name()}
		if entry.IsDir() {
			if err := appendDirChildren(child, filepath.Join(dir, entry.Name())); err != nil {
				return err
			}
		}
		parent.Children = append(parent.Children, child)
	}
	return nil
}

// TableTree builds a tree describing one table: the table is the root and
// its columns are children annotated with the inferred type, in schema
// order.
func TableTree(tbl *table.Table) *Node {
	root := &Node{Label: tbl.Name(), Value: tbl.SourcePath()}
	for _, col := range tbl.Columns() {
		root.Children = append(root.Children, &Node{Label: col.Name, Value: col.Type.String()})
	}
	return root
}

// resultTree builds a tree view of a query result: one child per row, one
// leaf per column value.
func resultTree(res *table.QueryResult) *Node {
	root := &Node{Label: "result", Value: fmt.Sprintf("%d rows", len(res.Rows))}
	for i, row := range res.Rows {
		rowNode := &Node{Label: fmt.Sprintf("row %d", i+1)}
		for j, name := range res.Columns {
			rowNode.Children = append(rowNode.Children, &Node{Label: name, Value: cellText(row, j)})
		}
		root.Children = append(root.Children, rowNode)
	}
	return root
}
