/*
Copyright (C) 2024  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package cse

import "strings"

// Node is the raw/standardized AST node shape of spec.md §3: a labeled
// tree whose leaves are tagged tokens and whose internal labels name
// syntactic constructs. The same type serves both the raw tree the parser
// produces and the standardized tree the Standardizer produces.
type Node struct {
	Label    string
	Children []*Node
}

// Leaf constructs a childless node, e.g. an operator atom like "+" or "->"
// used 0-ary inside a standardized tree, or a bare keyword leaf.
func Leaf(label string) *Node {
	return &Node{Label: label}
}

// NewNode constructs an internal node with the given children in order.
func NewNode(label string, children ...*Node) *Node {
	return &Node{Label: label, Children: children}
}

// IdentLeaf builds an <ID:name> terminal.
func IdentLeaf(name string) *Node {
	return Leaf("<ID:" + name + ">")
}

// IntLeaf builds an <INT:digits> terminal.
func IntLeaf(digits string) *Node {
	return Leaf("<INT:" + digits + ">")
}

// StringLeaf builds an <STR:'...'> terminal; content must not include the
// surrounding quotes (they are added here).
func StringLeaf(content string) *Node {
	return Leaf("<STR:'" + content + "'>")
}

// IsTerminal reports whether n has no children.
func (n *Node) IsTerminal() bool {
	return len(n.Children) == 0
}

// SplitToken splits a terminal's label of the form "<KIND:value>" into its
// parts. For bare leaves (true, false, dummy, <nil>,
// identifiers-that-aren't-tagged) value is the whole label and ok is
// false.
func SplitToken(label string) (kind, value string, ok bool) {
	if !strings.HasPrefix(label, "<") || !strings.HasSuffix(label, ">") {
		return "", label, false
	}
	inner := label[1 : len(label)-1]
	idx := strings.IndexByte(inner, ':')
	if idx < 0 {
		return "", label, false
	}
	return inner[:idx], inner[idx+1:], true
}

// Copy returns a deep copy of the tree rooted at n (mirrors
// original_source/utils/node.py's deep_copy_ast). Standardize builds new
// nodes and does not modify its argument, so the raw AST stays intact
// alongside the standardized tree without a Copy.
func (n *Node) Copy() *Node {
	if n == nil {
		return nil
	}
	cp := &Node{Label: n.Label}
	if len(n.Children) > 0 {
		cp.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = c.Copy()
		}
	}
	return cp
}

// Print renders the AST in the §6 dotted-indentation format: one node per
// line, indentation by dots (one per depth level), children in order.
func (n *Node) Print(w *strings.Builder) {
	n.print(w, 0)
}

func (n *Node) print(w *strings.Builder, depth int) {
	w.WriteString(strings.Repeat(".", depth))
	w.WriteString(n.Label)
	w.WriteString("\n")
	for _, c := range n.Children {
		c.print(w, depth+1)
	}
}

// String renders n with Print into a standalone string, depth 0.
func (n *Node) String() string {
	var b strings.Builder
	n.Print(&b)
	return strings.TrimRight(b.String(), "\n")
}
