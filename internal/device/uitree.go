package device

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Bounds is a screen rectangle in pixels.
type Bounds struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Center returns the rectangle midpoint.
func (b Bounds) Center() (int, int) {
	return (b.Left + b.Right) / 2, (b.Top + b.Bottom) / 2
}

// UINode is one element of the accessibility hierarchy as reported to the model.
type UINode struct {
	Class              string    `json:"class,omitempty"`
	Package            string    `json:"package,omitempty"`
	Text               string    `json:"text,omitempty"`
	ContentDescription string    `json:"contentDescription,omitempty"`
	ViewID             string    `json:"viewId,omitempty"`
	Bounds             Bounds    `json:"bounds"`
	Clickable          bool      `json:"clickable,omitempty"`
	Scrollable         bool      `json:"scrollable,omitempty"`
	Editable           bool      `json:"editable,omitempty"`
	Focused            bool      `json:"focused,omitempty"`
	Children           []*UINode `json:"children,omitempty"`

	parent *UINode
}

type xmlNode struct {
	Class       string    `xml:"class,attr"`
	Package     string    `xml:"package,attr"`
	Text        string    `xml:"text,attr"`
	ContentDesc string    `xml:"content-desc,attr"`
	ResourceID  string    `xml:"resource-id,attr"`
	Bounds      string    `xml:"bounds,attr"`
	Clickable   string    `xml:"clickable,attr"`
	Scrollable  string    `xml:"scrollable,attr"`
	Focused     string    `xml:"focused,attr"`
	Children    []xmlNode `xml:"node"`
}

type xmlHierarchy struct {
	Nodes []xmlNode `xml:"node"`
}

// ParseHierarchy decodes a uiautomator XML dump. Surrounding non-XML output
// is ignored.
func ParseHierarchy(dump string) (*UINode, error) {
	start := strings.Index(dump, "<hierarchy")
	end := strings.LastIndex(dump, "</hierarchy>")
	if start < 0 || end < start {
		return nil, fmt.Errorf("ui dump: hierarchy element not found")
	}
	var doc xmlHierarchy
	if err := xml.Unmarshal([]byte(dump[start:end+len("</hierarchy>")]), &doc); err != nil {
		return nil, fmt.Errorf("ui dump: %w", err)
	}
	root := &UINode{Class: "hierarchy"}
	for _, child := range doc.Nodes {
		root.Children = append(root.Children, convertNode(child, root))
	}
	if len(root.Children) == 1 {
		only := root.Children[0]
		only.parent = nil
		return only, nil
	}
	return root, nil
}

func convertNode(in xmlNode, parent *UINode) *UINode {
	node := &UINode{
		Class:              in.Class,
		Package:            in.Package,
		Text:               in.Text,
		ContentDescription: in.ContentDesc,
		ViewID:             in.ResourceID,
		Bounds:             parseBounds(in.Bounds),
		Clickable:          in.Clickable == "true",
		Scrollable:         in.Scrollable == "true",
		Focused:            in.Focused == "true",
		Editable:           strings.HasSuffix(in.Class, "EditText"),
		parent:             parent,
	}
	for _, child := range in.Children {
		node.Children = append(node.Children, convertNode(child, node))
	}
	return node
}

// parseBounds reads the "[l,t][r,b]" form used by uiautomator.
func parseBounds(raw string) Bounds {
	raw = strings.TrimSpace(raw)
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '[' || r == ']' || r == ','
	})
	if len(parts) != 4 {
		return Bounds{}
	}
	values := make([]int, 4)
	for i, part := range parts {
		value, err := strconv.Atoi(part)
		if err != nil {
			return Bounds{}
		}
		values[i] = value
	}
	return Bounds{Left: values[0], Top: values[1], Right: values[2], Bottom: values[3]}
}

// JSON renders the subtree for the model.
func (n *UINode) JSON() (string, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Walk visits nodes depth first, stopping when fn returns false.
func (n *UINode) Walk(fn func(*UINode) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, child := range n.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// VisibleText joins every non-empty text and content description in
// document order, one per line.
func (n *UINode) VisibleText() string {
	var lines []string
	n.Walk(func(node *UINode) bool {
		if text := strings.TrimSpace(node.Text); text != "" {
			lines = append(lines, text)
		} else if desc := strings.TrimSpace(node.ContentDescription); desc != "" {
			lines = append(lines, desc)
		}
		return true
	})
	return strings.Join(lines, "\n")
}

// FindByText returns the first node whose text or content description
// contains needle, case-insensitively.
func (n *UINode) FindByText(needle string) *UINode {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return nil
	}
	var found *UINode
	n.Walk(func(node *UINode) bool {
		if strings.Contains(strings.ToLower(node.Text), needle) ||
			strings.Contains(strings.ToLower(node.ContentDescription), needle) {
			found = node
			return false
		}
		return true
	})
	return found
}

// FindByViewID returns the first node with the given resource id. A bare id
// also matches a fully qualified "pkg:id/name".
func (n *UINode) FindByViewID(viewID string) *UINode {
	viewID = strings.TrimSpace(viewID)
	if viewID == "" {
		return nil
	}
	var found *UINode
	n.Walk(func(node *UINode) bool {
		if node.ViewID == viewID || strings.HasSuffix(node.ViewID, ":id/"+viewID) {
			found = node
			return false
		}
		return true
	})
	return found
}

// FocusedInput returns the first focused editable node.
func (n *UINode) FocusedInput() *UINode {
	var found *UINode
	n.Walk(func(node *UINode) bool {
		if node.Focused && node.Editable {
			found = node
			return false
		}
		return true
	})
	return found
}

// ClickTarget returns the nearest clickable ancestor-or-self, or the node itself.
func (n *UINode) ClickTarget() *UINode {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.Clickable {
			return cur
		}
	}
	return n
}
