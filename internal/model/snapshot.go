package model

// CacheNode is a parent-free copy of a Node suitable for gob encoding.
// Meta is dropped since its dynamic type is unknown to the decoder.
type CacheNode struct {
	ID        string
	Text      string
	Subtext   string
	Size      int64
	SizeSelf  int64
	Primary   string
	Secondary string
	Children  []CacheNode
}

// ToCacheNode converts the subtree rooted at n
func (n *Node) ToCacheNode() CacheNode {
	cn := CacheNode{
		ID:        n.ID,
		Text:      n.Text,
		Subtext:   n.Subtext,
		Size:      n.Size,
		SizeSelf:  n.SizeSelf,
		Primary:   n.Color.Primary,
		Secondary: n.Color.Secondary,
	}
	if len(n.Children) > 0 {
		cn.Children = make([]CacheNode, len(n.Children))
		for i, child := range n.Children {
			cn.Children[i] = child.ToCacheNode()
		}
	}
	return cn
}

// ToNode rebuilds a Node tree, linking parents. The result still needs
// Normalize before charting.
func (cn *CacheNode) ToNode(parent *Node) *Node {
	n := &Node{
		ID:       cn.ID,
		Text:     cn.Text,
		Subtext:  cn.Subtext,
		Size:     cn.Size,
		SizeSelf: cn.SizeSelf,
		Color:    Color{Primary: cn.Primary, Secondary: cn.Secondary},
		Parent:   parent,
	}
	if len(cn.Children) > 0 {
		n.Children = make([]*Node, len(cn.Children))
		for i := range cn.Children {
			n.Children[i] = cn.Children[i].ToNode(n)
		}
	}
	return n
}
