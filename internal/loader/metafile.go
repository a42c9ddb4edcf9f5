package loader

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lumipallolabs/nanovis/internal/color"
	"github.com/lumipallolabs/nanovis/internal/model"
)

// Metafile is the subset of an esbuild metafile the charts read
type Metafile struct {
	Inputs  map[string]MetafileInput  `yaml:"inputs"`
	Outputs map[string]MetafileOutput `yaml:"outputs"`
}

// MetafileInput is one source file
type MetafileInput struct {
	Bytes  int64  `yaml:"bytes"`
	Format string `yaml:"format,omitempty"`
}

// MetafileOutput is one generated file and the inputs bundled into it
type MetafileOutput struct {
	Bytes  int64                    `yaml:"bytes"`
	Inputs map[string]OutputContent `yaml:"inputs"`
}

// OutputContent is how much of an input ended up in an output
type OutputContent struct {
	BytesInOutput int64 `yaml:"bytesInOutput"`
}

var (
	sourceMapPath      = regexp.MustCompile(`\.\w+\.map$`)
	disabledPathPrefix = regexp.MustCompile(`^\(disabled\):`)
)

// unassignedText labels the part of an output no input accounts for
const unassignedText = "(unassigned)"

// DecodeMetafile decodes an esbuild metafile
func DecodeMetafile(data []byte) (*Metafile, error) {
	var m Metafile
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode metafile: %w", err)
	}
	return &m, nil
}

// IsSourceMapPath reports whether path names a source map
func IsSourceMapPath(path string) bool {
	return sourceMapPath.MatchString(path)
}

// StripDisabledPrefix removes the "(disabled):" marker esbuild puts on
// inputs that were replaced with empty modules.
func StripDisabledPrefix(path string) string {
	return disabledPathPrefix.ReplaceAllString(path, "")
}

// SplitPath splits a slash separated path. Data URLs stay one segment and
// a leading "scheme://host" is kept together.
func SplitPath(path string) []string {
	if strings.HasPrefix(path, "data:") && strings.Contains(path, ",") {
		return []string{path}
	}
	parts := strings.Split(path, "/")
	if len(parts) >= 3 && parts[1] == "" && strings.HasSuffix(parts[0], ":") {
		joined := strings.Join(parts[:3], "/")
		parts = append([]string{joined}, parts[3:]...)
	}
	return parts
}

// CommonPrefix narrows prefix to the leading segments it shares with path.
// A nil prefix starts from path itself; an empty path has no segments.
func CommonPrefix(path string, prefix []string) []string {
	if path == "" {
		return []string{}
	}
	parts := SplitPath(path)
	if prefix == nil {
		return parts
	}
	n := 0
	for n < len(prefix) && n < len(parts) && prefix[n] == parts[n] {
		n++
	}
	return prefix[:n]
}

// pathNode collects sizes per path segment before the tree is built
type pathNode struct {
	text     string
	id       string
	size     int64
	children map[string]*pathNode
}

func newPathNode(text, id string) *pathNode {
	return &pathNode{text: text, id: id, children: make(map[string]*pathNode)}
}

// accumulate adds bytes to every directory on path and to the file itself.
// Directory ids keep their trailing slash so "a" and "a/" stay distinct.
func (p *pathNode) accumulate(path string, bytes int64) {
	parts := SplitPath(path)
	parent := p
	inputPath := ""
	p.size += bytes
	for i, part := range parts {
		name := part
		if i+1 < len(parts) {
			name += "/"
		}
		inputPath += name
		child, ok := parent.children[part]
		if !ok {
			child = newPathNode(name, inputPath)
			parent.children[part] = child
		}
		child.size += bytes
		parent = child
	}
}

// toNode converts the collected paths. idPrefix keeps ids unique when the
// same input shows up under several outputs.
func (p *pathNode) toNode(idPrefix string) *model.Node {
	n := &model.Node{
		ID:      idPrefix + p.id,
		Text:    p.text,
		Subtext: model.FormatBytes(p.size),
		Size:    p.size,
		Meta:    p.id,
	}
	for _, child := range p.children {
		n.Children = append(n.Children, child.toNode(idPrefix))
	}
	return n
}

// InputTree builds the tree of input files by path. Every input appears,
// with the bytes it contributed to any output; tree-shaken inputs keep
// size 0. Source map outputs are ignored.
func (m *Metafile) InputTree() (*model.Tree, error) {
	root := newPathNode("", "")
	for path := range m.Inputs {
		root.accumulate(StripDisabledPrefix(path), 0)
	}
	for out, output := range m.Outputs {
		if IsSourceMapPath(out) {
			continue
		}
		for path, content := range output.Inputs {
			root.accumulate(StripDisabledPrefix(path), content.BytesInOutput)
		}
	}

	tree, err := model.NewTree(root.toNode(""))
	if err != nil {
		return nil, fmt.Errorf("metafile input tree: %w", err)
	}
	return tree, nil
}

// OutputTree builds one subtree per output file, named relative to the
// common output directory, holding the inputs bundled into it. Directory
// levels shared by every output are folded into their children, and bytes
// no input accounts for become an "(unassigned)" leaf.
func (m *Metafile) OutputTree() (*model.Tree, error) {
	var prefix []string
	for out := range m.Outputs {
		parts := SplitPath(out)
		prefix = CommonPrefix(strings.Join(parts[:len(parts)-1], "/"), prefix)
	}

	root := &model.Node{ID: "", Text: ""}
	var outputs []*model.Node
	for out, output := range m.Outputs {
		if IsSourceMapPath(out) {
			continue
		}
		name := out
		if prefix != nil {
			name = strings.Join(SplitPath(out)[len(prefix):], "/")
		}

		inputs := newPathNode("", "")
		for path, content := range output.Inputs {
			inputs.accumulate(StripDisabledPrefix(path), content.BytesInOutput)
		}
		node := &model.Node{
			ID:      out,
			Text:    name,
			Subtext: model.FormatBytes(output.Bytes),
			Size:    output.Bytes,
		}
		for _, child := range inputs.children {
			node.Children = append(node.Children, child.toNode(out+":"))
		}
		outputs = append(outputs, node)
	}

	unwrapCommonDirs(outputs)

	for _, node := range outputs {
		var childBytes int64
		for _, child := range node.Children {
			childBytes += child.Size
		}
		if childBytes < node.Size {
			rest := node.Size - childBytes
			node.Children = append(node.Children, &model.Node{
				ID:      node.ID + ":" + unassignedText,
				Text:    unassignedText,
				Subtext: model.FormatBytes(rest),
				Size:    rest,
			})
		}
		root.Children = append(root.Children, node)
	}

	tree, err := model.NewTree(root)
	if err != nil {
		return nil, fmt.Errorf("metafile output tree: %w", err)
	}
	return tree, nil
}

// unwrapCommonDirs removes directory levels while every output with
// inputs holds exactly one directory of the same name with one child.
func unwrapCommonDirs(outputs []*model.Node) {
	for {
		var prefix string
		found := false
		for _, node := range outputs {
			children := node.Children
			if len(children) == 0 {
				continue
			}
			if len(children) > 1 || len(children[0].Children) != 1 {
				return
			}
			name := children[0].Text
			if !found {
				prefix, found = name, true
			} else if prefix != name {
				return
			}
		}
		if !found {
			return
		}
		for _, node := range outputs {
			if len(node.Children) == 0 {
				continue
			}
			node.Children = node.Children[0].Children
			for _, child := range node.Children {
				child.Text = prefix + child.Text
			}
		}
	}
}

// Format returns the module format recorded for the input n stands for
func (m *Metafile) Format(n *model.Node) color.Format {
	path, _ := n.Meta.(string)
	if path == "" {
		return 0
	}
	if in, ok := m.Inputs[path]; ok {
		return color.ParseFormat(in.Format)
	}
	if in, ok := m.Inputs["(disabled):"+path]; ok {
		return color.ParseFormat(in.Format)
	}
	return 0
}
