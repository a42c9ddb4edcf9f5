// Package loader reads chart input files: plain trees written as YAML or
// JSON, and esbuild metafiles.
package loader

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lumipallolabs/nanovis/internal/model"
)

// ErrUnknownFormat is returned for documents that are neither a tree nor a
// metafile.
var ErrUnknownFormat = errors.New("unknown input format")

// Kind tells what a loaded document was
type Kind int

const (
	KindTree Kind = iota
	KindMetafile
)

func (k Kind) String() string {
	switch k {
	case KindTree:
		return "tree"
	case KindMetafile:
		return "metafile"
	}
	return "unknown"
}

// Input is a decoded input file
type Input struct {
	Kind     Kind
	Tree     *model.Tree
	Metafile *Metafile // set for KindMetafile
}

// treeKeys are the fields a tree document may carry at its root
var treeKeys = []string{"id", "text", "subtext", "size", "sizeSelf", "color", "children", "meta"}

// Load reads and decodes the file at path
func Load(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	in, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}

// Decode sniffs data and decodes it as a metafile (top-level "inputs" and
// "outputs") or as a tree. JSON is read through the YAML decoder.
func Decode(data []byte) (*Input, error) {
	var probe map[string]yaml.Node
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, err)
	}

	_, hasInputs := probe["inputs"]
	_, hasOutputs := probe["outputs"]
	if hasInputs && hasOutputs {
		m, err := DecodeMetafile(data)
		if err != nil {
			return nil, err
		}
		tree, err := m.InputTree()
		if err != nil {
			return nil, err
		}
		return &Input{Kind: KindMetafile, Tree: tree, Metafile: m}, nil
	}

	for _, key := range treeKeys {
		if _, ok := probe[key]; ok {
			tree, err := DecodeTree(data)
			if err != nil {
				return nil, err
			}
			return &Input{Kind: KindTree, Tree: tree}, nil
		}
	}
	return nil, ErrUnknownFormat
}

// DecodeTree decodes a tree document and normalizes it
func DecodeTree(data []byte) (*model.Tree, error) {
	var root model.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	tree, err := model.NewTree(&root)
	if err != nil {
		return nil, fmt.Errorf("normalize tree: %w", err)
	}
	return tree, nil
}

// EncodeTree writes root as a YAML tree document
func EncodeTree(root *model.Node) ([]byte, error) {
	out, err := yaml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("encode tree: %w", err)
	}
	return out, nil
}
