package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Tree is a normalized root together with its depth
type Tree struct {
	Root     *Node
	MaxDepth int
}

// NewTree normalizes root and wraps it
func NewTree(root *Node) (*Tree, error) {
	if root == nil {
		return nil, fmt.Errorf("nil tree root")
	}
	n, err := Normalize(root)
	if err != nil {
		return nil, err
	}
	return &Tree{Root: n, MaxDepth: MaxDepth(n)}, nil
}

// SortBySize sorts nodes by total size descending, then by id ascending
func SortBySize(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		si, sj := nodes[i].Size, nodes[j].Size
		if si != sj {
			return si > sj
		}
		return nodes[i].ID < nodes[j].ID
	})
}

// FormatBytes formats a byte count the way the chart subtexts show it
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes == 1:
		return "1 byte"
	case bytes < KB:
		return groupThousands(bytes) + " bytes"
	case bytes < MB:
		return withDecimal(float64(bytes)/KB) + " kb"
	case bytes < GB:
		return withDecimal(float64(bytes)/MB) + " mb"
	default:
		return withDecimal(float64(bytes)/GB) + " gb"
	}
}

func withDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	whole, frac, _ := strings.Cut(s, ".")
	n, _ := strconv.ParseInt(whole, 10, 64)
	return groupThousands(n) + "." + frac
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
