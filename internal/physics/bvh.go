package physics

import (
	"sort"

	"github.com/pkg/errors"
)

const (
	maxShapesPerLeaf = 4
	maxTreeDepth     = 20
)

type indexEntry struct {
	shape  *Shape
	bounds AABB
}

// bvhNode is a node in the bounding volume hierarchy
type bvhNode struct {
	bounds  AABB
	left    *bvhNode
	right   *bvhNode
	entries []indexEntry // only for leaf nodes
}

// SpatialIndex is a bounding volume tree over the shapes of static bodies.
// Shapes are inserted first, then the tree is built once and only read after
// that. Moving shapes are refused: their bounds change every tick.
type SpatialIndex struct {
	entries []indexEntry
	root    *bvhNode
	built   bool
}

func NewSpatialIndex() *SpatialIndex {
	return &SpatialIndex{}
}

// Insert registers a static shape. Its bounds are captured now since static
// bodies never move.
func (ix *SpatialIndex) Insert(s *Shape) error {
	if ix.built {
		return ErrIndexBuilt
	}
	if s.body == nil || s.body.Type() != Static {
		return errors.Wrapf(ErrNotStatic, "insert %s shape", s.kind)
	}
	ix.entries = append(ix.entries, indexEntry{shape: s, bounds: s.Bounds()})
	return nil
}

// Build computes the tree. It can run exactly once.
func (ix *SpatialIndex) Build() error {
	if ix.built {
		return ErrIndexBuilt
	}
	ix.built = true
	if len(ix.entries) == 0 {
		return nil
	}
	entries := make([]indexEntry, len(ix.entries))
	copy(entries, ix.entries)
	ix.root = buildBVHNode(entries, 0)
	return nil
}

func (ix *SpatialIndex) Built() bool { return ix.built }

func (ix *SpatialIndex) Len() int { return len(ix.entries) }

func buildBVHNode(entries []indexEntry, depth int) *bvhNode {
	node := &bvhNode{bounds: emptyAABB()}
	for _, e := range entries {
		node.bounds = node.bounds.Union(e.bounds)
	}

	if len(entries) <= maxShapesPerLeaf || depth > maxTreeDepth {
		node.entries = entries
		return node
	}

	// Split at the median centroid along the longest axis
	axis := node.bounds.LongestAxis()
	sort.Slice(entries, func(i, j int) bool {
		return axisValue(entries[i].bounds.Center(), axis) < axisValue(entries[j].bounds.Center(), axis)
	})
	mid := len(entries) / 2

	node.left = buildBVHNode(entries[:mid], depth+1)
	node.right = buildBVHNode(entries[mid:], depth+1)
	return node
}

// Query returns the indexed shapes whose bounds overlap the bounds of s.
func (ix *SpatialIndex) Query(s *Shape) ([]*Shape, error) {
	if !ix.built {
		return nil, ErrIndexNotBuilt
	}
	return ix.queryBounds(ix.root, s.Bounds(), nil), nil
}

func (ix *SpatialIndex) queryBounds(node *bvhNode, query AABB, out []*Shape) []*Shape {
	if node == nil || !node.bounds.Intersects(query) {
		return out
	}
	if node.left == nil && node.right == nil {
		for _, e := range node.entries {
			if e.bounds.Intersects(query) && e.shape.body != nil && e.shape.body.Type() == Static {
				out = append(out, e.shape)
			}
		}
		return out
	}
	out = ix.queryBounds(node.left, query, out)
	return ix.queryBounds(node.right, query, out)
}
