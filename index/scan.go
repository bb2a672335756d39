package index

import (
	"container/heap"
	"math"

	"github.com/arloliu/tempus/box"
)

// Tree is a small in-memory quad-tree over temporal boxes. It exercises
// the partitioning and consistency logic end to end: inserts choose
// quadrants against node centroids, scans carry box.Node traversal
// values refined by QuadtreeNext, and nearest-neighbor search orders
// its frontier by the node distance lower bound.
type Tree struct {
	root *treeNode
	size int
}

// Entry is one indexed box with its caller-assigned identifier.
type Entry struct {
	Box box.TBox
	ID  int64
}

// treeNode is either a leaf bucket of entries or an inner node with a
// centroid and 16 quadrant children.
type treeNode struct {
	centroid box.TBox
	children [16]*treeNode
	entries  []Entry
	inner    bool
}

// leafCapacity bounds a leaf bucket before it splits into quadrants.
const leafCapacity = 16

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{}
}

// Len returns the number of indexed entries.
func (t *Tree) Len() int { return t.size }

// Insert adds an entry to the tree.
func (t *Tree) Insert(e Entry) {
	if t.root == nil {
		t.root = &treeNode{}
	}
	t.root.insert(e, 0)
	t.size++
}

func (n *treeNode) insert(e Entry, depth int) {
	if !n.inner {
		n.entries = append(n.entries, e)
		// Split once the bucket is full; guard against degenerate sets
		// that all share one centroid by capping the depth.
		if len(n.entries) > leafCapacity && depth < 32 {
			n.split(depth)
		}
		return
	}

	q := Quadrant4D(n.centroid, e.Box)
	if n.children[q] == nil {
		n.children[q] = &treeNode{}
	}
	n.children[q].insert(e, depth+1)
}

// split converts a full leaf into an inner node, using the first entry
// as the centroid.
func (n *treeNode) split(depth int) {
	n.centroid = n.entries[0].Box
	entries := n.entries
	n.entries = nil
	n.inner = true
	for _, e := range entries {
		n.insert(e, depth)
	}
}

// Scan returns the IDs of every entry whose box satisfies the query
// under the given strategy, in insertion-independent tree order.
func (t *Tree) Scan(query box.TBox, strategy Strategy) ([]int64, error) {
	if t.root == nil {
		return nil, nil
	}
	var out []int64
	nodebox := box.InitNode(rootCentroid(t.root))
	err := t.root.scan(query, strategy, nodebox, &out)

	return out, err
}

// rootCentroid finds a centroid to seed the root traversal value: the
// root's own centroid when it is inner, otherwise any stored box.
func rootCentroid(n *treeNode) box.TBox {
	if n.inner {
		return n.centroid
	}
	if len(n.entries) > 0 {
		return n.entries[0].Box
	}

	return box.TBox{}
}

func (n *treeNode) scan(query box.TBox, strategy Strategy, nodebox box.Node, out *[]int64) error {
	if !n.inner {
		for _, e := range n.entries {
			ok, err := LeafConsistent(e.Box, query, strategy)
			if err != nil {
				return err
			}
			if ok {
				*out = append(*out, e.ID)
			}
		}
		return nil
	}

	for q := uint8(0); q < 16; q++ {
		child := n.children[q]
		if child == nil {
			continue
		}
		childBox := QuadtreeNext(nodebox, n.centroid, q)
		if !NodeConsistent(childBox, query, strategy) {
			continue
		}
		if err := child.scan(query, strategy, childBox, out); err != nil {
			return err
		}
	}

	return nil
}

/*****************************************************************************
 * Distance-ordered search
 *****************************************************************************/

// knnItem is one frontier element of the nearest-neighbor search:
// either an unexpanded subtree or a concrete entry.
type knnItem struct {
	dist    float64
	node    *treeNode
	nodebox box.Node
	entry   Entry
	isLeaf  bool
}

type knnQueue []knnItem

func (q knnQueue) Len() int           { return len(q) }
func (q knnQueue) Less(i, j int) bool { return q[i].dist < q[j].dist }
func (q knnQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *knnQueue) Push(x any)        { *q = append(*q, x.(knnItem)) }
func (q *knnQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]

	return item
}

// Nearest returns the IDs of the k entries nearest to the query on the
// value axis, ordered by increasing distance. Entries whose time
// projection is disjoint from the query are unreachable (+Inf) and are
// never returned.
func (t *Tree) Nearest(query box.TBox, k int) []int64 {
	if t.root == nil || k <= 0 {
		return nil
	}

	frontier := &knnQueue{}
	heap.Init(frontier)
	rootBox := box.InitNode(rootCentroid(t.root))
	heap.Push(frontier, knnItem{dist: 0, node: t.root, nodebox: rootBox})

	var out []int64
	for frontier.Len() > 0 && len(out) < k {
		item := heap.Pop(frontier).(knnItem)
		if math.IsInf(item.dist, 1) {
			break
		}
		if item.isLeaf {
			out = append(out, item.entry.ID)
			continue
		}

		n := item.node
		if !n.inner {
			for _, e := range n.entries {
				heap.Push(frontier, knnItem{
					dist:   query.NearestDistance(e.Box),
					entry:  e,
					isLeaf: true,
				})
			}
			continue
		}
		for q := uint8(0); q < 16; q++ {
			child := n.children[q]
			if child == nil {
				continue
			}
			childBox := QuadtreeNext(item.nodebox, n.centroid, q)
			heap.Push(frontier, knnItem{
				dist:    DistanceToNode(query, childBox),
				node:    child,
				nodebox: childBox,
			})
		}
	}

	return out
}
