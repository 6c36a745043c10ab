package geo

import "github.com/tidwall/rtree"

// Index is a 2-D spatial index over a Projection's points, answering
// "every stop whose point lies within a given rectangle" in
// O(log N + k). Backed by github.com/tidwall/rtree, the same R-tree
// OneBusAway-maglev builds over GTFS stop coordinates.
type Index struct {
	tree *rtree.RTree
}

// BuildIndex inserts every projected point into a fresh R-tree, keyed
// by its dense stop index.
func BuildIndex(proj *Projection) *Index {
	tree := &rtree.RTree{}
	for i := 0; i < proj.Count(); i++ {
		x, y := proj.XY(i)
		tree.Insert([2]float64{x, y}, [2]float64{x, y}, i)
	}
	return &Index{tree: tree}
}

// QueryBox returns the dense stop indices of every point within the
// axis-aligned rectangle [minX, maxX] x [minY, maxY], inclusive.
func (idx *Index) QueryBox(minX, minY, maxX, maxY float64) []int {
	var results []int
	idx.tree.Search(
		[2]float64{minX, minY},
		[2]float64{maxX, maxY},
		func(_, _ [2]float64, data interface{}) bool {
			results = append(results, data.(int))
			return true
		},
	)
	return results
}
