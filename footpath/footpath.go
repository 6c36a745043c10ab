// Package footpath builds the symmetric walking-edge graph between
// stops that lie within a fixed radius of one another.
package footpath

import (
	"math"

	"github.com/yongjun0702/krri-raptor/geo"
)

// Edge is a single walking connection out of some stop.
type Edge struct {
	To          int
	WalkSeconds float64
}

// Graph is the frozen, read-only footpath graph: Edges[s] lists every
// stop reachable on foot from stop index s. Self-edges are excluded;
// symmetry follows from the symmetry of Euclidean distance, not from
// any explicit mirroring step.
type Graph struct {
	Edges [][]Edge
}

// Neighbors returns the walking edges out of stop index s.
func (g *Graph) Neighbors(s int) []Edge {
	return g.Edges[s]
}

// Build enumerates, for every stop, the neighbor stops within radiusM
// meters and records the walking time as distance / walkingSpeedMPS
// (zero if the distance itself is zero). distance is computed once per
// candidate pair and cached as the edge weight.
func Build(proj *geo.Projection, index *geo.Index, radiusM, walkingSpeedMPS float64) *Graph {
	numStops := proj.Count()
	edges := make([][]Edge, numStops)

	for s := 0; s < numStops; s++ {
		x, y := proj.XY(s)
		candidates := index.QueryBox(x-radiusM, y-radiusM, x+radiusM, y+radiusM)

		for _, t := range candidates {
			if t == s {
				continue
			}
			tx, ty := proj.XY(t)
			d := math.Hypot(x-tx, y-ty)
			if d > radiusM {
				continue
			}

			w := 0.0
			if d > 0 {
				w = d / walkingSpeedMPS
			}
			edges[s] = append(edges[s], Edge{To: t, WalkSeconds: w})
		}
	}

	return &Graph{Edges: edges}
}
