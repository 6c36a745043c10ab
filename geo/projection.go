// Package geo projects geodetic stop coordinates onto a local
// azimuthal-equidistant plane and indexes the projected points for
// radius queries.
package geo

import "math"

// earthRadiusMeters is the mean Earth radius used by the spherical AEQD
// approximation below; adequate at the footpath_radius_m scale (a few
// hundred meters) this engine operates at.
const earthRadiusMeters = 6371000.0

// Projection holds the AEQD-projected (x, y) coordinates, in meters, of
// every stop, indexed by the same dense stop index the rest of the
// engine uses (position in the feed's Stops slice). Immutable after
// NewProjection returns.
type Projection struct {
	CentroidLat float64
	CentroidLon float64
	X           []float64
	Y           []float64
}

// NewProjection centers an azimuthal-equidistant projection on the
// feed's centroid (mean of all stop coordinates - chosen over "first
// stop" because it keeps distortion balanced across the whole feed
// rather than biased toward wherever stop #0 happens to sit) and
// projects every (lat, lon) pair onto it.
func NewProjection(lats, lons []float64) *Projection {
	n := len(lats)
	centroidLat, centroidLon := centroid(lats, lons)

	proj := &Projection{
		CentroidLat: centroidLat,
		CentroidLon: centroidLon,
		X:           make([]float64, n),
		Y:           make([]float64, n),
	}
	for i := 0; i < n; i++ {
		proj.X[i], proj.Y[i] = aeqd(lats[i], lons[i], centroidLat, centroidLon)
	}
	return proj
}

func centroid(lats, lons []float64) (float64, float64) {
	if len(lats) == 0 {
		return 0, 0
	}
	var sumLat, sumLon float64
	for i := range lats {
		sumLat += lats[i]
		sumLon += lons[i]
	}
	n := float64(len(lats))
	return sumLat / n, sumLon / n
}

// aeqd projects (lat, lon) onto a sphere-based azimuthal-equidistant
// plane centered at (lat0, lon0), returning (x, y) in meters (x =
// easting, y = northing). No AEQD implementation exists anywhere in
// the surrounding corpus, so this is hand-derived from the standard
// spherical AEQD formula - the same way gtfstidy hand-rolls its own
// web-mercator conversion rather than importing a projection library.
func aeqd(lat, lon, lat0, lon0 float64) (float64, float64) {
	phi1 := lat0 * math.Pi / 180
	phi := lat * math.Pi / 180
	dLambda := (lon - lon0) * math.Pi / 180

	cosC := math.Sin(phi1)*math.Sin(phi) + math.Cos(phi1)*math.Cos(phi)*math.Cos(dLambda)
	if cosC > 1 {
		cosC = 1
	} else if cosC < -1 {
		cosC = -1
	}
	c := math.Acos(cosC)
	if c == 0 {
		return 0, 0
	}

	k := c / math.Sin(c)
	x := earthRadiusMeters * k * math.Cos(phi) * math.Sin(dLambda)
	y := earthRadiusMeters * k * (math.Cos(phi1)*math.Sin(phi) - math.Sin(phi1)*math.Cos(phi)*math.Cos(dLambda))
	return x, y
}

// Count returns the number of projected points.
func (p *Projection) Count() int {
	return len(p.X)
}

// XY returns the projected coordinates of stop index i.
func (p *Projection) XY(i int) (float64, float64) {
	return p.X[i], p.Y[i]
}
