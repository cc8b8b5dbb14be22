package spatial

import "math"

// Point is a WGS84 coordinate.
type Point struct {
	Lon float64
	Lat float64
}

// Ring is a closed loop of coordinates. Following GeoJSON, the first
// ring of a polygon is the outer boundary and any further rings are
// holes.
type Ring []Point

// Polygon is one outer ring plus holes, with a precomputed bounding box
// (minLon, minLat, maxLon, maxLat) for cheap rejection.
type Polygon struct {
	Rings []Ring
	BBox  [4]float64
}

// Feature is a named region that may span several polygons (island
// groups, exclaves).
type Feature struct {
	ID       string
	Name     string
	Region   string
	Polygons []Polygon
}

// Contains reports whether the point falls inside the polygon: inside
// the outer ring and outside every hole. Even-odd ray casting.
func (p Polygon) Contains(pt Point) bool {
	if !inBBox(pt, p.BBox) {
		return false
	}
	if len(p.Rings) == 0 || !pointInRing(pt, p.Rings[0]) {
		return false
	}
	for i := 1; i < len(p.Rings); i++ {
		if pointInRing(pt, p.Rings[i]) {
			return false
		}
	}
	return true
}

// Contains reports whether any of the feature's polygons contains the
// point.
func (f *Feature) Contains(pt Point) bool {
	for _, p := range f.Polygons {
		if p.Contains(pt) {
			return true
		}
	}
	return false
}

func pointInRing(pt Point, ring Ring) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	x, y := pt.Lon, pt.Lat
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].Lon, ring[i].Lat
		xj, yj := ring[j].Lon, ring[j].Lat
		// Epsilon keeps near-horizontal edges from dividing by zero.
		if ((yi > y) != (yj > y)) && (x < (xj-xi)*(y-yi)/(yj-yi+1e-12)+xi) {
			inside = !inside
		}
	}
	return inside
}

func inBBox(pt Point, b [4]float64) bool {
	return pt.Lon >= b[0] && pt.Lon <= b[2] && pt.Lat >= b[1] && pt.Lat <= b[3]
}

func computeBBox(rings []Ring) [4]float64 {
	b := [4]float64{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, ring := range rings {
		for _, pt := range ring {
			b[0] = math.Min(b[0], pt.Lon)
			b[1] = math.Min(b[1], pt.Lat)
			b[2] = math.Max(b[2], pt.Lon)
			b[3] = math.Max(b[3], pt.Lat)
		}
	}
	return b
}

// ringAreaCentroid returns the absolute shoelace area of a ring and its
// area centroid.
func ringAreaCentroid(ring Ring) (float64, Point) {
	n := len(ring)
	if n < 3 {
		return 0, Point{}
	}
	var area, cx, cy float64
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		cross := ring[j].Lon*ring[i].Lat - ring[i].Lon*ring[j].Lat
		area += cross
		cx += (ring[j].Lon + ring[i].Lon) * cross
		cy += (ring[j].Lat + ring[i].Lat) * cross
	}
	area /= 2
	if area == 0 {
		return 0, Point{}
	}
	return math.Abs(area), Point{Lon: cx / (6 * area), Lat: cy / (6 * area)}
}

// Centroid is the area-weighted centroid over all polygons, holes
// subtracted. Returns false for degenerate geometry (no rings, zero or
// negative net area), which the builder skips and counts.
//
// The centroid of a concave or multi-part feature can fall outside the
// feature itself; the builder records such codes as unmatched rather
// than guessing.
func (f *Feature) Centroid() (Point, bool) {
	var totalArea, cx, cy float64
	for _, p := range f.Polygons {
		if len(p.Rings) == 0 {
			continue
		}
		area, c := ringAreaCentroid(p.Rings[0])
		if area == 0 {
			continue
		}
		net := area
		nx, ny := c.Lon*area, c.Lat*area
		for _, hole := range p.Rings[1:] {
			ha, hc := ringAreaCentroid(hole)
			net -= ha
			nx -= hc.Lon * ha
			ny -= hc.Lat * ha
		}
		if net <= 0 {
			continue
		}
		totalArea += net
		cx += nx
		cy += ny
	}
	if totalArea <= 0 {
		return Point{}, false
	}
	return Point{Lon: cx / totalArea, Lat: cy / totalArea}, true
}
