package spatial

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// PropertyMap names the GeoJSON properties to read per feature. ID is
// required; Name and Region are optional and default to empty.
type PropertyMap struct {
	ID     string
	Name   string
	Region string
}

type featureCollection struct {
	Type     string        `json:"type"`
	Features []featureJSON `json:"features"`
}

type featureJSON struct {
	Properties map[string]any `json:"properties"`
	Geometry   geometryJSON   `json:"geometry"`
}

type geometryJSON struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// LoadFeatures reads a GeoJSON FeatureCollection of Polygon or
// MultiPolygon features. Features with unsupported geometry, missing id
// properties, or too few coordinates are skipped and counted; a handful
// of bad source rows must never abort a national build.
func LoadFeatures(path string, props PropertyMap) ([]Feature, int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}

	var fc featureCollection
	if err := json.Unmarshal(b, &fc); err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", path, err)
	}
	if !strings.EqualFold(fc.Type, "FeatureCollection") {
		return nil, 0, fmt.Errorf("%s: expected FeatureCollection, got %q", path, fc.Type)
	}

	var features []Feature
	skipped := 0
	for _, fj := range fc.Features {
		f := Feature{
			ID:     propString(fj.Properties, props.ID),
			Name:   propString(fj.Properties, props.Name),
			Region: propString(fj.Properties, props.Region),
		}
		if f.ID == "" {
			skipped++
			continue
		}

		polys, err := decodeGeometry(fj.Geometry)
		if err != nil || len(polys) == 0 {
			skipped++
			continue
		}
		f.Polygons = polys
		features = append(features, f)
	}

	return features, skipped, nil
}

func propString(props map[string]any, key string) string {
	if key == "" || props == nil {
		return ""
	}
	switch v := props[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strings.TrimSuffix(strings.TrimSuffix(fmt.Sprintf("%f", v), "000000"), ".")
	default:
		return ""
	}
}

func decodeGeometry(g geometryJSON) ([]Polygon, error) {
	switch strings.ToLower(g.Type) {
	case "polygon":
		var coords [][][]float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return nil, err
		}
		p, ok := buildPolygon(coords)
		if !ok {
			return nil, fmt.Errorf("degenerate polygon")
		}
		return []Polygon{p}, nil
	case "multipolygon":
		var coords [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return nil, err
		}
		var polys []Polygon
		for _, pc := range coords {
			if p, ok := buildPolygon(pc); ok {
				polys = append(polys, p)
			}
		}
		return polys, nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
	}
}

func buildPolygon(coords [][][]float64) (Polygon, bool) {
	var rings []Ring
	for _, rc := range coords {
		ring := make(Ring, 0, len(rc))
		for _, pos := range rc {
			if len(pos) < 2 {
				continue
			}
			ring = append(ring, Point{Lon: pos[0], Lat: pos[1]})
		}
		if len(ring) >= 3 {
			rings = append(rings, ring)
		}
	}
	if len(rings) == 0 {
		return Polygon{}, false
	}
	return Polygon{Rings: rings, BBox: computeBBox(rings)}, true
}
