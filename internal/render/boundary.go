// Package render is the presentation consumer of the report core: it loads
// the county boundary GeoJSON and composes the final raster figure.
package render

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gonum.org/v1/plot/plotter"
)

// Boundary holds county outlines as drawable rings.
type Boundary struct {
	Rings []plotter.XYs
}

// LoadBoundary reads a GeoJSON FeatureCollection of county polygons.
// Non-polygonal features are ignored.
func LoadBoundary(path string) (Boundary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Boundary{}, fmt.Errorf("read boundary file: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return Boundary{}, fmt.Errorf("parse boundary geojson: %w", err)
	}

	var b Boundary
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			b.appendPolygon(g)
		case orb.MultiPolygon:
			for _, poly := range g {
				b.appendPolygon(poly)
			}
		}
	}
	return b, nil
}

func (b *Boundary) appendPolygon(poly orb.Polygon) {
	for _, ring := range poly {
		xys := make(plotter.XYs, len(ring))
		for i, pt := range ring {
			xys[i].X = pt.Lon()
			xys[i].Y = pt.Lat()
		}
		b.Rings = append(b.Rings, xys)
	}
}
