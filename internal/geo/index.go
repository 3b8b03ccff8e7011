package geo

import (
	"fmt"
	"slices"
	"sort"

	"github.com/dhconnelly/rtreego"
)

const (
	tolerance   = 0.5 // metres
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
)

// spatialItem wraps a point position for R-tree indexing.
type spatialItem struct {
	idx  int
	rect *rtreego.Rect
}

func (si *spatialItem) Bounds() *rtreego.Rect {
	return si.rect
}

// Index is an R-tree over projected point positions.
type Index struct {
	tree   *rtreego.Rtree
	points []Point
}

// NewIndex builds an index over points. The slice is retained, not copied.
func NewIndex(points []Point) *Index {
	tree := rtreego.NewTree(dimensions, minChildren, maxChildren)
	for i, p := range points {
		tree.Insert(&spatialItem{idx: i, rect: rtreego.Point{p.X, p.Y}.ToRect(tolerance)})
	}
	return &Index{tree: tree, points: points}
}

// Len returns the number of indexed points.
func (ix *Index) Len() int {
	return ix.tree.Size()
}

// Search returns the points inside env, in their original order.
func (ix *Index) Search(env Envelope) ([]Point, error) {
	w, h := env.MaxX-env.MinX, env.MaxY-env.MinY
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid envelope %+v", env)
	}
	bounds, err := rtreego.NewRect(rtreego.Point{env.MinX, env.MinY}, []float64{w, h})
	if err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	hits := ix.tree.SearchIntersect(bounds)
	idx := make([]int, 0, len(hits))
	for _, hit := range hits {
		item, ok := hit.(*spatialItem)
		if !ok {
			continue
		}
		// The tolerance box may touch the envelope while the point itself does not.
		p := ix.points[item.idx]
		if env.Contains(p.X, p.Y) {
			idx = append(idx, item.idx)
		}
	}
	slices.Sort(idx)

	out := make([]Point, len(idx))
	for i, j := range idx {
		out[i] = ix.points[j]
	}
	return out, nil
}

// FilterRegion keeps accidents of region whose position falls inside the
// region's robust envelope: the 1st to 99th percentile box of its points padded
// by a tenth on each side. Accidents attributed to the region but located far
// outside of it are mis-coded in the source and are dropped.
func FilterRegion(points []Point, region string) ([]Point, error) {
	var sel []Point
	for _, p := range points {
		if p.Accident.Region == region {
			sel = append(sel, p)
		}
	}
	if len(sel) == 0 {
		return nil, nil
	}

	env := robustEnvelope(sel, 0.01).Pad(0.1)
	if env.MaxX-env.MinX <= 0 || env.MaxY-env.MinY <= 0 {
		// All points share a coordinate; nothing to filter.
		return sel, nil
	}
	return NewIndex(sel).Search(env)
}

// robustEnvelope bounds the q..1-q quantiles of both coordinates.
func robustEnvelope(points []Point, q float64) Envelope {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	sort.Float64s(xs)
	sort.Float64s(ys)
	return Envelope{
		MinX: quantile(xs, q), MinY: quantile(ys, q),
		MaxX: quantile(xs, 1-q), MaxY: quantile(ys, 1-q),
	}
}

// quantile picks the nearest-rank quantile of sorted values.
func quantile(sorted []float64, q float64) float64 {
	i := int(q*float64(len(sorted)-1) + 0.5)
	return sorted[i]
}
