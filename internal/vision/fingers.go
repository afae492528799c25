package vision

import (
	"image"
	"math"
	"sort"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"
)

// Defect is one convexity defect: the contour leaves the hull at Start,
// rejoins it at End, and Far is the deepest point in between. Depth is in
// OpenCV fixed-point units (pixel distance × 256).
type Defect struct {
	Start image.Point `json:"start"`
	End   image.Point `json:"end"`
	Far   image.Point `json:"far"`
	Depth float64     `json:"depth"`
}

// FingerCount is the output of CountFingers.
type FingerCount struct {
	Count int
	// Tips holds deduplicated fingertip candidates, topmost first, at most MaxFingers.
	Tips []image.Point
	// Defects holds only the defects accepted as inter-finger valleys.
	Defects []Defect
	// Hull is the convex hull of the contour, empty when it is degenerate.
	Hull []image.Point
}

// CountFingers estimates the number of raised fingers on a hand contour from
// its convexity defects.
//
// A defect counts as a valley between two fingers when the angle at its
// deepest point is at most p.MaxValleyAngle and its depth exceeds
// p.MinDefectDepth. The start and end points of each valley are fingertip
// candidates. Two signals are then reconciled: the number of valleys (plus
// one, since n adjacent fingers leave n-1 gaps) and the number of distinct
// tips.
//
// Defects no deeper than DefectNoiseDepth are pixel-staircase artifacts of a
// rasterized outline. A contour whose defects are all that shallow is
// treated as convex and counts zero fingers.
func CountFingers(c Contour, p Params) FingerCount {
	if len(c) < 3 {
		return FingerCount{}
	}

	contour := c.pointVector()
	defer contour.Close()

	hull := gocv.NewMat()
	defer hull.Close()
	gocv.ConvexHull(contour, &hull, false, false)
	if hull.Empty() || hull.Rows() < 3 {
		return FingerCount{}
	}

	hullPts := make([]image.Point, 0, hull.Rows())
	for i := 0; i < hull.Rows(); i++ {
		hullPts = append(hullPts, c[hull.GetIntAt(i, 0)])
	}

	defects := gocv.NewMat()
	defer defects.Close()
	gocv.ConvexityDefects(contour, hull, &defects)

	var (
		candidates []image.Point
		accepted   []Defect
		concave    bool
	)
	for i := 0; i < defects.Rows(); i++ {
		v := defects.GetVeciAt(i, 0)
		d := Defect{
			Start: c[v[0]],
			End:   c[v[1]],
			Far:   c[v[2]],
			Depth: float64(v[3]),
		}
		if d.Depth <= DefectNoiseDepth {
			continue
		}
		concave = true

		angle, ok := valleyAngle(d)
		if !ok {
			continue
		}
		if angle <= p.MaxValleyAngle && d.Depth > p.MinDefectDepth {
			accepted = append(accepted, d)
			candidates = append(candidates, d.Start, d.End)
		}
	}

	if !concave {
		return FingerCount{Hull: hullPts}
	}

	tips := dedupeTips(candidates, p.MinTipGap)
	return FingerCount{
		Count:   reconcileCount(len(tips), len(accepted)),
		Tips:    tips,
		Defects: accepted,
		Hull:    hullPts,
	}
}

// valleyAngle returns the interior angle at d.Far in degrees, using the law
// of cosines. It reports false when either side touching Far has zero length.
func valleyAngle(d Defect) (float64, bool) {
	start, end, far := vec(d.Start), vec(d.End), vec(d.Far)

	a := r2.Norm(r2.Sub(end, far))
	b := r2.Norm(r2.Sub(start, far))
	c := r2.Norm(r2.Sub(start, end))
	if a == 0 || b == 0 {
		return 0, false
	}

	cos := (a*a + b*b - c*c) / (2 * a * b)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi, true
}

// dedupeTips keeps each point only if it lies farther than minGap from every
// point kept so far, then orders the survivors topmost first and caps the
// list at MaxFingers.
func dedupeTips(points []image.Point, minGap float64) []image.Point {
	var kept []image.Point
	for _, pt := range points {
		if isFarFromAll(pt, kept, minGap) {
			kept = append(kept, pt)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Y < kept[j].Y
	})

	if len(kept) > MaxFingers {
		kept = kept[:MaxFingers]
	}
	return kept
}

func isFarFromAll(pt image.Point, kept []image.Point, minGap float64) bool {
	for _, k := range kept {
		if r2.Norm(r2.Sub(vec(pt), vec(k))) <= minGap {
			return false
		}
	}
	return true
}

// reconcileCount merges the tip-based and valley-based finger estimates.
// A lone raised finger leaves no valley, so with zero valleys the tip count
// is used directly. Otherwise valleys+1 is taken, raised to the tip count
// and capped at MaxFingers.
func reconcileCount(tips, valleys int) int {
	if valleys == 0 && tips > 0 {
		return tips
	}
	return min(max(tips, valleys+1), MaxFingers)
}

func vec(p image.Point) r2.Vec {
	return r2.Vec{X: float64(p.X), Y: float64(p.Y)}
}
