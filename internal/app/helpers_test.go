package app

import (
	"image"
	"image/color"
	"math"
	"testing"

	"gocv.io/x/gocv"
)

var skin = color.RGBA{R: 210, G: 150, B: 120}

// blackFrame returns an all-black 640x480 BGR frame.
func blackFrame(t *testing.T) *gocv.Mat {
	t.Helper()
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 480, 640, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { m.Close() })
	return &m
}

// handFrame returns a black frame with a five-spike skin-colored star, which
// the analyzer reads as an open hand.
func handFrame(t *testing.T) *gocv.Mat {
	t.Helper()
	m := blackFrame(t)

	const n = 5
	pts := make([]image.Point, 0, 2*n)
	for i := 0; i < 2*n; i++ {
		r := 200.0
		if i%2 == 1 {
			r = 40
		}
		theta := -math.Pi/2 + float64(i)*math.Pi/n
		pts = append(pts, image.Pt(
			int(math.Round(320+r*math.Cos(theta))),
			int(math.Round(240+r*math.Sin(theta))),
		))
	}

	pv := gocv.NewPointsVectorFromPoints([][]image.Point{pts})
	defer pv.Close()
	gocv.FillPoly(m, pv, skin)

	return m
}
