package vision

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// skinBGR satisfies both skin ranges: HSV ≈ (10, 109, 210), YCrCb ≈ (164, 160, 103).
var skinBGR = color.RGBA{R: 210, G: 150, B: 120}

const (
	frameRows = 480
	frameCols = 640
)

// star builds a closed star polygon centred on (cx, cy) with n spikes, the
// first spike pointing straight up.
func star(cx, cy, outer, inner float64, n int) Contour {
	pts := make(Contour, 0, 2*n)
	step := math.Pi / float64(n)
	for i := 0; i < 2*n; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		theta := -math.Pi/2 + float64(i)*step
		pts = append(pts, image.Pt(
			int(math.Round(cx+r*math.Cos(theta))),
			int(math.Round(cy+r*math.Sin(theta))),
		))
	}
	return pts
}

// rect builds an axis-aligned rectangle contour.
func rect(x, y, w, h int) Contour {
	return Contour{
		image.Pt(x, y),
		image.Pt(x+w, y),
		image.Pt(x+w, y+h),
		image.Pt(x, y+h),
	}
}

// tilted builds a rectangle rotated 45 degrees with its top corner at (x, y)
// and side vectors (n, n) and (-m, m).
func tilted(x, y, n, m int) Contour {
	return Contour{
		image.Pt(x, y),
		image.Pt(x+n, y+n),
		image.Pt(x+n-m, y+n+m),
		image.Pt(x-m, y+m),
	}
}

// blankMask returns an all-zero single-channel mask.
func blankMask() gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), frameRows, frameCols, gocv.MatTypeCV8U)
}

// blankFrame returns an all-black BGR frame.
func blankFrame() gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), frameRows, frameCols, gocv.MatTypeCV8UC3)
}

// diskMask returns a mask with a single filled disk.
func diskMask(center image.Point, radius int) gocv.Mat {
	m := blankMask()
	gocv.Circle(&m, center, radius, color.RGBA{R: 255, G: 255, B: 255}, -1)
	return m
}

// fillContour paints c onto img with col.
func fillContour(img *gocv.Mat, c Contour, col color.RGBA) {
	pts := gocv.NewPointsVectorFromPoints([][]image.Point{c})
	defer pts.Close()
	gocv.FillPoly(img, pts, col)
}
