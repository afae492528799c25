package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// Contour is an ordered, closed boundary of a foreground region.
type Contour []image.Point

// Area returns the enclosed area in px² (0 for fewer than 3 points).
func (c Contour) Area() float64 {
	if len(c) < 3 {
		return 0
	}
	pv := c.pointVector()
	defer pv.Close()
	return gocv.ContourArea(pv)
}

// pointVector copies c into an OpenCV point vector. The caller must close it.
func (c Contour) pointVector() gocv.PointVector {
	return gocv.NewPointVectorFromPoints(c)
}

// SelectHand extracts the external contours of mask and returns the one with
// the largest area, provided that area reaches p.MinHandArea. The largest
// skin region is assumed to be the hand; a bigger skin-colored region (face,
// bare arm) wins over it.
func SelectHand(mask gocv.Mat, p Params) (Contour, bool) {
	if mask.Empty() || gocv.CountNonZero(mask) == 0 {
		return nil, false
	}

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	bestIdx := -1
	bestArea := 0.0
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if area > bestArea {
			bestArea = area
			bestIdx = i
		}
	}

	if bestIdx < 0 || bestArea < p.MinHandArea {
		return nil, false
	}

	return Contour(contours.At(bestIdx).ToPoints()), true
}
