// Package vision implements the per-frame hand analysis pipeline: skin
// segmentation, hand contour selection, convexity-defect finger counting and
// geometric gesture classification. Every stage is a pure function of its
// input; nothing is carried between frames.
package vision

import (
	"gocv.io/x/gocv"
)

// Segment returns a single-channel mask of probable skin pixels in frame.
// The caller is responsible for closing the returned Mat.
//
// Algorithm:
// 1. Gaussian blur (5x5) to suppress sensor noise
// 2. Threshold the HSV and YCrCb conversions against fixed skin ranges
// 3. AND the two masks so a pixel must satisfy both color models
// 4. Erode once, dilate twice (5x5 rect) to close gaps and regrow the boundary
// 5. Gaussian blur (7x7) to smooth jagged edges before contour extraction
func Segment(frame gocv.Mat, p Params) gocv.Mat {
	mask := gocv.NewMat()
	if frame.Empty() || frame.Channels() != 3 {
		return mask
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(frame, &blurred, p.PreBlur, 0, 0, gocv.BorderDefault)

	hsvMask := rangeMask(blurred, gocv.ColorBGRToHSV, p.HSV)
	defer hsvMask.Close()

	ycrcbMask := rangeMask(blurred, gocv.ColorBGRToYCrCb, p.YCrCb)
	defer ycrcbMask.Close()

	gocv.BitwiseAnd(hsvMask, ycrcbMask, &mask)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, p.Morph)
	defer kernel.Close()

	for i := 0; i < ErodeIters; i++ {
		gocv.Erode(mask, &mask, kernel)
	}
	for i := 0; i < DilateIters; i++ {
		gocv.Dilate(mask, &mask, kernel)
	}

	gocv.GaussianBlur(mask, &mask, p.PostBlur, 0, 0, gocv.BorderDefault)

	return mask
}

// rangeMask converts src with code and keeps pixels inside r.
func rangeMask(src gocv.Mat, code gocv.ColorConversionCode, r ColorRange) gocv.Mat {
	converted := gocv.NewMat()
	defer converted.Close()
	gocv.CvtColor(src, &converted, code)

	lower := gocv.NewScalar(r.Lower[0], r.Lower[1], r.Lower[2], 0)
	upper := gocv.NewScalar(r.Upper[0], r.Upper[1], r.Upper[2], 0)

	out := gocv.NewMat()
	gocv.InRangeWithScalar(converted, lower, upper, &out)
	return out
}
