package vision

import "image"

// Default thresholds. They are tuned for a 640x480 webcam frame with the hand
// roughly 30-60cm from the lens; other resolutions need retuning.
const (
	// DefaultMinHandArea is the smallest contour area (px²) accepted as a hand.
	DefaultMinHandArea = 9000.0
	// DefaultMinDefectDepth is the minimum convexity defect depth, in OpenCV
	// fixed-point units (pixel distance × 256).
	DefaultMinDefectDepth = 15000.0
	// DefaultMaxValleyAngle is the widest angle (degrees) at a defect's deepest
	// point that still counts as a gap between two fingers.
	DefaultMaxValleyAngle = 95.0
	// DefaultMinTipGap is the minimum distance (px) between two kept fingertips.
	DefaultMinTipGap = 25.0
	// DefectNoiseDepth is the deepest defect (two pixels, fixed-point) still
	// attributed to rasterization rather than a real concavity.
	DefectNoiseDepth = 2 * 256.0
	// MaxFingers caps both the tip list and the reported finger count.
	MaxFingers = 5

	// DefaultThumbMinRise is the minimum height (px) of the thumb tip above the centroid.
	DefaultThumbMinRise = 40.0
	// DefaultThumbVerticality is the dy/|dx| factor the thumb tip must exceed.
	DefaultThumbVerticality = 0.5
	// DefaultThumbMinElongation is the minimum long/short side ratio of the
	// hand's rotated bounding box for a thumbs-up.
	DefaultThumbMinElongation = 1.35
)

// Kernel sizes for the segmentation stage.
const (
	PreBlurSize  = 5
	MorphSize    = 5
	PostBlurSize = 7
	ErodeIters   = 1
	DilateIters  = 2
)

// ColorRange is an inclusive per-channel range in a 3-channel color space.
type ColorRange struct {
	Lower [3]float64
	Upper [3]float64
}

// Params holds every tunable threshold of the analysis pipeline.
type Params struct {
	// Skin color ranges (OpenCV 8-bit conventions: H in [0,180]).
	HSV   ColorRange
	YCrCb ColorRange

	PreBlur  image.Point
	Morph    image.Point
	PostBlur image.Point

	MinHandArea    float64
	MinDefectDepth float64
	MaxValleyAngle float64
	MinTipGap      float64

	ThumbMinRise       float64
	ThumbVerticality   float64
	ThumbMinElongation float64
}

// DefaultParams returns the stock skin ranges and geometry thresholds.
func DefaultParams() Params {
	return Params{
		HSV: ColorRange{
			Lower: [3]float64{0, 25, 90},
			Upper: [3]float64{25, 255, 255},
		},
		YCrCb: ColorRange{
			Lower: [3]float64{0, 130, 90},
			Upper: [3]float64{255, 180, 140},
		},

		PreBlur:  image.Pt(PreBlurSize, PreBlurSize),
		Morph:    image.Pt(MorphSize, MorphSize),
		PostBlur: image.Pt(PostBlurSize, PostBlurSize),

		MinHandArea:    DefaultMinHandArea,
		MinDefectDepth: DefaultMinDefectDepth,
		MaxValleyAngle: DefaultMaxValleyAngle,
		MinTipGap:      DefaultMinTipGap,

		ThumbMinRise:       DefaultThumbMinRise,
		ThumbVerticality:   DefaultThumbVerticality,
		ThumbMinElongation: DefaultThumbMinElongation,
	}
}

// WithMinHandArea returns a copy of p with a different area threshold.
func (p Params) WithMinHandArea(area float64) Params {
	p.MinHandArea = area
	return p
}

// WithDefectLimits returns a copy of p with custom valley angle and depth limits.
func (p Params) WithDefectLimits(maxAngle, minDepth float64) Params {
	p.MaxValleyAngle = maxAngle
	p.MinDefectDepth = minDepth
	return p
}

// WithMinTipGap returns a copy of p with a different fingertip merge distance.
func (p Params) WithMinTipGap(gap float64) Params {
	p.MinTipGap = gap
	return p
}

// WithHSV returns a copy of p with a custom HSV skin range.
func (p Params) WithHSV(hMin, hMax, sMin, sMax, vMin, vMax float64) Params {
	p.HSV = ColorRange{
		Lower: [3]float64{hMin, sMin, vMin},
		Upper: [3]float64{hMax, sMax, vMax},
	}
	return p
}

// WithYCrCb returns a copy of p with a custom YCrCb skin range.
func (p Params) WithYCrCb(yMin, yMax, crMin, crMax, cbMin, cbMax float64) Params {
	p.YCrCb = ColorRange{
		Lower: [3]float64{yMin, crMin, cbMin},
		Upper: [3]float64{yMax, crMax, cbMax},
	}
	return p
}
