package vision

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"
)

// Kind enumerates the gesture variants.
type Kind int

const (
	NoHand Kind = iota
	Fist
	OneFinger
	ThumbsUp
	Victory
	NFingersKind
	OpenPalm
)

// Gesture is the classification of one frame. Fingers is only meaningful
// for NFingersKind; use NFingers to build that variant.
type Gesture struct {
	Kind    Kind
	Fingers int
}

// NFingers returns the gesture for n raised fingers that has no dedicated name.
func NFingers(n int) Gesture {
	return Gesture{Kind: NFingersKind, Fingers: n}
}

// String returns the display label of g.
func (g Gesture) String() string {
	switch g.Kind {
	case NoHand:
		return "No Hand Detected"
	case Fist:
		return "Fist"
	case OneFinger:
		return "One Finger"
	case ThumbsUp:
		return "Thumbs Up"
	case Victory:
		return "Victory"
	case OpenPalm:
		return "Open Palm"
	case NFingersKind:
		return fmt.Sprintf("%d Fingers", g.Fingers)
	default:
		return fmt.Sprintf("Gesture(%d)", int(g.Kind))
	}
}

// MarshalText encodes g as its display label.
func (g Gesture) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// Classify maps a finger count and hand geometry to a gesture. A nil
// contour means no hand was found.
func Classify(fingers int, c Contour, tips []image.Point, p Params) Gesture {
	if c == nil {
		return Gesture{Kind: NoHand}
	}

	switch fingers {
	case 0:
		return Gesture{Kind: Fist}
	case 1:
		if thumbIsUp(c, tips, p) {
			return Gesture{Kind: ThumbsUp}
		}
		return Gesture{Kind: OneFinger}
	case 2:
		return Gesture{Kind: Victory}
	case 5:
		return Gesture{Kind: OpenPalm}
	default:
		return NFingers(fingers)
	}
}

// thumbIsUp reports whether the highest tip sits well above the hand's
// centroid, points more up than sideways, and the silhouette is elongated.
// A raised thumb on a closed fist makes a tall narrow outline.
func thumbIsUp(c Contour, tips []image.Point, p Params) bool {
	if len(tips) == 0 {
		return false
	}

	center, ok := centroid(c)
	if !ok {
		return false
	}

	// Image Y grows downward, so rise is centroid.Y - tip.Y.
	top := tips[0]
	for _, t := range tips[1:] {
		if center.Y-float64(t.Y) > center.Y-float64(top.Y) {
			top = t
		}
	}
	offset := r2.Sub(vec(top), center)
	dx, dy := offset.X, -offset.Y

	ratio, ok := elongation(c)
	if !ok {
		return false
	}

	raised := dy > p.ThumbVerticality*math.Abs(dx) && dy > p.ThumbMinRise
	return raised && ratio > p.ThumbMinElongation
}

// centroid returns the area-weighted center of c from its spatial moments
// (m10/m00, m01/m00). It reports false for zero area.
func centroid(c Contour) (r2.Vec, bool) {
	if len(c) < 3 {
		return r2.Vec{}, false
	}

	pv := c.pointVector()
	defer pv.Close()
	m := gocv.NewMatFromPointVector(pv, true)
	defer m.Close()

	moments := gocv.Moments(m, false)
	m00 := moments["m00"]
	if m00 == 0 {
		return r2.Vec{}, false
	}

	return r2.Vec{X: moments["m10"] / m00, Y: moments["m01"] / m00}, true
}

// elongation returns long side / short side of the minimum-area rotated
// rectangle around c. It reports false when either side is zero.
func elongation(c Contour) (float64, bool) {
	pv := c.pointVector()
	defer pv.Close()

	rect := gocv.MinAreaRect2f(pv)
	w, h := float64(rect.Width), float64(rect.Height)
	if w <= 0 || h <= 0 {
		return 0, false
	}
	return math.Max(w, h) / math.Min(w, h), true
}
