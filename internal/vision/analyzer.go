package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// Result is the full per-frame output handed to display collaborators.
type Result struct {
	Gesture     Gesture       `json:"gesture"`
	Fingers     int           `json:"fingers"`
	Tips        []image.Point `json:"tips"`
	Defects     []Defect      `json:"defects"`
	HandArea    float64       `json:"hand_area"`
	Annotations []Annotation  `json:"annotations"`
}

// Analyzer runs the four pipeline stages on a frame. It holds only
// immutable parameters and may be shared between goroutines.
type Analyzer struct {
	params Params
}

// NewAnalyzer creates an Analyzer with the given parameters.
func NewAnalyzer(p Params) *Analyzer {
	return &Analyzer{params: p}
}

// Analyze classifies the hand pose in a BGR frame. The frame is not
// modified. An empty frame, or one without a qualifying skin region,
// yields NoHand.
func (a *Analyzer) Analyze(frame gocv.Mat) Result {
	mask := Segment(frame, a.params)
	defer mask.Close()

	return a.AnalyzeMask(mask)
}

// AnalyzeMask runs contour selection, finger counting and classification on
// a precomputed skin mask.
func (a *Analyzer) AnalyzeMask(mask gocv.Mat) Result {
	hand, ok := SelectHand(mask, a.params)
	if !ok {
		return a.AnalyzeContour(nil)
	}
	return a.AnalyzeContour(hand)
}

// AnalyzeContour counts fingers on c and classifies the gesture. A nil
// contour yields NoHand.
func (a *Analyzer) AnalyzeContour(c Contour) Result {
	var fc FingerCount
	if c != nil {
		fc = CountFingers(c, a.params)
	}
	g := Classify(fc.Count, c, fc.Tips, a.params)

	return Result{
		Gesture:     g,
		Fingers:     fc.Count,
		Tips:        fc.Tips,
		Defects:     fc.Defects,
		HandArea:    c.Area(),
		Annotations: annotate(c, fc, g),
	}
}
