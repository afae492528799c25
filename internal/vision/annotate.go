package vision

import (
	"fmt"
	"image"
	"image/color"
	"slices"

	"gocv.io/x/gocv"
)

// AnnotationKind identifies what an Annotation draws.
type AnnotationKind string

const (
	AnnotateContour AnnotationKind = "contour"
	AnnotateHull    AnnotationKind = "hull"
	AnnotateDefect  AnnotationKind = "defect"
	AnnotateTip     AnnotationKind = "tip"
	AnnotateText    AnnotationKind = "text"
)

// Overlay colors.
var (
	ContourColor = color.RGBA{G: 255}
	HullColor    = color.RGBA{B: 255}
	DefectColor  = color.RGBA{R: 255}
	TipColor     = color.RGBA{R: 255, G: 255}
	GestureColor = color.RGBA{G: 255}
	FingersColor = color.RGBA{B: 255}
)

// Annotation is an immutable drawing instruction produced alongside a Result.
// Points holds the polyline for outlines, a single point for markers, and
// the text origin for labels.
type Annotation struct {
	Kind      AnnotationKind `json:"kind"`
	Points    []image.Point  `json:"points"`
	Text      string         `json:"text,omitempty"`
	Color     color.RGBA     `json:"-"`
	Thickness int            `json:"-"`
}

// annotate builds the overlay for one analyzed frame.
func annotate(c Contour, fc FingerCount, g Gesture) []Annotation {
	var out []Annotation

	if c != nil {
		out = append(out, Annotation{Kind: AnnotateContour, Points: slices.Clone(c), Color: ContourColor, Thickness: 2})
		if len(fc.Hull) > 0 {
			out = append(out, Annotation{Kind: AnnotateHull, Points: slices.Clone(fc.Hull), Color: HullColor, Thickness: 2})
		}
	}

	for _, d := range fc.Defects {
		out = append(out, Annotation{
			Kind:      AnnotateDefect,
			Points:    []image.Point{d.Start, d.Far, d.End},
			Color:     DefectColor,
			Thickness: 2,
		})
	}

	for _, t := range fc.Tips {
		out = append(out, Annotation{Kind: AnnotateTip, Points: []image.Point{t}, Color: TipColor, Thickness: -1})
	}

	out = append(out,
		Annotation{
			Kind:      AnnotateText,
			Points:    []image.Point{image.Pt(10, 30)},
			Text:      "Gesture: " + g.String(),
			Color:     GestureColor,
			Thickness: 2,
		},
		Annotation{
			Kind:      AnnotateText,
			Points:    []image.Point{image.Pt(10, 70)},
			Text:      fmt.Sprintf("Fingers: %d", fc.Count),
			Color:     FingersColor,
			Thickness: 2,
		},
	)

	return out
}

// Render draws annotations onto a copy of frame and returns it. frame is
// left untouched; the caller must close the result.
func Render(frame gocv.Mat, annotations []Annotation) gocv.Mat {
	out := frame.Clone()
	if out.Empty() {
		return out
	}

	for _, a := range annotations {
		if len(a.Points) == 0 {
			continue
		}
		switch a.Kind {
		case AnnotateContour, AnnotateHull:
			pts := gocv.NewPointsVectorFromPoints([][]image.Point{a.Points})
			gocv.Polylines(&out, pts, true, a.Color, a.Thickness)
			pts.Close()
		case AnnotateDefect:
			for i := 0; i+1 < len(a.Points); i++ {
				gocv.Line(&out, a.Points[i], a.Points[i+1], a.Color, a.Thickness)
			}
			if len(a.Points) == 3 {
				gocv.Circle(&out, a.Points[1], 5, a.Color, -1)
			}
		case AnnotateTip:
			gocv.Circle(&out, a.Points[0], 8, a.Color, a.Thickness)
		case AnnotateText:
			gocv.PutText(&out, a.Text, a.Points[0], gocv.FontHersheySimplex, 1, a.Color, a.Thickness)
		}
	}

	return out
}
