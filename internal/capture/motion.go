package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Motion meter constants
const (
	// MotionBlurSize is the Gaussian kernel applied before differencing.
	MotionBlurSize = 21
	// MotionDiffThreshold is the per-pixel intensity change that counts as motion.
	MotionDiffThreshold = 25
	// DefaultMotionPercent is the share of changed pixels that marks a frame active.
	DefaultMotionPercent = 1.0
)

// MotionMeter compares each frame with the previous one and reports the
// percentage of pixels that changed. The live loop uses it to drop to an
// idle frame rate when nothing in view is moving.
type MotionMeter struct {
	percent float64
	prev    gocv.Mat
	primed  bool
	mu      sync.Mutex
}

// NewMotionMeter returns a meter that flags frames where more than percent
// of pixels changed. Non-positive values use DefaultMotionPercent.
func NewMotionMeter(percent float64) *MotionMeter {
	if percent <= 0 {
		percent = DefaultMotionPercent
	}
	return &MotionMeter{
		percent: percent,
		prev:    gocv.NewMat(),
	}
}

// Measure returns whether frame moved relative to the previous call and the
// changed-pixel percentage. The first frame only primes the meter. A frame
// whose size differs from the previous one re-primes it.
func (m *MotionMeter) Measure(frame gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	gocv.GaussianBlur(gray, &blurred, image.Pt(MotionBlurSize, MotionBlurSize), 0, 0, gocv.BorderDefault)

	if !m.primed || blurred.Rows() != m.prev.Rows() || blurred.Cols() != m.prev.Cols() {
		m.swap(blurred)
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prev, &diff)
	gocv.Threshold(diff, &diff, MotionDiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols()) * 100
	m.swap(blurred)

	return changed > m.percent, changed
}

// swap makes next the reference frame, taking ownership of it.
func (m *MotionMeter) swap(next gocv.Mat) {
	m.prev.Close()
	m.prev = next
	m.primed = true
}

// Reset forgets the reference frame.
func (m *MotionMeter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prev.Close()
	m.prev = gocv.NewMat()
	m.primed = false
}

// Close releases the reference frame.
func (m *MotionMeter) Close() {
	m.Reset()
}
