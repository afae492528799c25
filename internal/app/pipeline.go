package app

import (
	"errors"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/vision"
)

const (
	// DefaultJPEGQuality is the encoder quality for published snapshots.
	DefaultJPEGQuality = 80
	// DefaultIdleAfter is how long the view must be still before the loop
	// drops to IdleFPS.
	DefaultIdleAfter = 2 * time.Second
)

// Snapshot is one classified frame as published to display collaborators.
type Snapshot struct {
	Seq    uint64        `json:"seq"`
	Time   time.Time     `json:"time"`
	Result vision.Result `json:"result"`
	// JPEG is the annotated frame.
	JPEG []byte `json:"-"`
}

// runPipeline reads one frame per tick until stopCh closes or a finite
// source ends. With IdleFPS set it switches between the active and idle
// rates based on motion; every frame read is still classified.
func (a *App) runPipeline(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	activeFPS := max(a.camera.FPS(), 1)
	ticker := time.NewTicker(interval(activeFPS))
	defer ticker.Stop()

	var meter *capture.MotionMeter
	if a.config.IdleFPS > 0 {
		meter = capture.NewMotionMeter(a.config.MotionPercent)
		defer meter.Close()
	}
	idle := false
	lastMotion := time.Now()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.camera.ReadFrame()
			if errors.Is(err, capture.ErrEndOfStream) {
				log.Printf("Source %s ended after %d frames", a.source, a.seq)
				return
			}
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			if meter != nil {
				moved, _ := meter.Measure(*frame)
				switch {
				case moved:
					lastMotion = time.Now()
					if idle {
						idle = false
						ticker.Reset(interval(activeFPS))
						log.Printf("Motion detected, switched to %d FPS", activeFPS)
					}
				case !idle && time.Since(lastMotion) > a.config.IdleAfter:
					idle = true
					ticker.Reset(interval(a.config.IdleFPS))
					log.Printf("No motion for %s, switched to %d FPS", a.config.IdleAfter, a.config.IdleFPS)
				}
			}

			a.processFrame(frame)
			frame.Close()
		}
	}
}

func interval(fps int) time.Duration {
	return time.Second / time.Duration(fps)
}

// processFrame classifies frame, publishes the annotated snapshot and
// records a detection when the gesture differs from the previous frame.
func (a *App) processFrame(frame *gocv.Mat) Snapshot {
	if a.config.Mirror {
		capture.Mirror(frame)
	}

	res := a.analyzer.Analyze(*frame)
	snap := Snapshot{
		Seq:    a.seq,
		Time:   time.Now(),
		Result: res,
		JPEG:   a.encode(*frame, res),
	}
	a.seq++

	if a.lastGesture == nil || *a.lastGesture != res.Gesture {
		if a.lastGesture != nil {
			log.Printf("Gesture changed: %s -> %s (fingers=%d)", a.lastGesture, res.Gesture, res.Fingers)
		}
		g := res.Gesture
		a.lastGesture = &g
		a.record(snap)
	}

	a.publish(snap)
	return snap
}

func (a *App) encode(frame gocv.Mat, res vision.Result) []byte {
	out := vision.Render(frame, res.Annotations)
	defer out.Close()

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, out, []int{int(gocv.IMWriteJpegQuality), a.config.JPEGQuality})
	if err != nil {
		log.Printf("Error encoding frame: %v", err)
		return nil
	}
	defer buf.Close()

	b := buf.GetBytes()
	jpeg := make([]byte, len(b))
	copy(jpeg, b)
	return jpeg
}

func (a *App) record(snap Snapshot) {
	if a.session == nil {
		return
	}

	d := detectionFor(a.session.ID, int(snap.Seq), snap.Result)
	d.CreatedAt = snap.Time
	if err := a.config.Store.Detections().Create(d); err != nil {
		log.Printf("Error recording detection: %v", err)
	}
}

func (a *App) publish(snap Snapshot) {
	a.snapMu.Lock()
	a.latest = &snap
	subs := a.subscribers
	a.snapMu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func detectionFor(sessionID string, frameIndex int, res vision.Result) *store.Detection {
	return &store.Detection{
		SessionID:  sessionID,
		FrameIndex: frameIndex,
		Gesture:    res.Gesture.String(),
		Fingers:    res.Fingers,
		Tips:       len(res.Tips),
	}
}
