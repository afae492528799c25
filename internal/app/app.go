// Package app runs the live hand-pose loop: it reads frames from a source,
// classifies them, publishes annotated snapshots and records gesture
// changes to the store.
package app

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/vision"
)

// Config holds configuration options for the application.
type Config struct {
	Store *store.Store

	// Camera overrides the frame source. When nil, VideoPath selects a
	// file and otherwise CameraID selects a device.
	Camera    capture.Camera
	CameraID  int
	VideoPath string

	Params vision.Params
	// Mirror flips every frame horizontally before analysis.
	Mirror bool
	// FPS is the loop rate; zero keeps the source default.
	FPS int
	// IdleFPS, when positive, is the rate used once nothing has moved for
	// IdleAfter. Motion restores FPS.
	IdleFPS       int
	IdleAfter     time.Duration
	MotionPercent float64
	// JPEGQuality for published snapshots; zero uses DefaultJPEGQuality.
	JPEGQuality int
}

// App drives the capture-classify-publish loop.
type App struct {
	config   Config
	camera   capture.Camera
	analyzer *vision.Analyzer
	source   string

	enabled bool
	mu      sync.RWMutex
	stopCh  chan struct{}
	done    chan struct{}

	session     *store.Session
	seq         uint64
	lastGesture *vision.Gesture

	snapMu      sync.RWMutex
	latest      *Snapshot
	subscribers []func(Snapshot)
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	cam := config.Camera
	source := "custom"
	switch {
	case cam != nil:
	case config.VideoPath != "":
		cam = capture.NewVideoFile(config.VideoPath)
		source = "file:" + config.VideoPath
	default:
		cam = capture.NewCamera(config.CameraID)
		source = fmt.Sprintf("camera:%d", config.CameraID)
	}

	if config.FPS > 0 {
		cam.SetFPS(config.FPS)
	}
	if config.JPEGQuality <= 0 {
		config.JPEGQuality = DefaultJPEGQuality
	}
	if config.IdleAfter <= 0 {
		config.IdleAfter = DefaultIdleAfter
	}

	return &App{
		config:   config,
		camera:   cam,
		analyzer: vision.NewAnalyzer(config.Params),
		source:   source,
		enabled:  true,
	}
}

// SetEnabled pauses or resumes classification without closing the source.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether classification is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Start opens the source, begins a session when a store is configured and
// launches the loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open source %s: %w", a.source, err)
	}

	if a.config.Store != nil {
		sess := &store.Session{Source: a.source}
		if err := a.config.Store.Sessions().Create(sess); err != nil {
			a.camera.Close()
			return fmt.Errorf("create session: %w", err)
		}
		a.session = sess
	}

	a.seq = 0
	a.lastGesture = nil
	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.runPipeline(a.stopCh, a.done)

	log.Printf("Classification loop started on %s", a.source)
	return nil
}

// Stop halts the loop, waits for it to exit and releases the source.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh = nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}

	close(stopCh)
	<-done

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing source: %v", err)
	}

	if a.session != nil {
		if err := a.config.Store.Sessions().End(a.session.ID, time.Now()); err != nil {
			log.Printf("Error ending session %s: %v", a.session.ID, err)
		}
	}

	log.Println("Classification loop stopped")
}

// Done is closed when the loop exits, either through Stop or because a
// finite source ran out of frames. It is nil before the first Start.
func (a *App) Done() <-chan struct{} {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.done
}

// Latest returns the most recent snapshot.
func (a *App) Latest() (Snapshot, bool) {
	a.snapMu.RLock()
	defer a.snapMu.RUnlock()
	if a.latest == nil {
		return Snapshot{}, false
	}
	return *a.latest, true
}

// Subscribe registers fn to receive every published snapshot. Callbacks run
// on the loop goroutine and must not block.
func (a *App) Subscribe(fn func(Snapshot)) {
	a.snapMu.Lock()
	defer a.snapMu.Unlock()
	a.subscribers = append(a.subscribers, fn)
}

// Session returns the session being recorded, or nil without a store.
func (a *App) Session() *store.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session
}

// Source returns a label describing the frame source.
func (a *App) Source() string {
	return a.source
}
