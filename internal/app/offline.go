package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/vision"
)

// FrameResult is the classification of one frame of a finite source.
type FrameResult struct {
	Index  int           `json:"index"`
	Result vision.Result `json:"result"`
}

// Summary aggregates the results of an offline run.
type Summary struct {
	Source   string         `json:"source"`
	Frames   int            `json:"frames"`
	Counts   map[string]int `json:"counts"`
	Dominant string         `json:"dominant"`
	Session  string         `json:"session,omitempty"`
}

// AnalyzeSource classifies every frame of cam on up to workers goroutines
// and returns the results in frame order. cam must already be open; it is
// read until ErrEndOfStream. mirror flips frames before analysis.
func AnalyzeSource(ctx context.Context, cam capture.Camera, a *vision.Analyzer, workers int, mirror bool) ([]FrameResult, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var (
		mu      sync.Mutex
		results []FrameResult
	)

	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			g.Wait()
			return nil, err
		}

		frame, err := cam.ReadFrame()
		if errors.Is(err, capture.ErrEndOfStream) {
			break
		}
		if err != nil {
			g.Wait()
			return nil, fmt.Errorf("read frame %d: %w", i, err)
		}

		idx := i
		g.Go(func() error {
			defer frame.Close()
			if mirror {
				capture.Mirror(frame)
			}
			res := a.Analyze(*frame)

			mu.Lock()
			results = append(results, FrameResult{Index: idx, Result: res})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	return results, nil
}

// Summarize counts how many frames showed each gesture label.
func Summarize(source string, results []FrameResult) Summary {
	s := Summary{
		Source: source,
		Frames: len(results),
		Counts: make(map[string]int),
	}

	for _, r := range results {
		s.Counts[r.Result.Gesture.String()]++
	}

	best := 0
	for label, n := range s.Counts {
		if n > best || (n == best && label < s.Dominant) {
			s.Dominant, best = label, n
		}
	}

	return s
}

// Changes returns one detection per run of identical gestures, keyed to the
// frame where the run starts.
func Changes(sessionID string, results []FrameResult) []*store.Detection {
	var out []*store.Detection
	var last *vision.Gesture
	for _, r := range results {
		if last != nil && *last == r.Result.Gesture {
			continue
		}
		g := r.Result.Gesture
		last = &g
		out = append(out, detectionFor(sessionID, r.Index, r.Result))
	}
	return out
}

// RecordResults stores an offline run as a finished session with its
// gesture changes.
func RecordResults(st *store.Store, source string, started time.Time, results []FrameResult) (*store.Session, error) {
	sess := &store.Session{Source: source, StartedAt: started}
	if err := st.Sessions().Create(sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if err := st.Detections().CreateBatch(Changes(sess.ID, results)); err != nil {
		return nil, fmt.Errorf("record detections: %w", err)
	}

	end := time.Now()
	if err := st.Sessions().End(sess.ID, end); err != nil {
		return nil, fmt.Errorf("end session: %w", err)
	}
	sess.EndedAt = &end

	return sess, nil
}
