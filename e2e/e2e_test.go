package e2e

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/vision"
)

// frames returns a black frame and one with a spread-hand silhouette.
func frames(t *testing.T) (black, hand *gocv.Mat) {
	t.Helper()

	b := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 480, 640, gocv.MatTypeCV8UC3)
	h := b.Clone()
	t.Cleanup(func() {
		b.Close()
		h.Close()
	})

	pts := make([]image.Point, 0, 10)
	for i := 0; i < 10; i++ {
		r := 200.0
		if i%2 == 1 {
			r = 40
		}
		theta := -math.Pi/2 + float64(i)*math.Pi/5
		pts = append(pts, image.Pt(int(math.Round(320+r*math.Cos(theta))), int(math.Round(240+r*math.Sin(theta)))))
	}
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{pts})
	defer pv.Close()
	gocv.FillPoly(&h, pv, color.RGBA{R: 210, G: 150, B: 120})

	return &b, &h
}

func TestE2E_LiveSessionWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	params, err := config.LoadParams(filepath.Join("..", config.DefaultConfigPath))
	if err != nil {
		t.Fatalf("LoadParams() error = %v", err)
	}

	black, hand := frames(t)
	cam := capture.NewMockCamera([]*gocv.Mat{black, black, hand, hand, hand, black}, false)

	application := app.New(app.Config{Store: s, Camera: cam, Params: params, FPS: 100})

	srv := server.New(server.Config{Store: s, Feed: application, Params: &params})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	t.Run("RunToEndOfStream", func(t *testing.T) {
		if err := application.Start(); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		select {
		case <-application.Done():
		case <-time.After(10 * time.Second):
			t.Fatal("loop did not finish")
		}
		application.Stop()
	})

	t.Run("HealthShowsLastGesture", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("GET /api/health error = %v", err)
		}
		defer resp.Body.Close()

		var health map[string]any
		json.NewDecoder(resp.Body).Decode(&health)
		if health["gesture"] != "No Hand Detected" {
			t.Errorf("gesture = %v, want No Hand Detected", health["gesture"])
		}
		if health["frames"] != float64(6) {
			t.Errorf("frames = %v, want 6", health["frames"])
		}
	})

	t.Run("SessionDetections", func(t *testing.T) {
		id := application.Session().ID

		resp, err := client.Get(ts.URL + "/api/sessions/" + id + "/detections")
		if err != nil {
			t.Fatalf("GET detections error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var body struct {
			Detections []store.Detection `json:"detections"`
		}
		json.NewDecoder(resp.Body).Decode(&body)

		want := []int{0, 2, 5}
		if len(body.Detections) != len(want) {
			t.Fatalf("detections = %+v, want changes at frames %v", body.Detections, want)
		}
		for i, d := range body.Detections {
			if d.FrameIndex != want[i] {
				t.Errorf("detection %d at frame %d, want %d", i, d.FrameIndex, want[i])
			}
		}
		if body.Detections[1].Fingers < 4 {
			t.Errorf("hand detection has %d fingers, want at least 4", body.Detections[1].Fingers)
		}
	})

	t.Run("SessionEnded", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/sessions/" + application.Session().ID)
		if err != nil {
			t.Fatalf("GET session error = %v", err)
		}
		defer resp.Body.Close()

		var sess struct {
			EndedAt string `json:"ended_at"`
		}
		json.NewDecoder(resp.Body).Decode(&sess)
		if sess.EndedAt == "" {
			t.Error("session has no ended_at after Stop")
		}
	})
}

func TestE2E_OfflineAnalysis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	s, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	black, hand := frames(t)
	cam := capture.NewMockCamera([]*gocv.Mat{hand, hand, black, hand}, false)
	cam.Open()
	defer cam.Close()

	started := time.Now()
	results, err := app.AnalyzeSource(context.Background(), cam, vision.NewAnalyzer(vision.DefaultParams()), 4, true)
	if err != nil {
		t.Fatalf("AnalyzeSource() error = %v", err)
	}

	summary := app.Summarize("mock", results)
	if summary.Frames != 4 || summary.Counts["No Hand Detected"] != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.Dominant == "No Hand Detected" {
		t.Errorf("dominant = %q, want the hand gesture", summary.Dominant)
	}

	sess, err := app.RecordResults(s, "mock", started, results)
	if err != nil {
		t.Fatalf("RecordResults() error = %v", err)
	}

	counts, err := s.Detections().CountByGesture(sess.ID)
	if err != nil {
		t.Fatalf("CountByGesture() error = %v", err)
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	if total != 3 {
		t.Errorf("recorded %d changes, want 3", total)
	}
}
