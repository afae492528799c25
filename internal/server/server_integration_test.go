package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/mudra/internal/store"
)

func TestAPI_SessionWorkflow(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	sess := &store.Session{Source: "file:clip.avi"}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	for i, g := range []string{"No Hand Detected", "Victory", "No Hand Detected"} {
		if err := s.Detections().Create(&store.Detection{SessionID: sess.ID, FrameIndex: i * 10, Gesture: g}); err != nil {
			t.Fatalf("Detections().Create() error = %v", err)
		}
	}

	srv := New(Config{Store: s})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// 1. List sessions
	resp, err := client.Get(ts.URL + "/api/sessions")
	if err != nil {
		t.Fatalf("GET /api/sessions error = %v", err)
	}
	var listed struct {
		Sessions []struct {
			ID     string `json:"id"`
			Source string `json:"source"`
		} `json:"sessions"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()

	if len(listed.Sessions) != 1 || listed.Sessions[0].ID != sess.ID {
		t.Fatalf("sessions = %+v, want the one created", listed.Sessions)
	}

	// 2. Detections in frame order
	resp, _ = client.Get(ts.URL + "/api/sessions/" + sess.ID + "/detections")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET detections status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var detections struct {
		Detections []struct {
			FrameIndex int    `json:"frame_index"`
			Gesture    string `json:"gesture"`
		} `json:"detections"`
	}
	json.NewDecoder(resp.Body).Decode(&detections)
	resp.Body.Close()

	if len(detections.Detections) != 3 || detections.Detections[1].Gesture != "Victory" {
		t.Errorf("detections = %+v", detections.Detections)
	}

	// 3. Summary
	resp, _ = client.Get(ts.URL + "/api/sessions/" + sess.ID + "/summary")
	var summary struct {
		Counts  map[string]int `json:"counts"`
		Changes int            `json:"changes"`
	}
	json.NewDecoder(resp.Body).Decode(&summary)
	resp.Body.Close()

	if summary.Changes != 3 || summary.Counts["No Hand Detected"] != 2 {
		t.Errorf("summary = %+v", summary)
	}

	// 4. Delete
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/sessions/"+sess.ID, nil)
	resp, _ = client.Do(req)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	resp.Body.Close()

	// 5. Verify deleted
	resp, _ = client.Get(ts.URL + "/api/sessions/" + sess.ID)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("GET after delete status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	resp.Body.Close()
}

func TestAPI_HealthCheck(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	json.NewDecoder(resp.Body).Decode(&health)

	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
}
