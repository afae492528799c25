package server

import (
	"fmt"
	"net/http"
	"time"
)

// StreamHandler serves the annotated preview as MJPEG.
type StreamHandler struct {
	feed     Feed
	interval time.Duration
}

// NewStreamHandler creates a new StreamHandler over feed.
func NewStreamHandler(feed Feed) *StreamHandler {
	return &StreamHandler{feed: feed, interval: 33 * time.Millisecond}
}

// ServeHTTP streams each new snapshot to the client until it disconnects.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var lastSeq uint64
	sent := false
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		snap, ok := h.feed.Latest()
		if !ok || len(snap.JPEG) == 0 || (sent && snap.Seq == lastSeq) {
			continue
		}

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(snap.JPEG))
		if _, err := w.Write(snap.JPEG); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		lastSeq, sent = snap.Seq, true
	}
}
