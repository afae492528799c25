package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
	"github.com/ayusman/mudra/internal/vision"
)

type options struct {
	cameraID   int
	videoPath  string
	configPath string
	dbPath     string
	addr       string
	webDir     string
	window     bool
	tray       bool
	mirror     bool
	fps        int
	idleFPS    int
	analyze    bool
	workers    int
}

func parseFlags() options {
	var o options
	flag.IntVar(&o.cameraID, "camera", 0, "camera device ID")
	flag.StringVar(&o.videoPath, "video", "", "read frames from a video file instead of a camera")
	flag.StringVar(&o.configPath, "config", "", "tuning JSON file (see "+config.DefaultConfigPath+")")
	flag.StringVar(&o.dbPath, "db", defaultDBPath(), "session database path; empty disables recording")
	flag.StringVar(&o.addr, "addr", ":8080", "HTTP listen address; empty disables the server")
	flag.StringVar(&o.webDir, "web", findWebDir(), "static files served at /")
	flag.BoolVar(&o.window, "window", true, "show the annotated preview window")
	flag.BoolVar(&o.tray, "tray", false, "run the system tray menu instead of a window")
	flag.BoolVar(&o.mirror, "mirror", true, "flip frames horizontally")
	flag.IntVar(&o.fps, "fps", capture.DefaultFPS, "frames per second")
	flag.IntVar(&o.idleFPS, "idle-fps", 5, "frame rate while nothing moves (0 = always full rate)")
	flag.BoolVar(&o.analyze, "analyze", false, "classify every frame of -video, print a JSON summary and exit")
	flag.IntVar(&o.workers, "workers", 0, "goroutines for -analyze (0 = NumCPU)")
	flag.Parse()
	return o
}

func main() {
	o := parseFlags()

	params, err := config.LoadParams(o.configPath)
	if err != nil {
		log.Fatalf("Failed to load tuning config: %v", err)
	}

	st, err := openStore(o.dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	if st != nil {
		defer st.Close()
	}

	if o.analyze {
		if err := runAnalyze(o, params, st); err != nil {
			log.Fatalf("Analysis failed: %v", err)
		}
		return
	}

	if err := runLive(o, params, st); err != nil {
		log.Fatalf("%v", err)
	}
}

// runAnalyze classifies a whole video file and prints its summary.
func runAnalyze(o options, params vision.Params, st *store.Store) error {
	if o.videoPath == "" {
		return errors.New("-analyze requires -video")
	}

	cam := capture.NewVideoFile(o.videoPath)
	if err := cam.Open(); err != nil {
		return err
	}
	defer cam.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	source := "file:" + o.videoPath
	results, err := app.AnalyzeSource(ctx, cam, vision.NewAnalyzer(params), o.workers, o.mirror)
	if err != nil {
		return err
	}
	log.Printf("Analyzed %d frames in %s", len(results), time.Since(started).Round(time.Millisecond))

	summary := app.Summarize(source, results)
	if st != nil {
		sess, err := app.RecordResults(st, source, started, results)
		if err != nil {
			return err
		}
		summary.Session = sess.ID
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

// runLive runs the capture loop until the user quits, the source ends or
// the process is signalled.
func runLive(o options, params vision.Params, st *store.Store) error {
	fmt.Println("Mudra - hand pose classifier")

	if o.videoPath != "" {
		o.idleFPS = 0
	}

	a := app.New(app.Config{
		Store:     st,
		CameraID:  o.cameraID,
		VideoPath: o.videoPath,
		Params:    params,
		Mirror:    o.mirror,
		FPS:       o.fps,
		IdleFPS:   o.idleFPS,
	})

	if o.addr != "" {
		srv := server.New(server.Config{
			StaticDir: o.webDir,
			Store:     st,
			Feed:      a,
			Params:    &params,
		})
		go func() {
			fmt.Printf("Starting server on %s\n", o.addr)
			if err := srv.ListenAndServe(o.addr); err != nil {
				log.Printf("Server failed: %v", err)
			}
		}()
	}

	if err := a.Start(); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer a.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	switch {
	case o.tray:
		runTray(a, o.addr, sig)
	case o.window:
		runWindow(a, sig)
	default:
		select {
		case <-sig:
		case <-a.Done():
		}
	}

	return nil
}

// runTray blocks in the tray event loop.
func runTray(a *app.App, addr string, sig <-chan os.Signal) {
	t := tray.New()
	t.OnToggle(a.SetEnabled)
	t.OnPreview(func() {
		if addr != "" {
			log.Printf("Preview available at http://localhost%s/api/stream", addr)
		}
	})
	a.Subscribe(func(s app.Snapshot) {
		t.SetLastGesture(s.Result.Gesture.String())
	})

	go func() {
		select {
		case <-sig:
		case <-a.Done():
		}
		t.Quit()
	}()

	t.Run()
}

func openStore(path string) (*store.Store, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return store.New(path)
}

func defaultDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".mudra", "mudra.db")
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
